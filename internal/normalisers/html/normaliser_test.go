package html

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driven"
)

func TestNew(t *testing.T) {
	normaliser := New()
	require.NotNil(t, normaliser)
	assert.IsType(t, &Normaliser{}, normaliser)
}

func TestExtensions(t *testing.T) {
	exts := New().Extensions()
	assert.Contains(t, exts, ".html")
	assert.Contains(t, exts, ".htm")
	assert.Len(t, exts, 3)
}

func TestPriority(t *testing.T) {
	assert.Equal(t, 50, New().Priority())
}

func TestParagraphs(t *testing.T) {
	page := `<!DOCTYPE html>
<html>
<head><title>Some Answered Questions</title><style>p { margin: 0 }</style></head>
<body>
<nav><ul><li>Library</li><li>Authoritative Writings</li></ul></nav>
<h1>Some Answered Questions</h1>
<p class="brl-global">The world of existence is a single, complete and
perfect whole &mdash; every part is interconnected.</p>
<p>Know that nature is that condition.</p>
<script>track()</script>
</body>
</html>`

	got, err := New().Paragraphs(context.Background(), []byte(page))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Some Answered Questions",
		"The world of existence is a single, complete and perfect whole \u2014 every part is interconnected.",
		"Know that nature is that condition.",
	}, got)
}

func TestParagraphs_Empty(t *testing.T) {
	got, err := New().Paragraphs(context.Background(), []byte("<html><body></body></html>"))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestParagraphs_InvalidUTF8(t *testing.T) {
	_, err := New().Paragraphs(context.Background(), []byte{0xc3, 0x28})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestParagraphs_Markup(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple paragraph",
			input:    "<p>Blessed is the spot</p>",
			expected: "Blessed is the spot",
		},
		{
			name:     "nested tags",
			input:    "<div><p><em>O Son of Being!</em> Love Me</p></div>",
			expected: "O Son of Being! Love Me",
		},
		{
			name:     "script removed",
			input:    "<p>First</p><script>gtag('event');</script><p>Second</p>",
			expected: "First\nSecond",
		},
		{
			name:     "style removed",
			input:    "<style>.brl-btn { display: none }</style><p>Passage</p>",
			expected: "Passage",
		},
		{
			name:     "noscript removed",
			input:    "<p>Passage</p><noscript>Enable JavaScript</noscript>",
			expected: "Passage",
		},
		{
			name:     "head removed",
			input:    "<head><meta charset='utf-8'><title>Gleanings</title></head><body>Passage</body>",
			expected: "Passage",
		},
		{
			name:     "br to newline",
			input:    "O Son of Man!<br>Veiled in My immemorial being<br/>I knew My love for thee",
			expected: "O Son of Man!\nVeiled in My immemorial being\nI knew My love for thee",
		},
		{
			name:     "block elements create newlines",
			input:    "<div>I</div><div>II</div>",
			expected: "I\nII",
		},
		{
			name:     "HTML entities decoded",
			input:    "<p>Bah&aacute;&apos;u&apos;ll&aacute;h &amp; &#8216;Abdu&#8217;l-Bah&aacute;</p>",
			expected: "Bahá'u'lláh & ‘Abdu’l-Bahá",
		},
		{
			name:     "comments removed",
			input:    "<p>Before</p><!-- comment --><p>After</p>",
			expected: "Before\nAfter",
		},
		{
			name:     "list items",
			input:    "<ol><li>Prayer</li><li>Fasting</li></ol>",
			expected: "Prayer\nFasting",
		},
		{
			name:     "headings",
			input:    "<h1>The Kitáb-i-Íqán</h1><h2>Part One</h2><p>No man shall attain the shores</p>",
			expected: "The Kitáb-i-Íqán\nPart One\nNo man shall attain the shores",
		},
		{
			name:     "links - text preserved",
			input:    `<p>See <a href="https://www.bahai.org/library/">the library</a>.</p>`,
			expected: "See the library.",
		},
		{
			name:     "images removed",
			input:    `<p>Unity <img src="star.png" alt="star"> of mankind</p>`,
			expected: "Unity of mankind",
		},
		{
			name:     "table",
			input:    "<table><tr><td>1</td><td>Tablet of Wisdom</td></tr><tr><td>2</td><td>Tablet of Carmel</td></tr></table>",
			expected: "1Tablet of Wisdom\n2Tablet of Carmel",
		},
		{
			name:     "page chrome removed",
			input:    `<header><a href="/">Home</a></header><nav class="toc">Contents</nav><p>Passage</p><footer>Copyright</footer>`,
			expected: "Passage",
		},
		{
			name:     "hidden elements removed",
			input:    `<p>Passage</p><div hidden>Search results</div>`,
			expected: "Passage",
		},
		{
			name:     "source whitespace collapsed",
			input:    "<p>  Blessed   is\n\tthe spot </p>",
			expected: "Blessed is the spot",
		},
		{
			name:     "svg removed",
			input:    `<p>Before</p><svg width="100"><circle cx="50"/></svg><p>After</p>`,
			expected: "Before\nAfter",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := New().Paragraphs(context.Background(), []byte(tc.input))
			require.NoError(t, err)
			assert.Equal(t, tc.expected, strings.Join(got, "\n"))
		})
	}
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Normaliser = (*Normaliser)(nil)
}

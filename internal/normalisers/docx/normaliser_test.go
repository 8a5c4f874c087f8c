package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driven"
)

// createTestDOCX creates a minimal valid DOCX file in memory.
func createTestDOCX(documentXML string) []byte {
	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)

	// Add [Content_Types].xml (required for valid DOCX)
	contentTypes, _ := w.Create("[Content_Types].xml")
	contentTypes.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="xml" ContentType="application/xml"/>
</Types>`))

	// Add word/document.xml
	if documentXML != "" {
		doc, _ := w.Create("word/document.xml")
		doc.Write([]byte(documentXML))
	}

	w.Close()
	return buf.Bytes()
}

func wrapBody(body string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
` + body + `
</w:body>
</w:document>`
}

func TestNew(t *testing.T) {
	normaliser := New()
	require.NotNil(t, normaliser)
	assert.IsType(t, &Normaliser{}, normaliser)
}

func TestExtensions(t *testing.T) {
	assert.Equal(t, []string{".docx"}, New().Extensions())
}

func TestPriority(t *testing.T) {
	assert.Equal(t, 50, New().Priority())
}

func TestParagraphs_MultipleParagraphs(t *testing.T) {
	content := createTestDOCX(wrapBody(`
<w:p><w:r><w:t>First paragraph</w:t></w:r></w:p>
<w:p><w:r><w:t>Second paragraph</w:t></w:r></w:p>
<w:p><w:r><w:t>Third paragraph</w:t></w:r></w:p>`))

	got, err := New().Paragraphs(context.Background(), content)
	require.NoError(t, err)
	assert.Equal(t, []string{"First paragraph", "Second paragraph", "Third paragraph"}, got)
}

func TestParagraphs_MultipleRuns(t *testing.T) {
	// Multiple runs in a single paragraph (e.g., different formatting)
	content := createTestDOCX(wrapBody(`
<w:p>
<w:r><w:t xml:space="preserve">Hello </w:t></w:r>
<w:r><w:t>World</w:t></w:r>
</w:p>`))

	got, err := New().Paragraphs(context.Background(), content)
	require.NoError(t, err)
	assert.Equal(t, []string{"Hello World"}, got)
}

func TestParagraphs_HyperlinksTabsAndBreaks(t *testing.T) {
	content := createTestDOCX(wrapBody(`
<w:p>
<w:r><w:t>Read</w:t></w:r>
<w:hyperlink><w:r><w:t>Gleanings</w:t></w:r></w:hyperlink>
<w:r><w:tab/><w:t>today</w:t><w:br/><w:t>and tomorrow</w:t></w:r>
</w:p>`))

	got, err := New().Paragraphs(context.Background(), content)
	require.NoError(t, err)
	assert.Equal(t, []string{"ReadGleanings today and tomorrow"}, got)
}

func TestParagraphs_SkipsEmptyParagraphs(t *testing.T) {
	content := createTestDOCX(wrapBody(`
<w:p><w:r><w:t>One</w:t></w:r></w:p>
<w:p/>
<w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr></w:p>
<w:p><w:r><w:t>   </w:t></w:r></w:p>
<w:p><w:r><w:t>Two</w:t></w:r></w:p>`))

	got, err := New().Paragraphs(context.Background(), content)
	require.NoError(t, err)
	assert.Equal(t, []string{"One", "Two"}, got)
}

func TestParagraphs_IgnoresTextOutsideRuns(t *testing.T) {
	content := createTestDOCX(wrapBody(`
<w:p><w:pPr><w:rPr><w:lang w:val="en"/></w:rPr></w:pPr>
<w:r><w:t>Visible</w:t></w:r>
<w:r><w:instrText>PAGEREF _Toc1</w:instrText></w:r>
</w:p>`))

	got, err := New().Paragraphs(context.Background(), content)
	require.NoError(t, err)
	assert.Equal(t, []string{"Visible"}, got)
}

func TestParagraphs_InvalidZip(t *testing.T) {
	got, err := New().Paragraphs(context.Background(), []byte("not a zip file"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, got)
}

func TestParagraphs_MalformedXML(t *testing.T) {
	content := createTestDOCX(`<w:document><w:body><w:p><w:r><w:t>unterminated`)

	_, err := New().Paragraphs(context.Background(), content)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestParagraphs_MissingDocumentPart(t *testing.T) {
	got, err := New().Paragraphs(context.Background(), createTestDOCX(""))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParagraphs_EmptyBody(t *testing.T) {
	got, err := New().Paragraphs(context.Background(), createTestDOCX(wrapBody("")))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Normaliser = (*Normaliser)(nil)
}

func BenchmarkParagraphs(b *testing.B) {
	normaliser := New()
	ctx := context.Background()
	content := createTestDOCX(wrapBody(`<w:p><w:r><w:t>Hello World</w:t></w:r></w:p>`))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = normaliser.Paragraphs(ctx, content)
	}
}

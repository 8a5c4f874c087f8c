package wordpiece

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/insight/internal/core/domain"
)

// testVocab has [PAD]=0, [UNK]=1, [CLS]=2, [SEP]=3.
var testVocab = []string{
	"[PAD]", "[UNK]", "[CLS]", "[SEP]",
	"o", "son", "of", "spirit", "!", ",",
	"un", "##ity", "##ite", "man", "##kind", "the", "light",
	"'", "##s", "a",
}

func newTestTokenizer(t *testing.T, maxLen int) *Tokenizer {
	t.Helper()
	tok, err := New(strings.NewReader(strings.Join(testVocab, "\n")), maxLen)
	require.NoError(t, err)
	return tok
}

func idOf(t *testing.T, tok *Tokenizer, piece string) int64 {
	t.Helper()
	id, ok := tok.vocab[piece]
	require.True(t, ok, piece)
	return id
}

func TestNew_MissingReservedToken(t *testing.T) {
	for _, missing := range []string{TokenStart, TokenEnd, TokenPad, TokenUnknown} {
		var lines []string
		for _, v := range testVocab {
			if v != missing {
				lines = append(lines, v)
			}
		}
		_, err := New(strings.NewReader(strings.Join(lines, "\n")), 16)
		assert.ErrorIs(t, err, domain.ErrVocabulary, missing)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "vocab.txt"), DefaultMaxLength)
	assert.ErrorIs(t, err, domain.ErrVocabulary)
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(testVocab, "\r\n")+"\n"), 0o600))

	tok, err := Load(path, DefaultMaxLength)
	require.NoError(t, err)
	assert.Equal(t, len(testVocab), tok.VocabSize())
	assert.Equal(t, int64(7), idOf(t, tok, "spirit"))
}

func TestNew_InvalidLength(t *testing.T) {
	_, err := New(strings.NewReader(strings.Join(testVocab, "\n")), 2)
	assert.ErrorIs(t, err, domain.ErrVocabulary)
}

func TestEncode_Layout(t *testing.T) {
	tok := newTestTokenizer(t, 10)

	enc := tok.Encode("O Son of Spirit!")

	assert.Equal(t, []int64{2, 4, 5, 6, 7, 8, 3, 0, 0, 0}, enc.IDs)
	assert.Equal(t, []int64{1, 1, 1, 1, 1, 1, 1, 0, 0, 0}, enc.Mask)
	assert.Equal(t, 7, enc.Tokens())
}

func TestEncode_Subwords(t *testing.T) {
	tok := newTestTokenizer(t, 16)

	assert.Equal(t, []string{"un", "##ity", "of", "man", "##kind"}, tok.pieces("Unity of mankind"))
	assert.Equal(t, []string{"un", "##ite"}, tok.pieces("unite"))
}

func TestEncode_PunctuationSplit(t *testing.T) {
	tok := newTestTokenizer(t, 16)

	// "s" after the apostrophe starts a new word, so "##s" cannot match it.
	assert.Equal(t,
		[]string{"the", "light", ",", "o", "son", "'", TokenUnknown},
		tok.pieces("the light,O son's"))
}

func TestEncode_UnknownCharactersNotDropped(t *testing.T) {
	tok := newTestTokenizer(t, 16)

	// "unxity": "un" matches, then "x" has no piece, then "##ity".
	assert.Equal(t, []string{"un", TokenUnknown, "##ity"}, tok.pieces("unxity"))
	// A word with no matching prefix yields one [UNK] per character.
	assert.Equal(t, []string{TokenUnknown, TokenUnknown}, tok.pieces("zz"))
}

func TestEncode_FoldsAccents(t *testing.T) {
	tok := newTestTokenizer(t, 16)

	assert.Equal(t, []string{"o", "son", "of", "spirit"}, tok.pieces("Ó Són of Spírit"))
	assert.Equal(t, tok.Encode("o son"), tok.Encode("Ó SÓN"))
}

func TestFold(t *testing.T) {
	assert.Equal(t, "baha'u'llah", fold("Bahá'u'lláh"))
	assert.Equal(t, "‘abdu’l-baha", fold("‘Abdu’l-Bahá"))
	assert.Equal(t, "kitab-i-iqan", fold("Kitáb-i-Íqán"))
}

func TestEncode_Truncation(t *testing.T) {
	tok := newTestTokenizer(t, 6)

	enc := tok.Encode("o son of spirit o son of spirit")

	require.Len(t, enc.IDs, 6)
	assert.Equal(t, []int64{2, 4, 5, 6, 7, 3}, enc.IDs)
	assert.Equal(t, []int64{1, 1, 1, 1, 1, 1}, enc.Mask)
}

func TestEncode_Empty(t *testing.T) {
	tok := newTestTokenizer(t, 5)

	enc := tok.Encode("   ")

	assert.Equal(t, []int64{2, 3, 0, 0, 0}, enc.IDs)
	assert.Equal(t, []int64{1, 1, 0, 0, 0}, enc.Mask)
}

func TestEncode_Properties(t *testing.T) {
	tok := newTestTokenizer(t, DefaultMaxLength)
	inputs := []string{
		"",
		"O Son of Spirit! My first counsel is this",
		strings.Repeat("unity of mankind ", 100),
		"¡Hola! ¿qué tal? 💡",
	}

	for _, in := range inputs {
		a := tok.Encode(in)
		b := tok.Encode(in)
		assert.Equal(t, a, b, "deterministic")
		assert.Len(t, a.IDs, DefaultMaxLength)
		assert.Len(t, a.Mask, DefaultMaxLength)

		// Padding is a contiguous suffix.
		seenZero := false
		for i, m := range a.Mask {
			if m == 0 {
				seenZero = true
				assert.Equal(t, tok.padID, a.IDs[i])
				continue
			}
			assert.False(t, seenZero, "mask 1 after padding in %q", in)
		}
	}
}

package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyAuthor_EveryKeyword(t *testing.T) {
	for _, tag := range AllAuthorTags() {
		for _, kw := range AuthorKeywords(tag) {
			for _, name := range []string{kw + ".docx", "EN-" + kw + "-2019.txt", kw} {
				assert.Equal(t, tag, ClassifyAuthor(name), "filename %q", name)
			}
		}
	}
}

func TestClassifyAuthor_KeywordListsNotShadowed(t *testing.T) {
	// A later keyword must not contain an earlier one.
	var earlier []string
	for _, tag := range AllAuthorTags() {
		kws := AuthorKeywords(tag)
		for _, kw := range kws {
			for _, prev := range earlier {
				assert.NotContains(t, kw, prev, "keyword %q for %s is shadowed", kw, tag)
			}
		}
		earlier = append(earlier, kws...)
	}
}

func TestClassifyAuthor(t *testing.T) {
	tests := []struct {
		filename string
		want     AuthorTag
	}{
		{"kitab-i-iqan.txt", AuthorBahaullah},
		{"Hidden-Words.DOCX", AuthorBahaullah},
		{"paris-talks.txt", AuthorAbdulBaha},
		{"selections-writings-bab.docx", AuthorTheBab},
		{"god-passes-by.md", AuthorShoghiEffendi},
		{"1999-04-ridvan.docx", AuthorUniversalHouseOfJustice},
		{"19840101_001.docx", AuthorUniversalHouseOfJustice},
		{"20230101_message.txt", AuthorUniversalHouseOfJustice},
		{"corpus/2001_letter.txt", AuthorUniversalHouseOfJustice},
		{"compilation-on-women.txt", AuthorCompilations},
		{"prayers-meditations.txt", AuthorBahaullah},
		{"unknown-document.docx", AuthorOther},
		{"", AuthorOther},
		{"letter-1999.txt", AuthorOther},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyAuthor(tt.filename))
		})
	}
}

func TestAuthorKeywords_ReturnsCopy(t *testing.T) {
	kws := AuthorKeywords(AuthorBahaullah)
	require.NotEmpty(t, kws)
	kws[0] = "mutated"
	assert.Equal(t, "kitab-i-iqan", AuthorKeywords(AuthorBahaullah)[0])
	assert.Nil(t, AuthorKeywords(AuthorOther))
}

func TestAuthorTag_IsValid(t *testing.T) {
	for _, tag := range AllAuthorTags() {
		assert.True(t, tag.IsValid(), tag)
	}
	assert.False(t, AuthorTag("").IsValid())
	assert.False(t, AuthorTag("Bahaullah").IsValid())
}

func TestAuthorTag_Label(t *testing.T) {
	assert.Equal(t, "Bahá'u'lláh", AuthorBahaullah.Label())
	assert.Equal(t, "'Abdu'l-Bahá", AuthorAbdulBaha.Label())
	assert.Equal(t, "Universal House of Justice", AuthorUniversalHouseOfJustice.Label())
	assert.Equal(t, "Other", AuthorTag("nope").Label())
}

func TestParseAuthorTag(t *testing.T) {
	tests := []struct {
		input string
		want  AuthorTag
		ok    bool
	}{
		{"bahaullah", AuthorBahaullah, true},
		{"Bahá'u'lláh", AuthorBahaullah, true},
		{"Baha'u'llah", AuthorBahaullah, true},
		{"'Abdu'l-Bahá", AuthorAbdulBaha, true},
		{"abdul-baha", AuthorAbdulBaha, true},
		{"The Báb", AuthorTheBab, true},
		{"bab", AuthorTheBab, true},
		{"UHJ", AuthorUniversalHouseOfJustice, true},
		{"Universal House of Justice", AuthorUniversalHouseOfJustice, true},
		{"compilation", AuthorCompilations, true},
		{"other", AuthorOther, true},
		{"", "", false},
		{"moses", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseAuthorTag(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAuthorFilter(t *testing.T) {
	var zero AuthorFilter
	assert.True(t, zero.IsEmpty())
	assert.True(t, zero.Matches(AuthorOther))
	assert.Equal(t, "all authors", zero.String())

	f := NewAuthorFilter(AuthorUniversalHouseOfJustice, AuthorBahaullah, AuthorTag("bogus"))
	assert.False(t, f.IsEmpty())
	assert.True(t, f.Matches(AuthorBahaullah))
	assert.True(t, f.Matches(AuthorUniversalHouseOfJustice))
	assert.False(t, f.Matches(AuthorAbdulBaha))
	assert.Equal(t, []AuthorTag{AuthorBahaullah, AuthorUniversalHouseOfJustice}, f.Tags())
	assert.Equal(t, "author in (bahaullah,uhj)", f.String())
}

func TestParseAuthorFilter(t *testing.T) {
	f, err := ParseAuthorFilter([]string{"Bahá'u'lláh", " ", "paris"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.True(t, f.IsEmpty())

	f, err = ParseAuthorFilter([]string{"the-bab", "Shoghi Effendi"})
	require.NoError(t, err)
	assert.Equal(t, []AuthorTag{AuthorTheBab, AuthorShoghiEffendi}, f.Tags())

	f, err = ParseAuthorFilter(nil)
	require.NoError(t, err)
	assert.True(t, f.IsEmpty())
}

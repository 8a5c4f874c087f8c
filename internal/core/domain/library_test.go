package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLibraryURL(t *testing.T) {
	assert.Equal(t,
		"https://www.bahai.org/library/authoritative-texts/bahaullah/kitab-i-iqan/",
		LibraryURL("kitab-i-iqan.docx"))
	assert.Equal(t,
		"https://www.bahai.org/library/authoritative-texts/abdul-baha/paris-talks/",
		LibraryURL("corpus/Paris-Talks.txt"))
	assert.Equal(t, "https://www.bahai.org/library/", LibraryURL("unknown.txt"))
	assert.Equal(t, "https://www.bahai.org/library/", LibraryURL(""))
}

package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/insight/internal/core/domain"
)

func TestClassifyCmd(t *testing.T) {
	defer resetCLIState()

	out, err := execute("classify", "corpus/hidden-words.txt", "ridvan-2024-uhj.md", "notes.txt")

	require.NoError(t, err)
	assert.Contains(t, out, "hidden-words.txt")
	assert.Contains(t, out, string(domain.AuthorBahaullah))
	assert.Contains(t, out, domain.LibraryURL("hidden-words.txt"))
	assert.Contains(t, out, string(domain.AuthorOther))
	assert.NotContains(t, out, "corpus/", "only base names are shown")
}

func TestClassifyCmd_DoesNotNeedServices(t *testing.T) {
	defer resetCLIState()

	_, err := execute("classify", "a.txt")

	assert.NoError(t, err)
}

func TestAuthorsCmd_ListsEveryTag(t *testing.T) {
	defer resetCLIState()

	out, err := execute("authors")

	require.NoError(t, err)
	for _, tag := range domain.AllAuthorTags() {
		assert.Contains(t, out, string(tag))
		assert.Contains(t, out, tag.Label())
	}
}

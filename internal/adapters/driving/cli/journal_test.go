package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/insight/internal/core/domain"
)

func TestJournalCmd_EntryFromArgs(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("journal", "My", "grandmother", "passed", "away")

	require.NoError(t, err)
	assert.Equal(t, "My grandmother passed away", ts.journal.entry)
	assert.Contains(t, out, "Reflecting on:")
	assert.Contains(t, out, "Grief and trust in the mercy of God.")
	assert.Contains(t, out, "hidden-words.txt")
}

func TestJournalCmd_EntryFromStdin(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	_, err := executeWithInput("  I feel adrift at work.\n\nEverything changes.\n", "journal")

	require.NoError(t, err)
	assert.Equal(t, "I feel adrift at work.\n\nEverything changes.", ts.journal.entry)
}

func TestJournalCmd_EmptyStdin(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	_, err := executeWithInput("   \n", "journal")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, ts.journal.entry)
}

func TestJournalCmd_AuthorFilter(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("journal", "--author", "abdul-baha", "-n", "3", "entry")

	require.NoError(t, err)
	assert.Equal(t, 3, ts.journal.opts.Limit)
	assert.True(t, ts.journal.opts.Authors.Matches(domain.AuthorAbdulBaha))
	assert.False(t, ts.journal.opts.Authors.Matches(domain.AuthorBahaullah))
}

func TestJournalCmd_Unavailable(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.journal.unavailable = true

	_, err := execute("journal", "entry")

	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	assert.Empty(t, ts.journal.entry)
}

func TestJournalCmd_ReflectError(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.journal.err = domain.ErrLLMUnavailable

	_, err := execute("journal", "entry")

	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	assert.Contains(t, err.Error(), "journal failed")
}

func TestJournalCmd_JSONOutput(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("journal", "--json", "entry")
	require.NoError(t, err)

	var result domain.JournalResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "Grief and trust in the mercy of God.", result.Rephrased)
	assert.Len(t, result.Results, 2)
}

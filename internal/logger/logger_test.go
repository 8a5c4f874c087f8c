package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capture routes logs into a buffer for the rest of the test.
func capture(t *testing.T, verbose, asJSON bool) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(verbose)
	SetJSON(asJSON)
	t.Cleanup(func() {
		SetVerbose(false)
		SetJSON(false)
		SetOutput(os.Stderr)
	})
	return &buf
}

func TestConsoleLevels(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		log     func()
		want    string
	}{
		{"debug when verbose", true, func() { Debug("embedded %d paragraphs", 12) }, "[DEBUG] embedded 12 paragraphs"},
		{"info when verbose", true, func() { Info("loaded %s", "all-MiniLM-L6-v2") }, "[INFO] loaded all-MiniLM-L6-v2"},
		{"debug when quiet", false, func() { Debug("hidden") }, ""},
		{"info when quiet", false, func() { Info("hidden") }, ""},
		{"section when quiet", false, func() { Section("Ingest") }, ""},
		{"warn when quiet", false, func() { Warn("skipped %s", "empty.txt") }, "[WARN] skipped empty.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := capture(t, tt.verbose, false)
			tt.log()
			assert.Equal(t, tt.want, strings.TrimSpace(buf.String()))
		})
	}
}

func TestSection_Console(t *testing.T) {
	buf := capture(t, true, false)

	Section("Journal Reflection")

	assert.Equal(t, "\n=== Journal Reflection ===\n", buf.String())
}

func TestError_IncludesCause(t *testing.T) {
	buf := capture(t, false, false)

	Error(errors.New("database is locked"), "insert %s", "tablets.txt:4")

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "[ERROR] insert tablets.txt:4"), out)
	assert.Contains(t, out, "database is locked")
}

func TestJSONRecords(t *testing.T) {
	buf := capture(t, true, true)

	Info("serving on %s", ":8080")
	Section("Ingest")
	Error(errors.New("boom"), "failed")

	var records []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec), line)
		records = append(records, rec)
	}
	require.Len(t, records, 3)

	assert.Equal(t, "info", records[0]["level"])
	assert.Equal(t, "serving on :8080", records[0]["message"])
	assert.Contains(t, records[0], "time")
	assert.Equal(t, "Ingest", records[1]["section"])
	assert.Equal(t, "boom", records[2]["error"])
}

func TestIsVerbose(t *testing.T) {
	capture(t, true, false)
	assert.True(t, IsVerbose())

	SetVerbose(false)
	assert.False(t, IsVerbose())
}

func TestGet_SharesLevel(t *testing.T) {
	buf := capture(t, false, true)

	l := Get()
	l.Info().Msg("dropped")
	l.Warn().Str("file", "a.txt").Msg("kept")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), `"file":"a.txt"`)
}

func TestConcurrentAccess(t *testing.T) {
	capture(t, false, false)
	SetOutput(io.Discard)

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			SetVerbose(i%2 == 0)
			Debug("concurrent %d", i)
			Warn("concurrent %d", i)
			_ = IsVerbose()
		}()
	}
	wg.Wait()
}

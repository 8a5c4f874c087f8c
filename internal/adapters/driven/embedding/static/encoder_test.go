package static

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/insight/internal/core/domain"
)

func writeTestTable(t *testing.T, rows [][]float32) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, rows))
	path := filepath.Join(t.TempDir(), "tokens.bin")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}

func TestEncoder_LoadAndEncode(t *testing.T) {
	path := writeTestTable(t, [][]float32{{1, 0}, {0, 1}, {0.5, 0.25}})
	enc := New(path, 2)
	require.NoError(t, enc.Load(context.Background()))
	assert.Equal(t, 3, enc.Rows())

	out, err := enc.Encode(context.Background(), [][]int64{{2, 0, 9}}, [][]int64{{1, 1, 0}})
	require.NoError(t, err)
	require.Nil(t, out.Pooled)
	require.Len(t, out.Tokens, 1)
	assert.Equal(t, []float32{0.5, 0.25}, out.Tokens[0][0])
	assert.Equal(t, []float32{1, 0}, out.Tokens[0][1])
	assert.Equal(t, []float32{0, 0}, out.Tokens[0][2], "out-of-range id")
}

func TestEncoder_EncodeBeforeLoad(t *testing.T) {
	_, err := New("unused", 2).Encode(context.Background(), nil, nil)
	assert.ErrorIs(t, err, domain.ErrNotReady)
}

func TestEncoder_LoadErrors(t *testing.T) {
	ctx := context.Background()

	err := New(filepath.Join(t.TempDir(), "missing.bin"), 4).Load(ctx)
	assert.ErrorIs(t, err, domain.ErrModelUnavailable)

	path := writeTestTable(t, [][]float32{{1, 2, 3}})
	err = New(path, 2).Load(ctx)
	assert.ErrorIs(t, err, domain.ErrModelUnavailable, "ragged table")

	err = New("", 0).Load(ctx)
	assert.ErrorIs(t, err, domain.ErrModelUnavailable)

	err = New("", 4).Load(ctx)
	assert.ErrorIs(t, err, domain.ErrModelUnavailable)
}

func TestEncoder_Seeded(t *testing.T) {
	ctx := context.Background()
	a := NewSeeded(10, 8, 42)
	b := NewSeeded(10, 8, 42)
	require.NoError(t, a.Load(ctx))
	require.NoError(t, b.Load(ctx))

	ids := [][]int64{{3, 4}}
	mask := [][]int64{{1, 1}}
	outA, err := a.Encode(ctx, ids, mask)
	require.NoError(t, err)
	outB, err := b.Encode(ctx, ids, mask)
	require.NoError(t, err)
	assert.Equal(t, outA, outB)

	var norm float64
	for _, v := range outA.Tokens[0][0] {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, norm, 1e-5)
}

func TestEncoder_MismatchedRows(t *testing.T) {
	enc := NewSeeded(4, 2, 1)
	require.NoError(t, enc.Load(context.Background()))
	_, err := enc.Encode(context.Background(), [][]int64{{1}}, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestEncoder_Close(t *testing.T) {
	enc := NewSeeded(4, 2, 1)
	require.NoError(t, enc.Load(context.Background()))
	require.NoError(t, enc.Close())
	_, err := enc.Encode(context.Background(), [][]int64{{1}}, [][]int64{{1}})
	assert.ErrorIs(t, err, domain.ErrNotReady)
}

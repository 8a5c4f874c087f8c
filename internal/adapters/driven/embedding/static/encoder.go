// Package static provides a pure-Go token encoder backed by a precomputed
// table of per-token vectors.
package static

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"sync"

	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driven"
)

// Ensure Encoder implements the interface.
var _ driven.TokenEncoder = (*Encoder)(nil)

// Encoder maps each token id to a row of a vocab_size x D float32 table and
// returns per-token vectors for mean pooling.
type Encoder struct {
	mu        sync.RWMutex
	path      string
	dimension int
	seed      int64
	rows      int
	table     []float32
	loaded    bool
}

// New creates an encoder that reads a little-endian float32 table from path on Load.
func New(path string, dimension int) *Encoder {
	return &Encoder{path: path, dimension: dimension}
}

// NewSeeded creates an encoder whose table is filled with deterministic
// pseudo-random unit vectors, one per vocabulary entry. It needs no model file.
func NewSeeded(vocabSize, dimension int, seed int64) *Encoder {
	return &Encoder{dimension: dimension, rows: vocabSize, seed: seed}
}

// Load reads or generates the table.
func (e *Encoder) Load(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.loaded {
		return nil
	}
	if e.dimension <= 0 {
		return fmt.Errorf("%w: static encoder dimension must be positive", domain.ErrModelUnavailable)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if e.path == "" {
		if e.rows <= 0 {
			return fmt.Errorf("%w: static encoder has no table path", domain.ErrModelUnavailable)
		}
		e.table = seededTable(e.rows, e.dimension, e.seed)
		e.loaded = true
		return nil
	}

	f, err := os.Open(e.path)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrModelUnavailable, err)
	}
	defer f.Close()

	table, err := readTable(f, e.dimension)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrModelUnavailable, e.path, err)
	}
	e.table = table
	e.rows = len(table) / e.dimension
	e.loaded = true
	return nil
}

// Encode returns one vector per token. Ids outside the table map to zeros.
func (e *Encoder) Encode(ctx context.Context, ids, mask [][]int64) (driven.EncoderOutput, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if !e.loaded {
		return driven.EncoderOutput{}, domain.ErrNotReady
	}
	if len(ids) != len(mask) {
		return driven.EncoderOutput{}, fmt.Errorf("%w: %d id rows but %d mask rows",
			domain.ErrInvalidInput, len(ids), len(mask))
	}

	out := make([][][]float32, len(ids))
	for b, row := range ids {
		if err := ctx.Err(); err != nil {
			return driven.EncoderOutput{}, err
		}
		tokens := make([][]float32, len(row))
		for i, id := range row {
			vec := make([]float32, e.dimension)
			if id >= 0 && int(id) < e.rows {
				copy(vec, e.table[int(id)*e.dimension:(int(id)+1)*e.dimension])
			}
			tokens[i] = vec
		}
		out[b] = tokens
	}
	return driven.EncoderOutput{Tokens: out}, nil
}

// Dimensions returns the vector size.
func (e *Encoder) Dimensions() int {
	return e.dimension
}

// Rows returns the number of table rows. Valid after Load.
func (e *Encoder) Rows() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.rows
}

// Close releases the table.
func (e *Encoder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.table = nil
	e.loaded = false
	return nil
}

func readTable(r io.Reader, dimension int) ([]float32, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	rowBytes := dimension * 4
	if len(data) == 0 || len(data)%rowBytes != 0 {
		return nil, fmt.Errorf("table size %d is not a multiple of %d-dimension rows", len(data), dimension)
	}
	table := make([]float32, len(data)/4)
	for i := range table {
		table[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return table, nil
}

// WriteTable writes a table in the format Load reads.
func WriteTable(w io.Writer, rows [][]float32) error {
	buf := make([]byte, 4)
	for _, row := range rows {
		for _, v := range row {
			binary.LittleEndian.PutUint32(buf, math.Float32bits(v))
			if _, err := w.Write(buf); err != nil {
				return err
			}
		}
	}
	return nil
}

func seededTable(rows, dimension int, seed int64) []float32 {
	rng := rand.New(rand.NewSource(seed))
	table := make([]float32, rows*dimension)
	for r := 0; r < rows; r++ {
		row := table[r*dimension : (r+1)*dimension]
		for i := range row {
			row[i] = float32(rng.NormFloat64())
		}
		domain.Normalize(row)
	}
	return table
}

// Package wordpiece implements BERT-style WordPiece tokenization.
package wordpiece

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driven"
)

// Ensure Tokenizer implements the interface.
var _ driven.Tokenizer = (*Tokenizer)(nil)

// Reserved tokens that every vocabulary must contain.
const (
	TokenStart   = "[CLS]"
	TokenEnd     = "[SEP]"
	TokenPad     = "[PAD]"
	TokenUnknown = "[UNK]"

	// ContinuationPrefix marks a word piece that continues the previous one.
	ContinuationPrefix = "##"
)

// DefaultMaxLength is the fixed sequence length used by MiniLM exports.
const DefaultMaxLength = 128

// Tokenizer greedily splits words into the longest matching vocabulary pieces.
// It is immutable after construction.
type Tokenizer struct {
	vocab  map[string]int64
	maxLen int

	startID int64
	endID   int64
	padID   int64
	unkID   int64
}

// Load reads a vocabulary file with one token per line; the line number is the id.
func Load(path string, maxLen int) (*Tokenizer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrVocabulary, err)
	}
	defer f.Close()
	return New(f, maxLen)
}

// New builds a tokenizer from a vocabulary stream.
func New(r io.Reader, maxLen int) (*Tokenizer, error) {
	if maxLen < 3 {
		return nil, fmt.Errorf("%w: max length must be at least 3, got %d", domain.ErrVocabulary, maxLen)
	}

	vocab := make(map[string]int64)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var id int64
	for scanner.Scan() {
		token := strings.TrimRight(scanner.Text(), "\r")
		if _, dup := vocab[token]; !dup {
			vocab[token] = id
		}
		id++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: read vocabulary: %w", domain.ErrVocabulary, err)
	}

	t := &Tokenizer{vocab: vocab, maxLen: maxLen}
	for _, reserved := range []struct {
		token string
		dst   *int64
	}{
		{TokenStart, &t.startID},
		{TokenEnd, &t.endID},
		{TokenPad, &t.padID},
		{TokenUnknown, &t.unkID},
	} {
		v, ok := vocab[reserved.token]
		if !ok {
			return nil, fmt.Errorf("%w: missing reserved token %s", domain.ErrVocabulary, reserved.token)
		}
		*reserved.dst = v
	}

	return t, nil
}

// MaxLength returns the fixed sequence length.
func (t *Tokenizer) MaxLength() int { return t.maxLen }

// VocabSize returns the number of vocabulary lines read.
func (t *Tokenizer) VocabSize() int { return len(t.vocab) }

// Encode tokenizes text into exactly MaxLength ids with an attention mask.
func (t *Tokenizer) Encode(text string) driven.Encoding {
	budget := t.maxLen - 2
	pieces := make([]int64, 0, budget)
	for _, word := range splitWords(fold(text)) {
		if len(pieces) >= budget {
			break
		}
		pieces = t.appendWordPieces(pieces, word)
	}
	if len(pieces) > budget {
		pieces = pieces[:budget]
	}

	enc := driven.Encoding{
		IDs:  make([]int64, t.maxLen),
		Mask: make([]int64, t.maxLen),
	}
	enc.IDs[0] = t.startID
	copy(enc.IDs[1:], pieces)
	enc.IDs[len(pieces)+1] = t.endID
	used := len(pieces) + 2
	for i := 0; i < t.maxLen; i++ {
		if i < used {
			enc.Mask[i] = 1
		} else {
			enc.IDs[i] = t.padID
		}
	}
	return enc
}

// pieces returns the word pieces of text without special tokens or padding.
func (t *Tokenizer) pieces(text string) []string {
	inverse := make(map[int64]string, len(t.vocab))
	for tok, id := range t.vocab {
		inverse[id] = tok
	}
	var out []string
	for _, word := range splitWords(fold(text)) {
		for _, id := range t.appendWordPieces(nil, word) {
			out = append(out, inverse[id])
		}
	}
	return out
}

// appendWordPieces splits one word by greedy longest-match-first. A position
// with no matching piece becomes [UNK] and the scan advances one character.
func (t *Tokenizer) appendWordPieces(dst []int64, word string) []int64 {
	if id, ok := t.vocab[word]; ok {
		return append(dst, id)
	}

	runes := []rune(word)
	for start := 0; start < len(runes); {
		matched := false
		for end := len(runes); end > start; end-- {
			piece := string(runes[start:end])
			if start > 0 {
				piece = ContinuationPrefix + piece
			}
			if id, ok := t.vocab[piece]; ok {
				dst = append(dst, id)
				start = end
				matched = true
				break
			}
		}
		if !matched {
			dst = append(dst, t.unkID)
			start++
		}
	}
	return dst
}

// fold lowercases text and strips combining marks after canonical
// decomposition, as uncased BERT vocabularies expect: "Bahá'u'lláh" folds
// to "baha'u'llah".
func fold(text string) string {
	decomposed := norm.NFD.String(strings.ToLower(text))
	return strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Mn, r) {
			return -1
		}
		return r
	}, decomposed)
}

// splitWords splits on whitespace and emits every punctuation or symbol
// character as its own word.
func splitWords(text string) []string {
	var words []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			words = append(words, cur.String())
			cur.Reset()
		}
	}
	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			flush()
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			flush()
			words = append(words, string(r))
		case unicode.IsControl(r):
			// Dropped like whitespace.
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return words
}

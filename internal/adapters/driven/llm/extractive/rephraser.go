// Package extractive provides a local journal rephraser that needs no model.
// It keeps the sentences whose content words recur most across the entry,
// which strips narration and leaves the themes the writer dwells on.
package extractive

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driven"
)

// Ensure Rephraser implements the interface.
var _ driven.Rephraser = (*Rephraser)(nil)

// ModelName is reported in place of a model.
const ModelName = "extractive"

// DefaultMaxSentences is the number of sentences kept.
const DefaultMaxSentences = 3

var (
	sentencePattern = regexp.MustCompile(`[^.!?]+[.!?]+|[^.!?]+$`)
	tokenPattern    = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
)

// Rephraser ranks sentences by normalised content-word frequency.
type Rephraser struct {
	maxSentences int
	stopwords    map[string]struct{}
}

// New creates an extractive rephraser keeping at most maxSentences sentences.
func New(maxSentences int) *Rephraser {
	if maxSentences <= 0 {
		maxSentences = DefaultMaxSentences
	}
	return &Rephraser{
		maxSentences: maxSentences,
		stopwords:    defaultStopwords(),
	}
}

// Rephrase returns the highest-ranked sentences in their original order.
func (r *Rephraser) Rephrase(ctx context.Context, entry string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	entry = strings.TrimSpace(entry)
	if entry == "" {
		return "", fmt.Errorf("%w: journal entry is empty", domain.ErrInvalidInput)
	}

	var sentences []string
	for _, s := range sentencePattern.FindAllString(entry, -1) {
		if s = strings.TrimSpace(s); s != "" {
			sentences = append(sentences, s)
		}
	}
	if len(sentences) <= r.maxSentences {
		return strings.Join(sentences, " "), nil
	}

	freq := make(map[string]float64)
	tokens := make([][]string, len(sentences))
	for i, s := range sentences {
		tokens[i] = r.contentWords(s)
		for _, tok := range tokens[i] {
			freq[tok]++
		}
	}

	maxF := 0.0
	for _, v := range freq {
		maxF = math.Max(maxF, v)
	}

	type ranked struct {
		idx   int
		score float64
	}
	scores := make([]ranked, len(sentences))
	for i, toks := range tokens {
		score := 0.0
		for _, tok := range toks {
			score += freq[tok] / maxF
		}
		if n := len(toks); n > 0 {
			score /= math.Sqrt(float64(n))
		}
		scores[i] = ranked{idx: i, score: score}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })

	keep := make([]int, r.maxSentences)
	for i := range keep {
		keep[i] = scores[i].idx
	}
	sort.Ints(keep)

	out := make([]string, len(keep))
	for i, idx := range keep {
		out[i] = sentences[idx]
	}
	return strings.Join(out, " "), nil
}

func (r *Rephraser) contentWords(s string) []string {
	all := tokenPattern.FindAllString(strings.ToLower(s), -1)
	out := all[:0]
	for _, tok := range all {
		if _, stop := r.stopwords[tok]; !stop {
			out = append(out, tok)
		}
	}
	return out
}

// ModelName returns "extractive".
func (r *Rephraser) ModelName() string {
	return ModelName
}

// Ping always succeeds.
func (r *Rephraser) Ping(context.Context) error {
	return nil
}

// Close releases resources.
func (r *Rephraser) Close() error {
	return nil
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at",
		"by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that",
		"these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so",
		"such", "into", "about", "between", "through", "during", "before", "after", "above", "below",
		"out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
		"i", "me", "my", "myself", "we", "our", "you", "your", "he", "she", "his", "her", "they",
		"them", "their", "am", "do", "does", "did", "have", "has", "had", "not", "no", "what", "when",
		"how", "all", "any", "some", "there", "here", "today", "really", "feel", "felt", "much",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

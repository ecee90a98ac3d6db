// Package tfidf is an offline embedding service: term frequencies hashed into
// a fixed number of buckets and L2-normalised. It needs no corpus preparation,
// so every call returns a vector of exactly the requested dimension.
package tfidf

import (
	"context"
	"hash/fnv"
	"regexp"
	"strings"

	"gonum.org/v1/gonum/floats"

	"tabemb/internal/embedding"
)

// Embedder implements embedding.Service locally.
type Embedder struct {
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

// NewEmbedder creates a hashing embedder.
func NewEmbedder() *Embedder {
	return &Embedder{
		// Han characters are single tokens; other scripts split on letters and digits.
		tokenPattern: regexp.MustCompile(`\p{Han}|\p{L}+(?:['’]\p{L}+)*|\p{N}+`),
		stopwords:    defaultStopwords(),
	}
}

// Name returns the identifier of this service implementation.
func (e *Embedder) Name() string { return "tfidf" }

// Predict returns the hashed term-frequency vector of req.Text.
func (e *Embedder) Predict(ctx context.Context, req embedding.Request) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dim := req.Dimension
	if dim <= 0 {
		dim = embedding.DefaultDimension
	}
	vec := make([]float64, dim)
	tokens := e.tokenize(req.Text)
	if len(tokens) == 0 {
		return vec, nil
	}
	for _, tok := range tokens {
		idx, sign := bucket(tok, dim)
		vec[idx] += sign / float64(len(tokens))
	}
	if norm := floats.Norm(vec, 2); norm > 0 {
		floats.Scale(1/norm, vec)
	}
	return vec, nil
}

// bucket maps a token to a vector index and a ±1 sign so that collisions
// tend to cancel instead of accumulate.
func bucket(token string, dim int) (int, float64) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(token))
	sum := h.Sum64()
	sign := 1.0
	if sum>>63 == 1 {
		sign = -1.0
	}
	return int(sum % uint64(dim)), sign
}

func (e *Embedder) tokenize(text string) []string {
	lower := strings.ToLower(text)
	raw := e.tokenPattern.FindAllString(lower, -1)
	if len(raw) == 0 {
		return nil
	}
	out := raw[:0]
	for _, t := range raw {
		if _, isStop := e.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

var _ embedding.Service = (*Embedder)(nil)

// Package embeddingtest provides an in-memory embedding.Service for tests.
package embeddingtest

import (
	"context"
	"errors"
	"sync"

	"tabemb/internal/embedding"
)

// ErrScripted is returned for texts registered with FailOn.
var ErrScripted = errors.New("scripted embedding failure")

// Service answers every request with a deterministic vector and records calls.
type Service struct {
	mu       sync.Mutex
	calls    []embedding.Request
	failures map[string]error
	// Respond overrides the default response when set.
	Respond func(req embedding.Request) (any, error)
}

// New creates a fake service.
func New() *Service {
	return &Service{failures: make(map[string]error)}
}

// FailOn makes every request for text fail with ErrScripted.
func (s *Service) FailOn(texts ...string) *Service {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range texts {
		s.failures[t] = ErrScripted
	}
	return s
}

func (s *Service) Name() string { return "fake" }

// Predict returns a vector whose first element is the text length and whose
// remaining elements are 1.
func (s *Service) Predict(ctx context.Context, req embedding.Request) (any, error) {
	s.mu.Lock()
	s.calls = append(s.calls, req)
	err := s.failures[req.Text]
	respond := s.Respond
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	if respond != nil {
		return respond(req)
	}
	return VectorFor(req.Text, req.Dimension), nil
}

// Calls returns a copy of every request received so far.
func (s *Service) Calls() []embedding.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]embedding.Request(nil), s.calls...)
}

// Texts returns the text of every request received so far.
func (s *Service) Texts() []string {
	calls := s.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.Text
	}
	return out
}

// VectorFor is the vector the fake returns for text.
func VectorFor(text string, dimension int) []float64 {
	v := make([]float64, dimension)
	for i := range v {
		v[i] = 1
	}
	if dimension > 0 {
		v[0] = float64(len([]rune(text)))
	}
	return v
}

var _ embedding.Service = (*Service)(nil)

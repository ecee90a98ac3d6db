package embedding

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/mo"
	"golang.org/x/time/rate"
)

// DefaultTimeout bounds a single embedding call.
const DefaultTimeout = 30 * time.Second

// Adapter wraps one Service handle shared by every call of a run.
type Adapter struct {
	service   Service
	model     string
	dimension int
	timeout   time.Duration
	limiter   *rate.Limiter
}

// AdapterOption configures an Adapter.
type AdapterOption func(*Adapter)

// WithTimeout sets the per-call deadline. Zero disables it.
func WithTimeout(timeout time.Duration) AdapterOption {
	return func(a *Adapter) {
		a.timeout = timeout
	}
}

// WithRateLimit paces calls to at most rps requests per second. Zero or less
// disables pacing.
func WithRateLimit(rps float64) AdapterOption {
	return func(a *Adapter) {
		if rps <= 0 {
			a.limiter = nil
			return
		}
		a.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// NewAdapter creates an adapter asking service for vectors of the given dimension.
func NewAdapter(service Service, model string, dimension int, opts ...AdapterOption) *Adapter {
	if model == "" {
		model = DefaultModel
	}
	if dimension <= 0 {
		dimension = DefaultDimension
	}
	a := &Adapter{
		service:   service,
		model:     model,
		dimension: dimension,
		timeout:   DefaultTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Model returns the model identifier sent with each request.
func (a *Adapter) Model() string { return a.model }

// Dimension returns the vector length every successful result has.
func (a *Adapter) Dimension() int { return a.dimension }

// ServiceName returns the name of the wrapped service.
func (a *Adapter) ServiceName() string { return a.service.Name() }

// Embed performs one call for text. A failed call, an undecodable response and
// a vector of the wrong length all come back as an error result; the caller
// chooses the substitute.
func (a *Adapter) Embed(ctx context.Context, text string) mo.Result[Vector] {
	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			return mo.Err[Vector](fmt.Errorf("waiting for rate limiter: %w", err))
		}
	}

	callCtx := ctx
	if a.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	raw, err := a.service.Predict(callCtx, Request{Model: a.model, Text: text, Dimension: a.dimension})
	if err != nil {
		return mo.Err[Vector](fmt.Errorf("%s embedding call: %w", a.service.Name(), err))
	}

	vec, err := Decode(raw)
	if err != nil {
		return mo.Err[Vector](fmt.Errorf("decoding %s response: %w", a.service.Name(), err))
	}
	if len(vec) != a.dimension {
		return mo.Err[Vector](&DimensionError{Want: a.dimension, Got: len(vec)})
	}
	return mo.Ok(vec)
}

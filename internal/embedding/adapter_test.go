package embedding_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabemb/internal/embedding"
	"tabemb/internal/embedding/embeddingtest"
)

func TestAdapter_EmbedSuccess(t *testing.T) {
	svc := embeddingtest.New()
	a := embedding.NewAdapter(svc, "m", 4)

	res := a.Embed(context.Background(), "hello")
	require.True(t, res.IsOk())
	assert.Equal(t, embedding.Vector{5, 1, 1, 1}, res.MustGet())

	calls := svc.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, embedding.Request{Model: "m", Text: "hello", Dimension: 4}, calls[0])
}

func TestAdapter_Defaults(t *testing.T) {
	a := embedding.NewAdapter(embeddingtest.New(), "", 0)
	assert.Equal(t, embedding.DefaultModel, a.Model())
	assert.Equal(t, embedding.DefaultDimension, a.Dimension())
	assert.Equal(t, "fake", a.ServiceName())
}

func TestAdapter_ServiceFailure(t *testing.T) {
	svc := embeddingtest.New().FailOn("bad")
	a := embedding.NewAdapter(svc, "m", 4)

	res := a.Embed(context.Background(), "bad")
	require.True(t, res.IsError())
	assert.ErrorIs(t, res.Error(), embeddingtest.ErrScripted)
	assert.Equal(t, embedding.Fallback(4), res.OrElse(embedding.Fallback(4)))
}

func TestAdapter_DimensionMismatch(t *testing.T) {
	svc := embeddingtest.New()
	svc.Respond = func(req embedding.Request) (any, error) {
		return []float64{1, 2, 3}, nil
	}
	a := embedding.NewAdapter(svc, "m", 4)

	res := a.Embed(context.Background(), "x")
	require.True(t, res.IsError())
	var dimErr *embedding.DimensionError
	require.True(t, errors.As(res.Error(), &dimErr))
	assert.Equal(t, 4, dimErr.Want)
	assert.Equal(t, 3, dimErr.Got)
}

func TestAdapter_UnrecognizedResponse(t *testing.T) {
	svc := embeddingtest.New()
	svc.Respond = func(req embedding.Request) (any, error) {
		return map[string]any{"result": []any{1.0}}, nil
	}
	a := embedding.NewAdapter(svc, "m", 1)

	res := a.Embed(context.Background(), "x")
	require.True(t, res.IsError())
	assert.ErrorIs(t, res.Error(), embedding.ErrUnrecognizedShape)
}

func TestAdapter_TimeoutIsApplied(t *testing.T) {
	var deadlineSet bool
	probe := serviceFunc(func(ctx context.Context, req embedding.Request) (any, error) {
		_, deadlineSet = ctx.Deadline()
		return make([]float64, req.Dimension), nil
	})
	a := embedding.NewAdapter(probe, "m", 2, embedding.WithTimeout(time.Second))

	res := a.Embed(context.Background(), "x")
	require.True(t, res.IsOk())
	assert.True(t, deadlineSet)
}

func TestAdapter_RateLimitHonoursCancellation(t *testing.T) {
	a := embedding.NewAdapter(embeddingtest.New(), "m", 2, embedding.WithRateLimit(0.001))

	require.True(t, a.Embed(context.Background(), "first").IsOk())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	res := a.Embed(ctx, "second")
	assert.True(t, res.IsError())
}

type serviceFunc func(ctx context.Context, req embedding.Request) (any, error)

func (f serviceFunc) Name() string { return "func" }

func (f serviceFunc) Predict(ctx context.Context, req embedding.Request) (any, error) {
	return f(ctx, req)
}

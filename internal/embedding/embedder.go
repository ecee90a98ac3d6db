// Package embedding turns cell text into fixed-length vectors through a remote
// embedding service.
package embedding

import (
	"context"
	"encoding/json"
)

const (
	// DefaultModel is the model identifier sent with every request.
	DefaultModel = "Qwen3-Embedding-4B"

	// DefaultDimension is the vector length the service is asked for.
	DefaultDimension = 32
)

// Request is one embedding call.
type Request struct {
	Model     string
	Text      string
	Dimension int
}

// Service issues a single blocking embedding call and returns the raw,
// undecoded response value.
type Service interface {
	Name() string
	Predict(ctx context.Context, req Request) (any, error)
}

// Vector is a decoded embedding.
type Vector []float64

// Serialize renders v as a JSON array for storage in a single cell.
// Decoded vectors only hold finite values, so encoding cannot fail.
func (v Vector) Serialize() string {
	if v == nil {
		v = Vector{}
	}
	data, _ := json.Marshal([]float64(v))
	return string(data)
}

// Fallback returns the all-zero vector of the given dimension.
func Fallback(dimension int) Vector {
	return make(Vector, dimension)
}

package embedding

import (
	"errors"
	"fmt"
)

var (
	// ErrUnrecognizedShape is returned when a response matches none of the known shapes.
	ErrUnrecognizedShape = errors.New("unrecognized embedding response shape")

	// ErrNonFinite is returned when a response contains NaN or Inf.
	ErrNonFinite = errors.New("embedding contains non-finite value")
)

// DimensionError reports a decoded vector whose length differs from the
// requested dimension.
type DimensionError struct {
	Want int
	Got  int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("embedding dimension mismatch: expected %d, service returned %d", e.Want, e.Got)
}

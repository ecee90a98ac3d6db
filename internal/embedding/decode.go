package embedding

import (
	"encoding/json"
	"fmt"
	"math"
)

// Shape classifies a raw service response.
type Shape int

const (
	ShapeUnknown Shape = iota
	// ShapeFlat is a flat array of numbers.
	ShapeFlat
	// ShapeNested is an array of arrays, flattened row-major.
	ShapeNested
	// ShapeKeyed is an object carrying the vector under a recognised field.
	ShapeKeyed
)

func (s Shape) String() string {
	switch s {
	case ShapeFlat:
		return "flat"
	case ShapeNested:
		return "nested"
	case ShapeKeyed:
		return "keyed"
	default:
		return "unknown"
	}
}

// ResponseKeys are the object fields probed, in order, for a keyed response.
var ResponseKeys = []string{"embedding", "vector", "data", "emb"}

// Classify returns the shape of raw without decoding it.
func Classify(raw any) Shape {
	switch x := raw.(type) {
	case map[string]any:
		return ShapeKeyed
	case []float64, []float32:
		return ShapeFlat
	case [][]float64, [][]float32:
		return ShapeNested
	case []any:
		if len(x) == 0 {
			return ShapeFlat
		}
		numbers, arrays := 0, 0
		for _, e := range x {
			if _, ok := number(e); ok {
				numbers++
			} else if isArray(e) {
				arrays++
			}
		}
		switch {
		case numbers == len(x):
			return ShapeFlat
		case arrays == len(x):
			return ShapeNested
		}
	}
	return ShapeUnknown
}

// Decode normalises a raw response into a flat vector.
func Decode(raw any) (Vector, error) {
	switch Classify(raw) {
	case ShapeKeyed:
		obj := raw.(map[string]any)
		for _, k := range ResponseKeys {
			if v, ok := obj[k]; ok {
				return Decode(v)
			}
		}
		return nil, fmt.Errorf("%w: object has none of the fields %v", ErrUnrecognizedShape, ResponseKeys)
	case ShapeFlat, ShapeNested:
		out := Vector{}
		if err := flatten(raw, &out); err != nil {
			return nil, err
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnrecognizedShape, raw)
	}
}

func flatten(raw any, out *Vector) error {
	switch x := raw.(type) {
	case []float64:
		for _, f := range x {
			if err := appendFinite(out, f); err != nil {
				return err
			}
		}
	case []float32:
		for _, f := range x {
			if err := appendFinite(out, float64(f)); err != nil {
				return err
			}
		}
	case [][]float64:
		for _, row := range x {
			if err := flatten(row, out); err != nil {
				return err
			}
		}
	case [][]float32:
		for _, row := range x {
			if err := flatten(row, out); err != nil {
				return err
			}
		}
	case []any:
		for _, e := range x {
			if f, ok := number(e); ok {
				if err := appendFinite(out, f); err != nil {
					return err
				}
				continue
			}
			if !isArray(e) {
				return fmt.Errorf("%w: element of type %T", ErrUnrecognizedShape, e)
			}
			if err := flatten(e, out); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("%w: %T", ErrUnrecognizedShape, raw)
	}
	return nil
}

func appendFinite(out *Vector, f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ErrNonFinite
	}
	*out = append(*out, f)
	return nil
}

func number(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	}
	return 0, false
}

func isArray(v any) bool {
	switch v.(type) {
	case []any, []float64, []float32, [][]float64, [][]float32:
		return true
	}
	return false
}

package stream

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidFraction is returned when a subsample fraction is outside [0, 1].
var ErrInvalidFraction = errors.New("subsample fraction must be within [0, 1]")

// RandomSource yields uniform values in [0, 1).
// *math/rand/v2.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

// Subsample wraps upstream in a per-element Bernoulli filter: for every
// upstream element an independent uniform value is drawn and the element is
// kept only when the value is below fraction.
func Subsample[T any](upstream Iterator[T], fraction float64, rng RandomSource) (Iterator[T], error) {
	if math.IsNaN(fraction) || fraction < 0 || fraction > 1 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFraction, fraction)
	}

	return Filter(upstream, func(T) bool {
		return rng.Float64() < fraction
	}), nil
}

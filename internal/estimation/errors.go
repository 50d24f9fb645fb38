package estimation

import (
	"errors"
	"fmt"
	"math"
)

// MinSamples is the smallest sample accepted by every estimator
const MinSamples = 2

var (
	// ErrInsufficientData is returned when a sample has fewer than MinSamples points
	ErrInsufficientData = errors.New("insufficient data")

	// ErrInvalidInput is returned for out-of-range parameters or non-finite observations
	ErrInvalidInput = errors.New("invalid estimation input")
)

func checkSample(name string, data []float64) error {
	if len(data) < MinSamples {
		return fmt.Errorf("%w: %s needs at least %d points, got %d", ErrInsufficientData, name, MinSamples, len(data))
	}
	for i, x := range data {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return fmt.Errorf("%w: %s[%d] is not finite", ErrInvalidInput, name, i)
		}
	}
	return nil
}

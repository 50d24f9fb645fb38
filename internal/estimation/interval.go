package estimation

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultConfidence is used when a caller does not choose a level
const DefaultConfidence = 0.95

// IntervalResult is a two-sided confidence interval for the mean
type IntervalResult struct {
	Mean            float64 `json:"mean"`
	StdDev          float64 `json:"std_dev"`
	N               int     `json:"n"`
	ConfidenceLevel float64 `json:"confidence_level"`
	LowerBound      float64 `json:"lower_bound"`
	UpperBound      float64 `json:"upper_bound"`
	MarginOfError   float64 `json:"margin_of_error"`
}

// EstimateInterval computes mean ± t(n-1) * s/sqrt(n) at the given confidence level
func EstimateInterval(data []float64, confidence float64) (*IntervalResult, error) {
	if err := checkSample("data", data); err != nil {
		return nil, err
	}
	if !(confidence > 0 && confidence < 1) {
		return nil, fmt.Errorf("%w: confidence level must be in (0, 1), got %g", ErrInvalidInput, confidence)
	}

	n := len(data)
	mean, std := stat.MeanStdDev(data, nil)

	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 1)}
	critical := t.Quantile((1 + confidence) / 2)
	margin := critical * std / math.Sqrt(float64(n))

	return &IntervalResult{
		Mean:            mean,
		StdDev:          std,
		N:               n,
		ConfidenceLevel: confidence,
		LowerBound:      mean - margin,
		UpperBound:      mean + margin,
		MarginOfError:   margin,
	}, nil
}

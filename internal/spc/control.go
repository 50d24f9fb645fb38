package spc

import "gonum.org/v1/gonum/stat"

// DefaultSigma is the conventional three-sigma control width
const DefaultSigma = 3.0

// ControlChartResult holds individuals-chart limits
type ControlChartResult struct {
	Mean   float64   `json:"mean"`
	UCL    float64   `json:"ucl"`
	LCL    float64   `json:"lcl"`
	Values []float64 `json:"values"`
}

// ControlLimits computes mean ± sigma·s where s is the sample standard
// deviation. A single value has no spread, so its limits equal the mean.
func ControlLimits(values []float64, sigma float64) ControlChartResult {
	if len(values) == 0 {
		return ControlChartResult{Values: []float64{}}
	}

	mean := stat.Mean(values, nil)
	var std float64
	if len(values) > 1 {
		std = stat.StdDev(values, nil)
	}

	return ControlChartResult{
		Mean:   mean,
		UCL:    mean + sigma*std,
		LCL:    mean - sigma*std,
		Values: append([]float64(nil), values...),
	}
}

// OutOfControl returns the indices of values outside [LCL, UCL]
func (r ControlChartResult) OutOfControl() []int {
	var idx []int
	for i, v := range r.Values {
		if v > r.UCL || v < r.LCL {
			idx = append(idx, i)
		}
	}
	return idx
}

package estimation

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Interpretation labels for |d|
const (
	EffectNegligible = "Negligible effect"
	EffectSmall      = "Small effect"
	EffectMedium     = "Medium effect"
	EffectLarge      = "Large effect"
)

// EffectSizeResult is Cohen's d between two groups
type EffectSizeResult struct {
	MeanA          float64 `json:"mean_a"`
	MeanB          float64 `json:"mean_b"`
	StdPooled      float64 `json:"std_pooled"`
	CohensD        float64 `json:"cohens_d"`
	Interpretation string  `json:"interpretation"`
}

// EffectSize computes d = (mean_a - mean_b) / pooled std.
// d is 0 when both groups have zero variance.
func EffectSize(groupA, groupB []float64) (*EffectSizeResult, error) {
	if err := checkSample("group_a", groupA); err != nil {
		return nil, err
	}
	if err := checkSample("group_b", groupB); err != nil {
		return nil, err
	}

	n1, n2 := float64(len(groupA)), float64(len(groupB))
	meanA, varA := stat.MeanVariance(groupA, nil)
	meanB, varB := stat.MeanVariance(groupB, nil)

	pooled := math.Sqrt(((n1-1)*varA + (n2-1)*varB) / (n1 + n2 - 2))

	d := 0.0
	if pooled != 0 {
		d = (meanA - meanB) / pooled
	}

	return &EffectSizeResult{
		MeanA:          meanA,
		MeanB:          meanB,
		StdPooled:      pooled,
		CohensD:        d,
		Interpretation: Interpret(d),
	}, nil
}

// Interpret bands |d| using Cohen's conventional thresholds, lower bound inclusive
func Interpret(d float64) string {
	switch abs := math.Abs(d); {
	case abs < 0.2:
		return EffectNegligible
	case abs < 0.5:
		return EffectSmall
	case abs < 0.8:
		return EffectMedium
	default:
		return EffectLarge
	}
}

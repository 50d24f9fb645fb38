package spc

import "encoding/json"

// AnalysisRequest selects the columns of a table to analyse
type AnalysisRequest struct {
	Data           Table   `json:"data"`
	TargetVariable string  `json:"target_variable"`
	FactorVariable string  `json:"factor_variable,omitempty"`
	Sigma          float64 `json:"sigma,omitempty"`
}

// Result is the combined process control report.
// A section is nil when its column is absent or holds no usable values.
type Result struct {
	ControlChart *ControlChartResult `json:"control_chart"`
	Histogram    *HistogramResult    `json:"histogram"`
	Pareto       *ParetoResult       `json:"pareto"`
}

// Analyze builds the control chart and histogram of the target column and
// the Pareto ranking of the factor column
func Analyze(req AnalysisRequest) Result {
	var res Result

	sigma := req.Sigma
	if sigma <= 0 {
		sigma = DefaultSigma
	}

	if values, ok := NumericColumn(req.Data, req.TargetVariable); ok && len(values) > 0 {
		cc := ControlLimits(values, sigma)
		hist := Histogram(values)
		res.ControlChart = &cc
		res.Histogram = &hist
	}

	if req.FactorVariable != "" && req.Data.HasColumn(req.FactorVariable) {
		p := Pareto(req.Data, req.FactorVariable)
		res.Pareto = &p
	}

	return res
}

// MarshalJSON writes missing sections as {} so clients can always index them
func (r Result) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"control_chart": struct{}{},
		"histogram":     struct{}{},
		"pareto":        struct{}{},
	}
	if r.ControlChart != nil {
		out["control_chart"] = r.ControlChart
	}
	if r.Histogram != nil {
		out["histogram"] = r.Histogram
	}
	if r.Pareto != nil {
		out["pareto"] = r.Pareto
	}
	return json.Marshal(out)
}

// Package api contains API contract definitions for the DOE Lab service.
// Version v1 represents the current stable API version.
package api

// Defaults applied when a request omits a field
const (
	DefaultNumSamples = 10
	DefaultMin        = 0.0
	DefaultMax        = 1.0
)

// Design API Requests

// VariableRequest describes one experiment factor
type VariableRequest struct {
	Name   string   `json:"name" validate:"required,max=128"`
	Type   string   `json:"type" validate:"required,vartype"`
	Min    *float64 `json:"min,omitempty"`
	Max    *float64 `json:"max,omitempty"`
	Levels []any    `json:"levels,omitempty" validate:"omitempty,max=1000"`
}

// DesignRequest represents a design matrix generation request
type DesignRequest struct {
	Strategy   string            `json:"strategy" validate:"required,strategy"`
	NumSamples *int              `json:"num_samples,omitempty" validate:"omitempty,gte=1"`
	Variables  []VariableRequest `json:"variables" validate:"required,min=1,max=64,dive"`
	Seed       *uint64           `json:"seed,omitempty"`
}

// Statistics API Requests

// EstimationRequest asks for a confidence interval of the mean
type EstimationRequest struct {
	Data            []float64 `json:"data" validate:"required"`
	ConfidenceLevel *float64  `json:"confidence_level,omitempty" validate:"omitempty,gt=0,lt=1"`
}

// EffectSizeRequest compares two groups
type EffectSizeRequest struct {
	GroupA []float64 `json:"group_a" validate:"required"`
	GroupB []float64 `json:"group_b" validate:"required"`
}

// AdvancedRequest asks for MLE, MAP and KDE estimates
type AdvancedRequest struct {
	Data      []float64 `json:"data" validate:"required"`
	PriorMean float64   `json:"prior_mean"`
	PriorStd  float64   `json:"prior_std" validate:"gt=0"`
}

// SPC API Requests

// SPCRequest runs the process control report on a JSON table
type SPCRequest struct {
	Data           []map[string]any `json:"data" validate:"required"`
	TargetVariable string           `json:"target_variable" validate:"required,max=256"`
	FactorVariable string           `json:"factor_variable,omitempty" validate:"omitempty,max=256"`
	Sigma          *float64         `json:"sigma,omitempty" validate:"omitempty,gt=0"`
}

// SPCUploadForm holds the non-file fields of a multipart SPC upload
type SPCUploadForm struct {
	Filename       string `json:"file" validate:"required,filename"`
	TargetVariable string `json:"target_variable" validate:"required,max=256"`
	FactorVariable string `json:"factor_variable" validate:"omitempty,max=256"`
}

// Synthetic API Requests

// GenerationRequest asks for one synthetic observation per design row
type GenerationRequest struct {
	Matrix  []map[string]any `json:"matrix" validate:"required"`
	Context string           `json:"context,omitempty" validate:"omitempty,max=4000"`
	Mock    bool             `json:"mock"`
}

// AnalysisRequest asks for a narrative report over experiment results
type AnalysisRequest struct {
	Context string           `json:"context" validate:"required,max=4000"`
	Results []map[string]any `json:"results" validate:"required"`
	Mock    bool             `json:"mock"`
}

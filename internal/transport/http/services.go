package http

import (
	"context"
	"io"

	"doelab/internal/doe"
	"doelab/internal/estimation"
	"doelab/internal/services"
	"doelab/internal/spc"
	"doelab/internal/synth"
)

// DesignService generates and exports design matrices
type DesignService interface {
	Generate(ctx context.Context, req doe.DesignRequest) (*doe.DesignMatrix, error)
	Export(ctx context.Context, req doe.DesignRequest, format services.ExportFormat, w io.Writer) (*doe.DesignMatrix, error)
}

// StatisticsService runs the estimation engine
type StatisticsService interface {
	Interval(ctx context.Context, data []float64, confidence float64) (*estimation.IntervalResult, error)
	EffectSize(ctx context.Context, groupA, groupB []float64) (*estimation.EffectSizeResult, error)
	Advanced(ctx context.Context, data []float64, priorMean, priorStd float64) (*estimation.AdvancedResult, error)
}

// SPCService runs the process control engine
type SPCService interface {
	Analyze(ctx context.Context, req spc.AnalysisRequest) (spc.Result, error)
	AnalyzeUpload(ctx context.Context, filename string, r io.Reader, target, factor string) (spc.Result, error)
}

// SynthService produces synthetic observations and reports
type SynthService interface {
	Generate(ctx context.Context, req synth.BatchRequest) (*synth.BatchResponse, error)
	Report(ctx context.Context, background string, results []map[string]any, mock bool) (string, error)
}

// HealthService reports service health
type HealthService interface {
	HealthCheck(ctx context.Context) services.HealthStatus
	ReadinessCheck(ctx context.Context) services.HealthStatus
	LivenessCheck(ctx context.Context) services.HealthStatus
	Version() map[string]any
	GetDetailedHealth(ctx context.Context) map[string]any
}

// Validator checks decoded request contracts
type Validator interface {
	ValidateStruct(v any) error
	ValidateVar(field string, value any, tag string) error
}

var (
	_ DesignService     = (*services.DesignService)(nil)
	_ StatisticsService = (*services.StatisticsService)(nil)
	_ SPCService        = (*services.SPCService)(nil)
	_ SynthService      = (*services.SynthService)(nil)
	_ HealthService     = (*services.HealthService)(nil)
)

package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"doelab/internal/infrastructure"
)

// Component states reported by ReadinessCheck
const (
	StatusReady    = "ready"
	StatusDegraded = "degraded"
	StatusNotReady = "not_ready"
)

// HealthService provides health check functionality
type HealthService struct {
	name      string
	version   string
	buildTime string
	runtime   *infrastructure.RuntimeMetrics
	live      func() bool
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                       `json:"status"`
	Service   string                       `json:"service,omitempty"`
	Timestamp time.Time                    `json:"timestamp"`
	Version   string                       `json:"version"`
	Runtime   *infrastructure.RuntimeStats `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth     `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthOption configures a HealthService
type HealthOption func(*HealthService)

// WithBuildTime records the build timestamp reported by Version
func WithBuildTime(t string) HealthOption {
	return func(hs *HealthService) { hs.buildTime = t }
}

// WithRuntimeMetrics attaches the runtime collector used for liveness stats
func WithRuntimeMetrics(rm *infrastructure.RuntimeMetrics) HealthOption {
	return func(hs *HealthService) { hs.runtime = rm }
}

// WithGeneratorStatus reports whether a live model backs synthetic generation
func WithGeneratorStatus(live func() bool) HealthOption {
	return func(hs *HealthService) { hs.live = live }
}

// NewHealthService creates a health service for the named application
func NewHealthService(name, version string, logger *slog.Logger, opts ...HealthOption) *HealthService {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	hs := &HealthService{
		name:      name,
		version:   version,
		startTime: time.Now(),
		logger:    infrastructure.WithComponent(logger, "health_service"),
	}
	for _, opt := range opts {
		opt(hs)
	}
	if hs.runtime == nil {
		hs.runtime, _ = infrastructure.NewRuntimeMetrics(nil, logger)
	}
	return hs
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.DebugContext(ctx, "health check",
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:    "ok",
		Service:   hs.name,
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck reports per-component readiness. The analysis engines are
// in-process and always ready; the generator is degraded when it can only
// serve mock observations.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    StatusReady,
		Service:   hs.name,
		Timestamp: time.Now(),
		Version:   hs.version,
		Services: map[string]ServiceHealth{
			"design":     {Status: StatusReady},
			"statistics": {Status: StatusReady},
			"spc":        {Status: StatusReady},
			"generator":  hs.checkGenerator(),
		},
	}

	for name, sh := range status.Services {
		if sh.Status == StatusNotReady {
			status.Status = StatusNotReady
			hs.logger.WarnContext(ctx, "component not ready", slog.String("component", name))
		}
	}
	return status
}

func (hs *HealthService) checkGenerator() ServiceHealth {
	if hs.live == nil || !hs.live() {
		return ServiceHealth{
			Status:  StatusDegraded,
			Message: "no model credentials configured, serving mock observations",
		}
	}
	return ServiceHealth{Status: StatusReady}
}

// LivenessCheck returns liveness status with a runtime snapshot
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	stats := hs.runtime.Collect()
	return HealthStatus{
		Status:    "alive",
		Service:   hs.name,
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime:   &stats,
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]any {
	result := map[string]any{
		"service":      hs.name,
		"version":      hs.version,
		"go_version":   runtime.Version(),
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}
	if hs.buildTime != "" {
		result["build_time"] = hs.buildTime
	}
	return result
}

// GetDetailedHealth returns comprehensive health information
func (hs *HealthService) GetDetailedHealth(ctx context.Context) map[string]any {
	return map[string]any{
		"health":    hs.HealthCheck(ctx),
		"readiness": hs.ReadinessCheck(ctx),
		"liveness":  hs.LivenessCheck(ctx),
		"version":   hs.Version(),
	}
}

package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"doelab/internal/infrastructure"
	"doelab/internal/synth"
)

// SynthService produces synthetic observations and narrative reports
type SynthService struct {
	gen       *synth.Generator
	forceMock bool
	timeout   time.Duration
	maxRows   int
	in        instrument
}

// SynthOption configures a SynthService
type SynthOption func(*SynthService)

// WithForceMock serves every request from the mock client
func WithForceMock(force bool) SynthOption {
	return func(s *SynthService) { s.forceMock = force }
}

// WithBatchTimeout bounds a whole batch or report call
func WithBatchTimeout(d time.Duration) SynthOption {
	return func(s *SynthService) { s.timeout = d }
}

// WithMaxRows caps the rows accepted in one batch
func WithMaxRows(n int) SynthOption {
	return func(s *SynthService) { s.maxRows = n }
}

// NewSynthService wraps gen
func NewSynthService(gen *synth.Generator, metrics *infrastructure.BusinessMetrics, logger *slog.Logger, opts ...SynthOption) *SynthService {
	s := &SynthService{
		gen: gen,
		in:  newInstrument(metrics, logger, "synth_service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Live reports whether a real model backs the service
func (s *SynthService) Live() bool {
	return s.gen.Live() && !s.forceMock
}

func (s *SynthService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout > 0 {
		return context.WithTimeout(ctx, s.timeout)
	}
	return context.WithCancel(ctx)
}

// Generate runs one synthetic batch. Per-row failures are reported inline;
// only cancellation or an oversized batch fails the call.
func (s *SynthService) Generate(ctx context.Context, req synth.BatchRequest) (resp *synth.BatchResponse, err error) {
	req.Mock = req.Mock || s.forceMock
	ctx, done := s.in.start(ctx, KindSynthetic,
		attribute.Int("batch.rows", len(req.Matrix)),
		attribute.Bool("batch.mock", req.Mock))
	defer func() { done(err) }()

	if s.maxRows > 0 && len(req.Matrix) > s.maxRows {
		return nil, fmt.Errorf("%w: %d rows, limit is %d", ErrSampleTooLarge, len(req.Matrix), s.maxRows)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	resp, err = s.gen.GenerateBatch(ctx, req)
	if err != nil {
		return nil, err
	}

	s.in.metrics.RecordSynthetic(ctx, len(resp.Data), resp.Failed, req.Mock || !s.gen.Live(), time.Since(start))
	if resp.Failed > 0 {
		s.in.logger.WarnContext(ctx, "synthetic batch had failed rows",
			slog.Int("rows", len(resp.Data)),
			slog.Int("failed", resp.Failed))
	}
	return resp, nil
}

// Report asks the model for an HTML analysis of experiment results
func (s *SynthService) Report(ctx context.Context, background string, results []map[string]any, mock bool) (html string, err error) {
	mock = mock || s.forceMock
	ctx, done := s.in.start(ctx, KindReport,
		attribute.Int("report.rows", len(results)),
		attribute.Bool("report.mock", mock))
	defer func() { done(err) }()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.gen.ReportAnalysis(ctx, background, results, mock)
}

package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"doelab/internal/dataprocessing"
	apierrors "doelab/internal/errors"
	"doelab/internal/infrastructure"
	"doelab/internal/spc"
)

// SPCService runs the process control engine on JSON tables and uploads
type SPCService struct {
	maxRows int
	in      instrument
}

// NewSPCService creates an SPC service. maxRows caps table size; values
// below 1 disable the cap.
func NewSPCService(maxRows int, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *SPCService {
	return &SPCService{
		maxRows: maxRows,
		in:      newInstrument(metrics, logger, "spc_service"),
	}
}

// Analyze builds the control chart, histogram and Pareto sections.
// Absent columns yield empty sections rather than errors.
func (s *SPCService) Analyze(ctx context.Context, req spc.AnalysisRequest) (res spc.Result, err error) {
	ctx, done := s.in.start(ctx, KindSPC,
		attribute.Int("table.rows", len(req.Data)),
		attribute.String("spc.target", req.TargetVariable),
		attribute.String("spc.factor", req.FactorVariable))
	defer func() { done(err) }()

	if s.maxRows > 0 && len(req.Data) > s.maxRows {
		return spc.Result{}, fmt.Errorf("%w: %d rows, limit is %d", ErrSampleTooLarge, len(req.Data), s.maxRows)
	}

	res = spc.Analyze(req)
	if err = ctx.Err(); err != nil {
		return spc.Result{}, fmt.Errorf("spc: %w", err)
	}
	if res.ControlChart == nil {
		s.in.logger.DebugContext(ctx, "target column has no numeric values",
			slog.String("target", req.TargetVariable))
	} else if out := res.ControlChart.OutOfControl(); len(out) > 0 {
		s.in.logger.InfoContext(ctx, "points outside control limits",
			slog.String("target", req.TargetVariable),
			slog.Int("count", len(out)))
	}
	return res, nil
}

// AnalyzeUpload parses a CSV or XLSX file and analyses it
func (s *SPCService) AnalyzeUpload(ctx context.Context, filename string, r io.Reader, target, factor string) (spc.Result, error) {
	format, err := dataprocessing.DetectFormat(filename)
	if err != nil {
		return spc.Result{}, fmt.Errorf("spc upload: %w", err)
	}

	table, err := dataprocessing.ParseTable(r, format)
	if err != nil {
		if errors.Is(err, dataprocessing.ErrEmptyTable) || errors.Is(err, dataprocessing.ErrUnsupportedFormat) {
			return spc.Result{}, fmt.Errorf("spc upload: %w", err)
		}
		return spc.Result{}, apierrors.NewParsingError("could not parse uploaded file", err).
			WithContext("filename", filename).
			WithContext("format", string(format))
	}

	s.in.logger.InfoContext(ctx, "upload parsed",
		slog.String("filename", filename),
		slog.String("format", string(format)),
		slog.Int("rows", len(table)))

	return s.Analyze(ctx, spc.AnalysisRequest{
		Data:           table,
		TargetVariable: target,
		FactorVariable: factor,
	})
}

package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"doelab/internal/doe"
	"doelab/internal/exporter"
	"doelab/internal/infrastructure"
)

// ExportFormat names a design export encoding
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportXLSX ExportFormat = "xlsx"
)

// ContentType returns the MIME type of the export
func (f ExportFormat) ContentType() string {
	if f == ExportXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// ParseExportFormat resolves a format name, defaulting to CSV
func ParseExportFormat(name string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "csv":
		return ExportCSV, nil
	case "xlsx", "excel":
		return ExportXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedExport, name)
}

// DesignService generates experiment designs
type DesignService struct {
	maxRuns int
	in      instrument
}

// NewDesignService creates a design service. maxRuns caps the size of any
// single design; values below 1 disable the cap.
func NewDesignService(maxRuns int, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *DesignService {
	return &DesignService{
		maxRuns: maxRuns,
		in:      newInstrument(metrics, logger, "design_service"),
	}
}

// Generate builds the design matrix for req
func (s *DesignService) Generate(ctx context.Context, req doe.DesignRequest) (m *doe.DesignMatrix, err error) {
	ctx, done := s.in.start(ctx, KindDesign,
		attribute.String("doe.strategy", string(req.Strategy)),
		attribute.Int("doe.num_samples", req.NumSamples),
		attribute.Int("doe.num_factors", len(req.Variables)),
	)
	defer func() { done(err) }()

	runs, err := req.ExpectedRuns()
	if err != nil {
		return nil, fmt.Errorf("design: %w", err)
	}
	if s.maxRuns > 0 && runs > s.maxRuns {
		return nil, fmt.Errorf("%w: %d runs requested, limit is %d", ErrDesignTooLarge, runs, s.maxRuns)
	}

	m, err = doe.Generate(req)
	if err != nil {
		return nil, fmt.Errorf("design: %w", err)
	}
	if err = ctx.Err(); err != nil {
		return nil, fmt.Errorf("design: %w", err)
	}

	infrastructure.SetSpanAttributes(ctx, attribute.Int("doe.num_runs", m.NumRuns))
	s.in.metrics.RecordDesign(ctx, string(m.Strategy), m.NumRuns)
	s.in.logger.InfoContext(ctx, "design generated",
		slog.String("strategy", string(m.Strategy)),
		slog.Int("runs", m.NumRuns),
		slog.Int("factors", m.NumFactors))
	return m, nil
}

// Export generates the design for req and writes it to w in the given format
func (s *DesignService) Export(ctx context.Context, req doe.DesignRequest, format ExportFormat, w io.Writer) (*doe.DesignMatrix, error) {
	m, err := s.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	switch format {
	case ExportCSV:
		err = exporter.WriteDesignCSV(w, m, exporter.WriteOptions{BOMPrefix: true})
	case ExportXLSX:
		err = exporter.WriteDesignXLSX(w, m)
	default:
		err = fmt.Errorf("%w: %q", ErrUnsupportedExport, format)
	}
	if err != nil {
		return nil, fmt.Errorf("export design: %w", err)
	}
	return m, nil
}

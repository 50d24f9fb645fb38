package services

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"doelab/internal/infrastructure"
)

// Analysis kinds used as the metric "kind" label
const (
	KindDesign    = "design"
	KindInterval  = "estimation"
	KindEffect    = "effect_size"
	KindAdvanced  = "advanced"
	KindSPC       = "spc"
	KindSynthetic = "synthetic"
	KindReport    = "report"
)

// instrument carries the observability handles shared by every service
type instrument struct {
	tracer  trace.Tracer
	metrics *infrastructure.BusinessMetrics
	logger  *slog.Logger
}

func newInstrument(metrics *infrastructure.BusinessMetrics, logger *slog.Logger, component string) instrument {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return instrument{
		tracer:  otel.Tracer(infrastructure.MeterName),
		metrics: metrics,
		logger:  infrastructure.WithComponent(logger, component),
	}
}

// start opens a span for one analysis call. The returned func records
// duration metrics, marks the span on error and ends it.
func (in instrument) start(ctx context.Context, kind string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	ctx, span := in.tracer.Start(ctx, "analysis."+kind, trace.WithAttributes(attrs...))
	began := time.Now()

	return ctx, func(err error) {
		elapsed := time.Since(began)
		in.metrics.RecordAnalysis(ctx, kind, elapsed, err)
		if err != nil {
			infrastructure.RecordError(ctx, err)
			in.logger.WarnContext(ctx, "analysis failed",
				slog.String("kind", kind),
				slog.Duration("duration", elapsed),
				slog.String("error", err.Error()))
		} else {
			in.logger.DebugContext(ctx, "analysis completed",
				slog.String("kind", kind),
				slog.Duration("duration", elapsed))
		}
		span.End()
	}
}

package services

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"doelab/internal/estimation"
	"doelab/internal/infrastructure"
)

// StatisticsService runs the estimation engine
type StatisticsService struct {
	maxSample int
	in        instrument
}

// NewStatisticsService creates a statistics service. maxSample caps each
// input series; values below 1 disable the cap.
func NewStatisticsService(maxSample int, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *StatisticsService {
	return &StatisticsService{
		maxSample: maxSample,
		in:        newInstrument(metrics, logger, "statistics_service"),
	}
}

func (s *StatisticsService) checkSize(series ...[]float64) error {
	if s.maxSample < 1 {
		return nil
	}
	for _, data := range series {
		if len(data) > s.maxSample {
			return fmt.Errorf("%w: %d values, limit is %d", ErrSampleTooLarge, len(data), s.maxSample)
		}
	}
	return nil
}

// Interval computes the Student-t confidence interval of the mean
func (s *StatisticsService) Interval(ctx context.Context, data []float64, confidence float64) (res *estimation.IntervalResult, err error) {
	_, done := s.in.start(ctx, KindInterval,
		attribute.Int("sample.n", len(data)),
		attribute.Float64("confidence_level", confidence))
	defer func() { done(err) }()

	if err = s.checkSize(data); err != nil {
		return nil, err
	}
	if res, err = estimation.EstimateInterval(data, confidence); err != nil {
		return nil, fmt.Errorf("estimate interval: %w", err)
	}
	if err = ctx.Err(); err != nil {
		return nil, fmt.Errorf("estimate interval: %w", err)
	}
	return res, nil
}

// EffectSize computes Cohen's d between two groups
func (s *StatisticsService) EffectSize(ctx context.Context, groupA, groupB []float64) (res *estimation.EffectSizeResult, err error) {
	_, done := s.in.start(ctx, KindEffect,
		attribute.Int("group_a.n", len(groupA)),
		attribute.Int("group_b.n", len(groupB)))
	defer func() { done(err) }()

	if err = s.checkSize(groupA, groupB); err != nil {
		return nil, err
	}
	if res, err = estimation.EffectSize(groupA, groupB); err != nil {
		return nil, fmt.Errorf("effect size: %w", err)
	}
	if err = ctx.Err(); err != nil {
		return nil, fmt.Errorf("effect size: %w", err)
	}
	return res, nil
}

// Advanced computes the MLE, MAP and KDE estimates
func (s *StatisticsService) Advanced(ctx context.Context, data []float64, priorMean, priorStd float64) (res *estimation.AdvancedResult, err error) {
	_, done := s.in.start(ctx, KindAdvanced, attribute.Int("sample.n", len(data)))
	defer func() { done(err) }()

	if err = s.checkSize(data); err != nil {
		return nil, err
	}
	if res, err = estimation.AdvancedEstimate(data, priorMean, priorStd); err != nil {
		return nil, fmt.Errorf("advanced estimate: %w", err)
	}
	if err = ctx.Err(); err != nil {
		return nil, fmt.Errorf("advanced estimate: %w", err)
	}
	return res, nil
}

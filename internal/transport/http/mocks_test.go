package http

import (
	"context"
	"io"
	"log/slog"

	"github.com/stretchr/testify/mock"

	"doelab/internal/doe"
	apierrors "doelab/internal/errors"
	"doelab/internal/estimation"
	"doelab/internal/middleware"
	"doelab/internal/services"
	"doelab/internal/spc"
	"doelab/internal/synth"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testErrorHandler() *apierrors.ErrorHandler {
	return apierrors.NewErrorHandler(quietLogger(), false, ErrorMappings()...)
}

func testValidator(eh *apierrors.ErrorHandler) Validator {
	return middleware.NewValidationMiddleware(quietLogger(), eh, 0)
}

// MockDesignService is a testify mock of DesignService
type MockDesignService struct {
	mock.Mock
}

func (m *MockDesignService) Generate(ctx context.Context, req doe.DesignRequest) (*doe.DesignMatrix, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*doe.DesignMatrix), args.Error(1)
}

func (m *MockDesignService) Export(ctx context.Context, req doe.DesignRequest, format services.ExportFormat, w io.Writer) (*doe.DesignMatrix, error) {
	args := m.Called(ctx, req, format, w)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	if len(args) > 2 {
		_, _ = io.WriteString(w, args.String(2))
	}
	return args.Get(0).(*doe.DesignMatrix), args.Error(1)
}

// MockStatisticsService is a testify mock of StatisticsService
type MockStatisticsService struct {
	mock.Mock
}

func (m *MockStatisticsService) Interval(ctx context.Context, data []float64, confidence float64) (*estimation.IntervalResult, error) {
	args := m.Called(ctx, data, confidence)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*estimation.IntervalResult), args.Error(1)
}

func (m *MockStatisticsService) EffectSize(ctx context.Context, groupA, groupB []float64) (*estimation.EffectSizeResult, error) {
	args := m.Called(ctx, groupA, groupB)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*estimation.EffectSizeResult), args.Error(1)
}

func (m *MockStatisticsService) Advanced(ctx context.Context, data []float64, priorMean, priorStd float64) (*estimation.AdvancedResult, error) {
	args := m.Called(ctx, data, priorMean, priorStd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*estimation.AdvancedResult), args.Error(1)
}

// MockSPCService is a testify mock of SPCService
type MockSPCService struct {
	mock.Mock
}

func (m *MockSPCService) Analyze(ctx context.Context, req spc.AnalysisRequest) (spc.Result, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(spc.Result), args.Error(1)
}

func (m *MockSPCService) AnalyzeUpload(ctx context.Context, filename string, r io.Reader, target, factor string) (spc.Result, error) {
	body, _ := io.ReadAll(r)
	args := m.Called(ctx, filename, string(body), target, factor)
	return args.Get(0).(spc.Result), args.Error(1)
}

// MockSynthService is a testify mock of SynthService
type MockSynthService struct {
	mock.Mock
}

func (m *MockSynthService) Generate(ctx context.Context, req synth.BatchRequest) (*synth.BatchResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*synth.BatchResponse), args.Error(1)
}

func (m *MockSynthService) Report(ctx context.Context, background string, results []map[string]any, useMock bool) (string, error) {
	args := m.Called(ctx, background, results, useMock)
	return args.String(0), args.Error(1)
}

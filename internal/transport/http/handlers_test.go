package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"doelab/internal/dataprocessing"
	"doelab/internal/doe"
	"doelab/internal/estimation"
	"doelab/internal/services"
	"doelab/internal/spc"
	"doelab/internal/synth"
)

func postJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func designRouter(svc DesignService) http.Handler {
	eh := testErrorHandler()
	h := NewDesignHandler(svc, testValidator(eh), eh, quietLogger())
	r := chi.NewRouter()
	r.Mount("/api/design", h.Routes())
	return r
}

func TestDesignHandlerCreate(t *testing.T) {
	svc := new(MockDesignService)
	matrix := &doe.DesignMatrix{
		Strategy:   doe.StrategySpaceFilling,
		NumFactors: 1,
		NumRuns:    2,
		Columns:    []string{"Temp"},
		Matrix:     []doe.Row{{"Temp": 110.5}, {"Temp": 180.25}},
	}
	svc.On("Generate", mock.Anything, mock.MatchedBy(func(req doe.DesignRequest) bool {
		return req.Strategy == "lhc" && req.NumSamples == 10 &&
			len(req.Variables) == 1 && req.Variables[0].Min == 100 && req.Variables[0].Max == 200
	})).Return(matrix, nil)

	rec := postJSON(t, designRouter(svc), "/api/design",
		`{"strategy":"lhc","variables":[{"name":"Temp","type":"continuous","min":100,"max":200}]}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, "space-filling", body["strategy"])
	assert.Equal(t, 2.0, body["num_runs"])
	assert.Len(t, body["matrix"], 2)
	svc.AssertExpectations(t)
}

func TestDesignHandlerErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "malformed json",
			body:       `{"strategy":`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_REQUEST",
		},
		{
			name:       "empty body",
			body:       ``,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_REQUEST",
		},
		{
			name:       "unknown strategy",
			body:       `{"strategy":"taguchi","variables":[{"name":"A","type":"continuous"}]}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_FAILED",
		},
		{
			name:       "no variables",
			body:       `{"strategy":"random","variables":[]}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_FAILED",
		},
		{
			name:       "bad variable type",
			body:       `{"strategy":"random","variables":[{"name":"A","type":"ordinal"}]}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_FAILED",
		},
		{
			name:       "inverted bounds",
			body:       `{"strategy":"random","variables":[{"name":"A","type":"continuous","min":5,"max":1}]}`,
			serviceErr: fmt.Errorf("design: %w", doe.ErrInvalidBounds),
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_BOUNDS",
		},
		{
			name:       "duplicate names",
			body:       `{"strategy":"random","variables":[{"name":"A","type":"continuous"},{"name":"A","type":"continuous"}]}`,
			serviceErr: fmt.Errorf("design: %w", doe.ErrInvalidInput),
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_INPUT",
		},
		{
			name:       "too many runs",
			body:       `{"strategy":"random","num_samples":500000,"variables":[{"name":"A","type":"continuous"}]}`,
			serviceErr: services.ErrDesignTooLarge,
			wantStatus: http.StatusBadRequest,
			wantCode:   "DESIGN_TOO_LARGE",
		},
		{
			name:       "unexpected failure",
			body:       `{"strategy":"random","variables":[{"name":"A","type":"continuous"}]}`,
			serviceErr: fmt.Errorf("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_SERVER_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockDesignService)
			if tt.serviceErr != nil {
				svc.On("Generate", mock.Anything, mock.Anything).Return(nil, tt.serviceErr)
			}

			rec := postJSON(t, designRouter(svc), "/api/design", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			body := decodeBody(t, rec)
			assert.Equal(t, tt.wantCode, body["error_code"])
			assert.Equal(t, float64(tt.wantStatus), body["status"])
			assert.Equal(t, "/api/design", body["instance"])
			if tt.serviceErr == nil {
				svc.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestDesignHandlerValidationDetails(t *testing.T) {
	rec := postJSON(t, designRouter(new(MockDesignService)), "/api/design",
		`{"strategy":"random","variables":[{"type":"continuous"}]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeBody(t, rec)
	details := body["details"].(map[string]any)
	errs := details["errors"].([]any)
	require.Len(t, errs, 1)
	first := errs[0].(map[string]any)
	assert.Equal(t, "variables[0].name", first["field"])
	assert.Equal(t, "name is required", first["message"])
}

func TestDesignHandlerExport(t *testing.T) {
	matrix := &doe.DesignMatrix{Strategy: doe.StrategyFactorial, NumRuns: 4}

	t.Run("csv", func(t *testing.T) {
		svc := new(MockDesignService)
		svc.On("Export", mock.Anything, mock.Anything, services.ExportCSV, mock.Anything).
			Return(matrix, nil, "Run,A\n1,0\n")

		rec := postJSON(t, designRouter(svc), "/api/design/export",
			`{"strategy":"factorial","variables":[{"name":"A","type":"continuous"}]}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="design_factorial_4.csv"`, rec.Header().Get("Content-Disposition"))
		assert.Equal(t, "Run,A\n1,0\n", rec.Body.String())
	})

	t.Run("xlsx", func(t *testing.T) {
		svc := new(MockDesignService)
		svc.On("Export", mock.Anything, mock.Anything, services.ExportXLSX, mock.Anything).
			Return(matrix, nil, "PK")

		rec := postJSON(t, designRouter(svc), "/api/design/export?format=xlsx",
			`{"strategy":"factorial","variables":[{"name":"A","type":"continuous"}]}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "spreadsheetml")
		assert.Contains(t, rec.Header().Get("Content-Disposition"), ".xlsx")
	})

	t.Run("unknown format", func(t *testing.T) {
		svc := new(MockDesignService)
		rec := postJSON(t, designRouter(svc), "/api/design/export?format=pdf",
			`{"strategy":"factorial","variables":[{"name":"A","type":"continuous"}]}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "Export", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func statsRouter(svc StatisticsService) http.Handler {
	eh := testErrorHandler()
	h := NewStatsHandler(svc, testValidator(eh), eh, quietLogger())
	r := chi.NewRouter()
	r.Mount("/api/stats", h.Routes())
	return r
}

func TestStatsHandlerEstimation(t *testing.T) {
	svc := new(MockStatisticsService)
	svc.On("Interval", mock.Anything, []float64{1, 2, 3}, 0.95).
		Return(&estimation.IntervalResult{Mean: 2, N: 3, ConfidenceLevel: 0.95}, nil)
	svc.On("Interval", mock.Anything, []float64{1}, 0.9).
		Return(nil, fmt.Errorf("estimate interval: %w", estimation.ErrInsufficientData))

	router := statsRouter(svc)

	rec := postJSON(t, router, "/api/stats/estimation", `{"data":[1,2,3]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, 2.0, body["mean"])
	assert.Equal(t, 0.95, body["confidence_level"])

	rec = postJSON(t, router, "/api/stats/estimation", `{"data":[1],"confidence_level":0.9}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "INSUFFICIENT_DATA", decodeBody(t, rec)["error_code"])

	rec = postJSON(t, router, "/api/stats/estimation", `{"data":[1,2],"confidence_level":1.5}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_FAILED", decodeBody(t, rec)["error_code"])

	svc.AssertExpectations(t)
}

func TestStatsHandlerEffectSizeAndAdvanced(t *testing.T) {
	svc := new(MockStatisticsService)
	svc.On("EffectSize", mock.Anything, []float64{1, 2}, []float64{3, 4}).
		Return(&estimation.EffectSizeResult{CohensD: -2.83, Interpretation: "Large effect"}, nil)
	svc.On("Advanced", mock.Anything, []float64{4, 5, 6}, 5.0, 2.0).
		Return(&estimation.AdvancedResult{MLEMean: 5, KDEX: []float64{1}, KDEY: []float64{0.1}}, nil)

	router := statsRouter(svc)

	rec := postJSON(t, router, "/api/stats/effect-size", `{"group_a":[1,2],"group_b":[3,4]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Large effect", decodeBody(t, rec)["interpretation"])

	rec = postJSON(t, router, "/api/stats/advanced", `{"data":[4,5,6],"prior_mean":5,"prior_std":2}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 5.0, decodeBody(t, rec)["mle_mean"])

	rec = postJSON(t, router, "/api/stats/advanced", `{"data":[4,5,6],"prior_mean":5,"prior_std":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(t, router, "/api/stats/effect-size", `{"group_a":[1,2]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	svc.AssertExpectations(t)
}

func spcRouter(svc SPCService, maxUpload int64) http.Handler {
	eh := testErrorHandler()
	h := NewSPCHandler(svc, testValidator(eh), eh, maxUpload, quietLogger())
	r := chi.NewRouter()
	r.Mount("/api/spc", h.Routes())
	return r
}

func multipartBody(t *testing.T, filename, content string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestSPCHandlerAnalyze(t *testing.T) {
	svc := new(MockSPCService)
	svc.On("Analyze", mock.Anything, mock.MatchedBy(func(req spc.AnalysisRequest) bool {
		return req.TargetVariable == "Yield" && req.Sigma == spc.DefaultSigma && len(req.Data) == 2
	})).Return(spc.Result{ControlChart: &spc.ControlChartResult{Mean: 11, Values: []float64{10, 12}}}, nil)

	rec := postJSON(t, spcRouter(svc, 0), "/api/spc",
		`{"data":[{"Yield":10},{"Yield":12}],"target_variable":"Yield"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	assert.Equal(t, 11.0, body["control_chart"].(map[string]any)["mean"])
	assert.Equal(t, map[string]any{}, body["histogram"])
	assert.Equal(t, map[string]any{}, body["pareto"])
	svc.AssertExpectations(t)
}

func TestSPCHandlerUpload(t *testing.T) {
	csv := "Yield,Defect\n10,Scratch\n12,Dent\n"

	t.Run("success", func(t *testing.T) {
		svc := new(MockSPCService)
		svc.On("AnalyzeUpload", mock.Anything, "lots.csv", csv, "Yield", "Defect").
			Return(spc.Result{Pareto: &spc.ParetoResult{Labels: []any{"Scratch", "Dent"}}}, nil)

		body, ct := multipartBody(t, "lots.csv", csv, map[string]string{
			"target_variable": "Yield",
			"factor_variable": "Defect",
		})
		req := httptest.NewRequest(http.MethodPost, "/api/spc/upload", body)
		req.Header.Set("Content-Type", ct)
		rec := httptest.NewRecorder()
		spcRouter(svc, 1<<20).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Body.String(), `"labels":["Scratch","Dent"]`)
		svc.AssertExpectations(t)
	})

	t.Run("missing file", func(t *testing.T) {
		svc := new(MockSPCService)
		body, ct := multipartBody(t, "", "", map[string]string{"target_variable": "Yield"})
		req := httptest.NewRequest(http.MethodPost, "/api/spc/upload", body)
		req.Header.Set("Content-Type", ct)
		rec := httptest.NewRecorder()
		spcRouter(svc, 1<<20).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "VALIDATION_FAILED", decodeBody(t, rec)["error_code"])
	})

	t.Run("missing target", func(t *testing.T) {
		svc := new(MockSPCService)
		body, ct := multipartBody(t, "lots.csv", csv, nil)
		req := httptest.NewRequest(http.MethodPost, "/api/spc/upload", body)
		req.Header.Set("Content-Type", ct)
		rec := httptest.NewRecorder()
		spcRouter(svc, 1<<20).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "AnalyzeUpload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unsupported format", func(t *testing.T) {
		svc := new(MockSPCService)
		svc.On("AnalyzeUpload", mock.Anything, "lots.pdf", "%PDF", "Yield", "").
			Return(spc.Result{}, fmt.Errorf("spc upload: %w", dataprocessing.ErrUnsupportedFormat))

		body, ct := multipartBody(t, "lots.pdf", "%PDF", map[string]string{"target_variable": "Yield"})
		req := httptest.NewRequest(http.MethodPost, "/api/spc/upload", body)
		req.Header.Set("Content-Type", ct)
		rec := httptest.NewRecorder()
		spcRouter(svc, 1<<20).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
		assert.Equal(t, "UNSUPPORTED_FORMAT", decodeBody(t, rec)["error_code"])
	})

	t.Run("too large", func(t *testing.T) {
		svc := new(MockSPCService)
		body, ct := multipartBody(t, "lots.csv", strings.Repeat("1,2\n", 1024), map[string]string{"target_variable": "Yield"})
		req := httptest.NewRequest(http.MethodPost, "/api/spc/upload", body)
		req.Header.Set("Content-Type", ct)
		rec := httptest.NewRecorder()
		spcRouter(svc, 512).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})
}

func synthRouter(svc SynthService) http.Handler {
	eh := testErrorHandler()
	h := NewSynthHandler(svc, testValidator(eh), eh, quietLogger())
	r := chi.NewRouter()
	r.Post("/api/generate", h.Generate)
	r.Post("/api/analysis", h.Analysis)
	return r
}

func TestSynthHandler(t *testing.T) {
	svc := new(MockSynthService)
	svc.On("Generate", mock.Anything, mock.MatchedBy(func(req synth.BatchRequest) bool {
		return len(req.Matrix) == 1 && req.Mock
	})).Return(&synth.BatchResponse{
		Data:      []map[string]any{{"Temp": 100.0, "Response": 91.0}},
		TotalTime: 0.5,
	}, nil)
	svc.On("Report", mock.Anything, "Polymer", mock.Anything, false).Return("<h3>Summary</h3>", nil)

	router := synthRouter(svc)

	rec := postJSON(t, router, "/api/generate", `{"matrix":[{"Temp":100}],"mock":true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, 0.5, body["total_time"])
	assert.Len(t, body["data"], 1)

	rec = postJSON(t, router, "/api/analysis", `{"context":"Polymer","results":[{"Response":91}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "<h3>Summary</h3>", decodeBody(t, rec)["analysis_html"])

	rec = postJSON(t, router, "/api/analysis", `{"results":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	svc.AssertExpectations(t)
}

func TestSynthHandlerTimeout(t *testing.T) {
	svc := new(MockSynthService)
	svc.On("Generate", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("generate batch: %w", context.DeadlineExceeded))

	rec := postJSON(t, synthRouter(svc), "/api/generate", `{"matrix":[{"Temp":100}]}`)
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

type stubHealth struct {
	ready string
}

func (s stubHealth) HealthCheck(context.Context) services.HealthStatus {
	return services.HealthStatus{Status: "ok", Service: "DOE Lab", Version: "9.9.9"}
}

func (s stubHealth) ReadinessCheck(context.Context) services.HealthStatus {
	return services.HealthStatus{Status: s.ready}
}

func (s stubHealth) LivenessCheck(context.Context) services.HealthStatus {
	return services.HealthStatus{Status: "alive"}
}

func (s stubHealth) Version() map[string]any {
	return map[string]any{"version": "9.9.9"}
}

func (s stubHealth) GetDetailedHealth(ctx context.Context) map[string]any {
	return map[string]any{"readiness": s.ReadinessCheck(ctx), "version": s.Version()}
}

func TestHealthHandler(t *testing.T) {
	get := func(h http.Handler, path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	handler := NewHealthHandler(stubHealth{ready: services.StatusReady}, quietLogger())
	r := chi.NewRouter()
	r.Get("/", handler.Root)
	r.Get("/api/version", handler.Version)
	r.Mount("/api/health", handler.Routes())

	rec := get(r, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"status": "ok", "service": "DOE Lab", "version": "9.9.9"}, decodeBody(t, rec))

	assert.Equal(t, http.StatusOK, get(r, "/api/health").Code)
	assert.Equal(t, http.StatusOK, get(r, "/api/health/ready").Code)
	assert.Equal(t, "alive", decodeBody(t, get(r, "/api/health/live"))["status"])
	assert.Equal(t, "9.9.9", decodeBody(t, get(r, "/api/version"))["version"])
	assert.Contains(t, decodeBody(t, get(r, "/api/health/detailed")), "readiness")

	notReady := NewHealthHandler(stubHealth{ready: services.StatusNotReady}, quietLogger())
	rec = httptest.NewRecorder()
	notReady.ReadinessCheck(rec, httptest.NewRequest(http.MethodGet, "/api/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	NewMetricsHandler(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")

	custom := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("custom"))
	})
	rec = httptest.NewRecorder()
	NewMetricsHandler(custom).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, "custom", rec.Body.String())
}

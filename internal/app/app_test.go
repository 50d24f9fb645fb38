package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doelab/internal/config"
	"doelab/internal/services"
	"doelab/internal/synth"
)

// createTestLogger creates a logger that discards output for testing
func createTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// testConfig returns defaults with telemetry and rate limiting off
func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Server.Port = 0
	cfg.Telemetry.EnableMetrics = false
	cfg.Telemetry.MetricExporter = "none"
	cfg.Security.RateLimit.Enabled = false
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config, opts ...Option) *Application {
	t.Helper()
	opts = append([]Option{WithLogger(createTestLogger())}, opts...)
	app, err := NewApplicationWithConfig(cfg, opts...)
	require.NoError(t, err)
	require.NotNil(t, app)
	return app
}

func do(t *testing.T, h http.Handler, method, path, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// stubClient answers every completion with a fixed JSON object
type stubClient struct {
	calls atomic.Int32
}

func (s *stubClient) Complete(ctx context.Context, c synth.Completion) (string, error) {
	s.calls.Add(1)
	return `{"yield": 42.5}`, nil
}

// TestNewApplicationWithConfig tests construction and service wiring
func TestNewApplicationWithConfig(t *testing.T) {
	t.Run("nil config", func(t *testing.T) {
		app, err := NewApplicationWithConfig(nil)
		assert.Error(t, err)
		assert.Nil(t, app)
	})

	t.Run("services wired", func(t *testing.T) {
		app := newTestApp(t, testConfig())

		assert.NotNil(t, app.OTelProviders)
		assert.NotNil(t, app.Metrics)
		assert.NotNil(t, app.Runtime)
		assert.NotNil(t, app.ErrorHandler)
		assert.NotNil(t, app.Validator)
		assert.NotNil(t, app.DesignService)
		assert.NotNil(t, app.StatisticsService)
		assert.NotNil(t, app.SPCService)
		assert.NotNil(t, app.SynthService)
		assert.NotNil(t, app.HealthService)
		assert.NotNil(t, app.Router)
		assert.NotNil(t, app.Server)
		assert.False(t, app.SynthService.Live())
	})

	t.Run("injected model client", func(t *testing.T) {
		app := newTestApp(t, testConfig(), WithSynthClient(&stubClient{}))
		assert.True(t, app.SynthService.Live())
	})

	t.Run("force mock overrides client", func(t *testing.T) {
		cfg := testConfig()
		cfg.Generator.ForceMock = true
		app := newTestApp(t, cfg, WithSynthClient(&stubClient{}))
		assert.False(t, app.SynthService.Live())
	})

	t.Run("api key builds openai client", func(t *testing.T) {
		cfg := testConfig()
		cfg.Generator.APIKey = "sk-test"
		cfg.Generator.BaseURL = "http://127.0.0.1:1"
		app := newTestApp(t, cfg)
		assert.True(t, app.SynthService.Live())
	})

	t.Run("unsupported metric exporter", func(t *testing.T) {
		cfg := testConfig()
		cfg.Telemetry.EnableMetrics = true
		cfg.Telemetry.MetricExporter = "statsd"
		_, err := NewApplicationWithConfig(cfg, WithLogger(createTestLogger()))
		assert.Error(t, err)
	})
}

// TestApplication_routes exercises every registered endpoint through the full router
func TestApplication_routes(t *testing.T) {
	app := newTestApp(t, testConfig())

	designBody := `{"strategy":"factorial","variables":[{"name":"Temp","type":"continuous","min":100,"max":200},{"name":"Catalyst","type":"categorical","levels":["A","B"]}]}`

	tests := []struct {
		name           string
		method         string
		path           string
		contentType    string
		body           string
		expectedStatus int
		contains       string
	}{
		{"root", "GET", "/", "", "", http.StatusOK, `"status":"ok"`},
		{"health", "GET", "/api/health", "", "", http.StatusOK, `"status"`},
		{"readiness", "GET", "/api/health/ready", "", "", http.StatusOK, `"generator"`},
		{"liveness", "GET", "/api/health/live", "", "", http.StatusOK, `"alive"`},
		{"detailed health", "GET", "/api/health/detailed", "", "", http.StatusOK, `"liveness"`},
		{"version", "GET", "/api/version", "", "", http.StatusOK, `"version"`},
		{"design", "POST", "/api/design", "application/json", designBody, http.StatusOK, `"num_runs":4`},
		{"design legacy path", "POST", "/design", "application/json", designBody, http.StatusOK, `"num_runs":4`},
		{"design export", "POST", "/api/design/export?format=csv", "application/json", designBody, http.StatusOK, "Run,Temp,Catalyst"},
		{"estimation", "POST", "/api/stats/estimation", "application/json", `{"data":[1,2,3,4,5]}`, http.StatusOK, `"mean":3`},
		{"effect size legacy path", "POST", "/stats/effect-size", "application/json", `{"group_a":[1,2,3],"group_b":[4,5,6]}`, http.StatusOK, `"cohens_d"`},
		{"advanced", "POST", "/api/stats/advanced", "application/json", `{"data":[1,2,3,4,5],"prior_mean":0,"prior_std":1}`, http.StatusOK, `"kde_x"`},
		{"spc", "POST", "/api/spc", "application/json", `{"data":[{"y":1},{"y":2},{"y":3}],"target_variable":"y"}`, http.StatusOK, `"control_chart"`},
		{"spc legacy path", "POST", "/spc", "application/json", `{"data":[{"y":1}],"target_variable":"missing"}`, http.StatusOK, `"histogram":{}`},
		{"generate mock", "POST", "/api/generate", "application/json", `{"matrix":[{"Temp":150}],"mock":true}`, http.StatusOK, `"synthetic_output"`},
		{"analysis legacy path", "POST", "/analysis", "application/json", `{"context":"baking","results":[{"Temp":150}],"mock":true}`, http.StatusOK, `"analysis_html"`},
		{"insufficient data", "POST", "/api/stats/estimation", "application/json", `{"data":[1]}`, http.StatusUnprocessableEntity, `"INSUFFICIENT_DATA"`},
		{"invalid json", "POST", "/api/design", "application/json", `{"strategy":`, http.StatusBadRequest, `"type"`},
		{"missing content type", "POST", "/api/design", "", designBody, http.StatusBadRequest, "Content-Type"},
		{"unsupported content type", "POST", "/api/design", "text/plain", designBody, http.StatusUnsupportedMediaType, "Unsupported content type"},
		{"not found", "GET", "/api/arima", "", "", http.StatusNotFound, "Not Found"},
		{"method not allowed", "GET", "/api/design", "", "", http.StatusMethodNotAllowed, "Method Not Allowed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, app.Router, tt.method, tt.path, tt.contentType, tt.body)
			assert.Equal(t, tt.expectedStatus, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Body.String(), tt.contains)
		})
	}
}

// TestApplication_middleware checks the headers added by the shared middleware chain
func TestApplication_middleware(t *testing.T) {
	t.Run("request id and security headers", func(t *testing.T) {
		app := newTestApp(t, testConfig())
		rec := do(t, app.Router, "GET", "/api/health", "", "")

		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
		assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	})

	t.Run("cors wildcard", func(t *testing.T) {
		app := newTestApp(t, testConfig())
		req := httptest.NewRequest(http.MethodOptions, "/api/design", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		rec := httptest.NewRecorder()
		app.Router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("cors disabled", func(t *testing.T) {
		cfg := testConfig()
		cfg.Security.EnableCORS = false
		app := newTestApp(t, cfg)
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		rec := httptest.NewRecorder()
		app.Router.ServeHTTP(rec, req)

		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("rate limit", func(t *testing.T) {
		cfg := testConfig()
		cfg.Security.RateLimit = config.RateLimitConfig{Enabled: true, RPS: 0.001, Burst: 1}
		app := newTestApp(t, cfg)

		first := do(t, app.Router, "GET", "/api/health", "", "")
		second := do(t, app.Router, "GET", "/api/health", "", "")

		assert.Equal(t, http.StatusOK, first.Code)
		assert.Equal(t, http.StatusTooManyRequests, second.Code)
		assert.Equal(t, "1", second.Header().Get("Retry-After"))
	})
}

// TestApplication_generator checks the injected client reaches the generate endpoint
func TestApplication_generator(t *testing.T) {
	client := &stubClient{}
	app := newTestApp(t, testConfig(), WithSynthClient(client))

	rec := do(t, app.Router, "POST", "/api/generate", "application/json",
		`{"matrix":[{"Temp":150},{"Temp":160},{"Temp":170}],"context":"baking"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp synth.BatchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 3)
	assert.Zero(t, resp.Failed)
	assert.Equal(t, 42.5, resp.Data[0]["yield"])
	assert.Equal(t, int32(3), client.calls.Load())

	ready := do(t, app.Router, "GET", "/api/health/ready", "", "")
	var status services.HealthStatus
	require.NoError(t, json.Unmarshal(ready.Body.Bytes(), &status))
	assert.Equal(t, services.StatusReady, status.Status)
	assert.Equal(t, services.StatusReady, status.Services["generator"].Status)
}

// TestApplication_metrics tests the Prometheus endpoint
func TestApplication_metrics(t *testing.T) {
	cfg := testConfig()
	cfg.Telemetry.EnableMetrics = true
	cfg.Telemetry.MetricExporter = "prometheus"
	app := newTestApp(t, cfg)
	t.Cleanup(func() { _ = app.OTelProviders.Shutdown(context.Background()) })

	require.NotNil(t, app.OTelProviders.PrometheusHTTP)
	do(t, app.Router, "GET", "/api/health", "", "")

	rec := do(t, app.Router, "GET", "/metrics", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

// TestApplication_createServer tests server construction from config
func TestApplication_createServer(t *testing.T) {
	cfg := testConfig()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 9090
	app := newTestApp(t, cfg)

	assert.Equal(t, "127.0.0.1:9090", app.Server.Addr)
	assert.Equal(t, app.Router, app.Server.Handler)
	assert.Equal(t, cfg.Server.ReadTimeout, app.Server.ReadTimeout)
	assert.Equal(t, cfg.Server.WriteTimeout, app.Server.WriteTimeout)
	assert.Equal(t, cfg.Server.IdleTimeout, app.Server.IdleTimeout)
	assert.Equal(t, cfg.Server.MaxHeaderBytes, app.Server.MaxHeaderBytes)
}

// TestApplication_StartStop tests the server lifecycle
func TestApplication_StartStop(t *testing.T) {
	cfg := testConfig()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.ShutdownTimeout = 5 * time.Second
	app := newTestApp(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, app.Start(ctx, cancel))
	time.Sleep(50 * time.Millisecond)

	select {
	case <-ctx.Done():
		t.Fatal("server failed to start")
	default:
	}

	assert.NoError(t, app.Stop(ctx))
}

// TestApplication_getCORSConfig tests the CORS policy derived from config
func TestApplication_getCORSConfig(t *testing.T) {
	tests := []struct {
		name        string
		origins     []string
		credentials bool
	}{
		{"wildcard", []string{"*"}, false},
		{"explicit origins", []string{"http://localhost:3000"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.Security.AllowedOrigins = tt.origins
			app := newTestApp(t, cfg)

			cors := app.getCORSConfig()
			assert.Equal(t, tt.origins, cors.AllowedOrigins)
			assert.Equal(t, tt.credentials, cors.AllowCredentials)
			assert.Contains(t, cors.ExposedHeaders, "Content-Disposition")
		})
	}
}

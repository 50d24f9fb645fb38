package synth

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	// DefaultWorkers bounds concurrent row generation
	DefaultWorkers = 10

	// DefaultContext is used when a batch request carries no context
	DefaultContext = "Generate a scientific observation log based on these conditions."

	// ReportRowLimit caps the rows quoted in a report prompt
	ReportRowLimit = 50

	// SyntheticOutputKey holds the observation text merged into each row
	SyntheticOutputKey = "synthetic_output"
)

const rowSystemPrompt = "You are a specialized synthetic data generator engine. You output valid JSON only."

const reportSystemPrompt = "You are a Chief Statistician. Output valid HTML content only (no markdown code blocks). Write in Korean."

// BatchRequest asks for one synthetic observation per design row
type BatchRequest struct {
	Matrix  []map[string]any `json:"matrix"`
	Context string           `json:"context"`
	Mock    bool             `json:"mock"`
}

// BatchResponse holds the merged rows in request order
type BatchResponse struct {
	Data      []map[string]any `json:"data"`
	TotalTime float64          `json:"total_time"`
	Failed    int              `json:"failed"`
}

// Generator turns design rows into synthetic observations
type Generator struct {
	client  Client
	mock    Client
	workers int
	logger  *slog.Logger
}

// Option configures a Generator
type Option func(*Generator)

// WithWorkers sets the worker pool size
func WithWorkers(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.workers = n
		}
	}
}

// WithMockClient replaces the client used for mock requests
func WithMockClient(c Client) Option {
	return func(g *Generator) {
		if c != nil {
			g.mock = c
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// NewGenerator creates a generator. client may be nil, in which case every
// request is served by the mock client.
func NewGenerator(client Client, opts ...Option) *Generator {
	g := &Generator{
		client:  client,
		mock:    NewMockClient(uint64(time.Now().UnixNano()), 0),
		workers: DefaultWorkers,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Live reports whether a real model client is configured
func (g *Generator) Live() bool {
	return g.client != nil
}

func (g *Generator) pick(mock bool) Client {
	if mock || g.client == nil {
		return g.mock
	}
	return g.client
}

// GenerateBatch runs every row through the model. A row whose completion
// fails is returned with Response 0 and an error observation. The batch
// itself fails only when ctx is done.
func (g *Generator) GenerateBatch(ctx context.Context, req BatchRequest) (*BatchResponse, error) {
	start := time.Now()
	if strings.TrimSpace(req.Context) == "" {
		req.Context = DefaultContext
	}
	client := g.pick(req.Mock)

	results := make([]map[string]any, len(req.Matrix))
	failed := make([]bool, len(req.Matrix))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)
	for i, row := range req.Matrix {
		if egCtx.Err() != nil {
			break
		}
		eg.Go(func() error {
			results[i], failed[i] = g.generateRow(egCtx, client, row, req.Context)
			return nil
		})
	}
	_ = eg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("generate batch: %w", err)
	}

	resp := &BatchResponse{Data: results, TotalTime: time.Since(start).Seconds()}
	for _, f := range failed {
		if f {
			resp.Failed++
		}
	}

	g.logger.InfoContext(ctx, "synthetic batch generated",
		"rows", len(results),
		"failed", resp.Failed,
		"mock", client == g.mock,
		"duration", time.Since(start),
	)
	return resp, nil
}

func (g *Generator) generateRow(ctx context.Context, client Client, row map[string]any, background string) (map[string]any, bool) {
	conditions := formatConditions(row)
	content, err := client.Complete(ctx, Completion{
		System:      rowSystemPrompt,
		Prompt:      rowPrompt(background, conditions),
		Temperature: 0.7,
		MaxTokens:   150,
		JSON:        true,
		Subject:     conditions,
	})
	if err != nil {
		g.logger.WarnContext(ctx, "row generation failed", "conditions", conditions, "error", err)
		return errorRow(row, err), true
	}
	return mergeOutput(row, content), false
}

// mergeOutput copies row and folds a JSON object response into it.
// Non-object responses are kept verbatim as the observation.
func mergeOutput(row map[string]any, content string) map[string]any {
	out := make(map[string]any, len(row)+3)
	for k, v := range row {
		out[k] = v
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(content), &data); err != nil || data == nil {
		out[SyntheticOutputKey] = content
		return out
	}
	for k, v := range data {
		out[k] = v
	}
	if obs, ok := data["Observation"]; ok {
		out[SyntheticOutputKey] = obs
	} else {
		out[SyntheticOutputKey] = content
	}
	return out
}

func errorRow(row map[string]any, err error) map[string]any {
	out := make(map[string]any, len(row)+3)
	for k, v := range row {
		out[k] = v
	}
	msg := "[ERROR] Generation failed: " + err.Error()
	out["Response"] = 0.0
	out["Observation"] = msg
	out[SyntheticOutputKey] = msg
	return out
}

// formatConditions renders a row as "k: v" pairs in key order
func formatConditions(row map[string]any) string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s: %v", k, row[k])
	}
	return strings.Join(parts, ", ")
}

func rowPrompt(background, conditions string) string {
	return fmt.Sprintf(`Context: %s

Experimental Conditions:
%s

Task:
Generate a realistic, high-fidelity data record or observation log corresponding strictly to these experimental conditions.

CRITICAL: You must output a valid JSON object with exactly two keys:
1. "Response": A single numeric representative value (float) for the primary outcome (e.g. Yield, Purity, Strength).
2. "Observation": A short textual scientific observation.

Example: {"Response": 98.2, "Observation": "Clear solution, rapid dissolution."}`, background, conditions)
}

// ReportAnalysis asks the model for an HTML analysis of experiment results.
// Model failures are rendered into the returned HTML; only a done ctx is an error.
func (g *Generator) ReportAnalysis(ctx context.Context, background string, results []map[string]any, mock bool) (string, error) {
	client := g.pick(mock)

	subset := results
	if len(subset) > ReportRowLimit {
		subset = subset[:ReportRowLimit]
	}
	summary, err := json.Marshal(subset)
	if err != nil {
		return "", fmt.Errorf("encode report data: %w", err)
	}

	variables := "Variables"
	if len(results) > 0 {
		keys := make([]string, 0, len(results[0]))
		for k := range results[0] {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		variables = strings.Join(keys, ", ")
	}

	out, err := client.Complete(ctx, Completion{
		System:      reportSystemPrompt,
		Prompt:      reportPrompt(background, string(summary), variables),
		Temperature: 0.7,
		MaxTokens:   2000,
		Subject:     background,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("report analysis: %w", ctxErr)
		}
		g.logger.WarnContext(ctx, "report analysis failed", "error", err)
		return "<p>Analysis generation failed: " + html.EscapeString(err.Error()) + "</p>", nil
	}
	return out, nil
}

func reportPrompt(background, data, variables string) string {
	return fmt.Sprintf(`Context: %s

Experimental Data (Subset):
%s

Task:
Act as a Senior Statistical Consultant (Ph.D. level). Provide a strictly professional, highly detailed executive summary and analysis of this experiment in KOREAN (한국어).

Structure your response in HTML format (using <h3>, <p>, <ul>, <li> tags) suitable for embedding in a formal report.
The analysis should be extensive enough to fill about 1-2 pages of A4 when printed.

Required Sections:
1. <h3>종합 요약 (Executive Summary)</h3>: A high-level summary of the experiment's purpose and outcomes.
2. <h3>데이터 통계 분석 (Statistical Analysis)</h3>: Distribution, mean, standard deviation and any anomalies. Mention specific values from the data.
3. <h3>주요 발견 및 상관관계 (Key Findings & Correlations)</h3>: How the variables (%s) impacted the response.
4. <h3>개선 권고 사항 (Recommendations)</h3>: Concrete next steps for process optimization.

Tone: Formal, Academic, Insightful.
Language: Korean (한국어) ONLY.`, background, data, variables)
}

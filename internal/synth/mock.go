package synth

import (
	"context"
	"encoding/json"
	"math"
	"math/rand/v2"
	"sync"
	"time"
)

// MockClient returns placeholder completions without calling a model.
// JSON completions get a random Response in [80, 100]; other completions
// get a canned HTML report.
type MockClient struct {
	mu      sync.Mutex
	rng     *rand.Rand
	latency time.Duration
}

// NewMockClient creates a mock client. A zero latency returns immediately.
func NewMockClient(seed uint64, latency time.Duration) *MockClient {
	return &MockClient{
		rng:     rand.New(rand.NewPCG(seed, seed^0x5bd1e995)),
		latency: latency,
	}
}

// Complete implements Client
func (m *MockClient) Complete(ctx context.Context, c Completion) (string, error) {
	if m.latency > 0 {
		select {
		case <-time.After(m.latency):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if !c.JSON {
		return mockReport, nil
	}

	m.mu.Lock()
	value := 80 + 20*m.rng.Float64()
	m.mu.Unlock()

	out, err := json.Marshal(map[string]any{
		"Response":    math.Round(value*100) / 100,
		"Observation": "[MOCK] Observation for " + c.Subject + ". Result indicates stable properties.",
	})
	if err != nil {
		return "", err
	}
	return string(out), nil
}

const mockReport = `<h3>종합 요약 (Executive Summary)</h3>
<p>본 실험(DOE)은 설정된 주요 변수들이 반응 변수에 미치는 영향을 분석하기 위해 수행되었습니다. 초기 분석 결과 공정 변수와 결과값 사이에 유의미한 상관관계가 관찰되었으며, 현재 공정은 안정적인 수준으로 평가됩니다.</p>
<h3>데이터 통계 분석 (Statistical Analysis)</h3>
<ul>
<li><strong>평균(Mean):</strong> 목표치에 근접하게 형성되어 있습니다.</li>
<li><strong>변동성(Variation):</strong> 표준편차가 허용 범위 내에 있어 공정 산포가 잘 제어되고 있습니다.</li>
<li><strong>이상치(Outliers):</strong> 3-Sigma 수준을 벗어나는 특이점은 발견되지 않았습니다.</li>
</ul>
<h3>주요 발견 및 상관관계 (Key Findings)</h3>
<p>주요 인자의 변화에 따라 반응 변수가 선형적인 증가 추세를 보입니다. 특정 조건 구간의 비선형 거동 가능성에 대해서는 추가 확인 실험을 권장합니다.</p>
<h3>개선 권고 사항 (Recommendations)</h3>
<p>현재 공정 조건을 유지하되 변동성을 줄이기 위한 미세 조정을 제안합니다.</p>`

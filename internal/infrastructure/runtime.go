package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// RuntimeStats is a snapshot of process resource usage
type RuntimeStats struct {
	Goroutines    int     `json:"goroutines"`
	HeapAllocMB   float64 `json:"heap_alloc_mb"`
	SysMB         float64 `json:"sys_mb"`
	NumGC         uint32  `json:"num_gc"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// String formats the stats for logging
func (s RuntimeStats) String() string {
	return fmt.Sprintf("goroutines=%d heap=%.1fMB sys=%.1fMB gc=%d uptime=%.0fs",
		s.Goroutines, s.HeapAllocMB, s.SysMB, s.NumGC, s.UptimeSeconds)
}

// RuntimeMetrics exposes process gauges through the meter
type RuntimeMetrics struct {
	started time.Time
	logger  *slog.Logger
}

// NewRuntimeMetrics registers the observable runtime gauges on meter.
// A nil meter skips registration and only Collect is available.
func NewRuntimeMetrics(meter metric.Meter, logger *slog.Logger) (*RuntimeMetrics, error) {
	if logger == nil {
		logger = GetLogger()
	}
	rm := &RuntimeMetrics{started: time.Now(), logger: logger}
	if meter == nil {
		return rm, nil
	}

	goroutines, err := meter.Int64ObservableGauge("runtime_goroutines",
		metric.WithDescription("Number of live goroutines"))
	if err != nil {
		return nil, err
	}
	heap, err := meter.Int64ObservableGauge("runtime_heap_alloc_bytes",
		metric.WithDescription("Bytes of allocated heap objects"), metric.WithUnit("By"))
	if err != nil {
		return nil, err
	}
	uptime, err := meter.Float64ObservableGauge("system_uptime_seconds",
		metric.WithDescription("Process uptime in seconds"), metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		o.ObserveInt64(goroutines, int64(runtime.NumGoroutine()))
		o.ObserveInt64(heap, int64(ms.HeapAlloc))
		o.ObserveFloat64(uptime, time.Since(rm.started).Seconds())
		return nil
	}, goroutines, heap, uptime)
	if err != nil {
		return nil, err
	}
	return rm, nil
}

// Collect returns the current runtime snapshot
func (rm *RuntimeMetrics) Collect() RuntimeStats {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return RuntimeStats{
		Goroutines:    runtime.NumGoroutine(),
		HeapAllocMB:   float64(ms.HeapAlloc) / (1 << 20),
		SysMB:         float64(ms.Sys) / (1 << 20),
		NumGC:         ms.NumGC,
		UptimeSeconds: time.Since(rm.started).Seconds(),
	}
}

// Run logs a snapshot every interval until ctx is done
func (rm *RuntimeMetrics) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rm.logger.DebugContext(ctx, "runtime stats", "stats", rm.Collect().String())
		}
	}
}

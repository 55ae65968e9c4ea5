// Package monitoring records per-step timings of pipeline runs.
package monitoring

import (
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"
)

// StepMetrics represents the measurements taken for one pipeline step.
type StepMetrics struct {
	Step          string        `json:"step"`
	Duration      time.Duration `json:"duration"`
	RowsProcessed int64         `json:"rows_processed"`
	MemoryUsed    int64         `json:"memory_used"`
	Failed        bool          `json:"failed"`
}

// MetricsCollector collects and stores step metrics.
type MetricsCollector struct {
	mu      sync.RWMutex
	metrics []StepMetrics
	enabled bool
}

// NewMetricsCollector creates a new metrics collector.
func NewMetricsCollector(enabled bool) *MetricsCollector {
	return &MetricsCollector{
		metrics: make([]StepMetrics, 0),
		enabled: enabled,
	}
}

// IsEnabled returns whether metrics collection is enabled.
func (mc *MetricsCollector) IsEnabled() bool {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return mc.enabled
}

// RecordStep executes fn and records its duration, the row count it reports
// and the approximate heap growth. fn runs even when collection is disabled.
func (mc *MetricsCollector) RecordStep(step string, fn func() (int, error)) error {
	if !mc.IsEnabled() {
		_, err := fn()
		return err
	}

	var memBefore runtime.MemStats
	runtime.ReadMemStats(&memBefore)

	start := time.Now()
	rows, err := fn()
	duration := time.Since(start)

	var memAfter runtime.MemStats
	runtime.ReadMemStats(&memAfter)

	memoryUsed := int64(memAfter.TotalAlloc - memBefore.TotalAlloc) //nolint:gosec // TotalAlloc is monotonic

	mc.mu.Lock()
	mc.metrics = append(mc.metrics, StepMetrics{
		Step:          step,
		Duration:      duration,
		RowsProcessed: int64(rows),
		MemoryUsed:    memoryUsed,
		Failed:        err != nil,
	})
	mc.mu.Unlock()

	return err
}

// GetMetrics returns a copy of all collected metrics.
func (mc *MetricsCollector) GetMetrics() []StepMetrics {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	result := make([]StepMetrics, len(mc.metrics))
	copy(result, mc.metrics)
	return result
}

// Timings returns the duration of each recorded step in the order they ran.
func (mc *MetricsCollector) Timings() []StepTiming {
	metrics := mc.GetMetrics()
	timings := make([]StepTiming, len(metrics))
	for i, m := range metrics {
		timings[i] = StepTiming{Step: m.Step, Duration: m.Duration}
	}
	return timings
}

// StepTiming pairs a step name with how long it took.
type StepTiming struct {
	Step     string
	Duration time.Duration
}

// GetSummary returns a summary of collected metrics.
func (mc *MetricsCollector) GetSummary() MetricsSummary {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	if len(mc.metrics) == 0 {
		return MetricsSummary{}
	}

	var totalDuration time.Duration
	var totalMemory int64
	var failures int
	for _, metric := range mc.metrics {
		totalDuration += metric.Duration
		totalMemory += metric.MemoryUsed
		if metric.Failed {
			failures++
		}
	}

	return MetricsSummary{
		TotalSteps:      len(mc.metrics),
		TotalDuration:   totalDuration,
		TotalMemory:     totalMemory,
		Failures:        failures,
		AverageDuration: totalDuration / time.Duration(len(mc.metrics)),
	}
}

// MetricsSummary provides aggregate statistics for collected metrics.
type MetricsSummary struct {
	TotalSteps      int           `json:"total_steps"`
	TotalDuration   time.Duration `json:"total_duration"`
	TotalMemory     int64         `json:"total_memory"`
	Failures        int           `json:"failures"`
	AverageDuration time.Duration `json:"average_duration"`
}

// String renders the summary on one line
func (s MetricsSummary) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d steps in %s", s.TotalSteps, s.TotalDuration))
	if s.Failures > 0 {
		sb.WriteString(fmt.Sprintf(" (%d failed)", s.Failures))
	}
	return sb.String()
}

package monitoring_test

import (
	"errors"
	"testing"
	"time"

	"github.com/paveg/tabprep/internal/monitoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsCollector(t *testing.T) {
	t.Run("create disabled collector", func(t *testing.T) {
		collector := monitoring.NewMetricsCollector(false)
		assert.NotNil(t, collector)
		assert.False(t, collector.IsEnabled())
		assert.Empty(t, collector.GetMetrics())
	})

	t.Run("record step with disabled collector", func(t *testing.T) {
		collector := monitoring.NewMetricsCollector(false)

		callCount := 0
		err := collector.RecordStep("impute", func() (int, error) {
			callCount++
			return 10, nil
		})

		require.NoError(t, err)
		assert.Equal(t, 1, callCount)
		assert.Empty(t, collector.GetMetrics())
	})

	t.Run("record step with enabled collector", func(t *testing.T) {
		collector := monitoring.NewMetricsCollector(true)

		err := collector.RecordStep("one_hot", func() (int, error) {
			time.Sleep(5 * time.Millisecond)
			return 10, nil
		})
		require.NoError(t, err)

		metrics := collector.GetMetrics()
		require.Len(t, metrics, 1)
		assert.Equal(t, "one_hot", metrics[0].Step)
		assert.Equal(t, int64(10), metrics[0].RowsProcessed)
		assert.GreaterOrEqual(t, metrics[0].Duration, 5*time.Millisecond)
		assert.GreaterOrEqual(t, metrics[0].MemoryUsed, int64(0))
		assert.False(t, metrics[0].Failed)
	})

	t.Run("record failing step", func(t *testing.T) {
		collector := monitoring.NewMetricsCollector(true)
		boom := errors.New("boom")

		err := collector.RecordStep("ratio", func() (int, error) {
			return 0, boom
		})

		require.ErrorIs(t, err, boom)
		metrics := collector.GetMetrics()
		require.Len(t, metrics, 1)
		assert.True(t, metrics[0].Failed)
	})

}

func TestMetricsCollector_Timings(t *testing.T) {
	collector := monitoring.NewMetricsCollector(true)
	for _, step := range []string{"impute", "one_hot", "split"} {
		require.NoError(t, collector.RecordStep(step, func() (int, error) { return 0, nil }))
	}

	timings := collector.Timings()
	require.Len(t, timings, 3)
	assert.Equal(t, "impute", timings[0].Step)
	assert.Equal(t, "one_hot", timings[1].Step)
	assert.Equal(t, "split", timings[2].Step)
}

func TestMetricsCollector_Summary(t *testing.T) {
	collector := monitoring.NewMetricsCollector(true)
	assert.Equal(t, monitoring.MetricsSummary{}, collector.GetSummary())

	require.NoError(t, collector.RecordStep("impute", func() (int, error) { return 10, nil }))
	_ = collector.RecordStep("ratio", func() (int, error) { return 0, errors.New("fail") })

	summary := collector.GetSummary()
	assert.Equal(t, 2, summary.TotalSteps)
	assert.Equal(t, 1, summary.Failures)
	assert.Equal(t, summary.TotalDuration/2, summary.AverageDuration)
	assert.Contains(t, summary.String(), "2 steps in ")
	assert.Contains(t, summary.String(), "(1 failed)")
}

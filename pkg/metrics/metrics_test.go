package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func Test_InvariantViolation(t *testing.T) {
	t.Run("release mode logs and counts", func(t *testing.T) {
		core, logs := observer.New(zap.ErrorLevel)
		m := NewSignerMetricsForTesting(zap.New(core), WithFailFast(false))

		require.NotPanics(t, func() {
			m.InvariantViolation("sidecar returned signature for another address")
		})
		m.InvariantViolation("again")

		assert.Equal(t, float64(2), testutil.ToFloat64(m.NumSignerInvariantViolations))
		require.Equal(t, 2, logs.Len())
		assert.Equal(t, "Invariant violation: sidecar returned signature for another address", logs.All()[0].Message)
	})

	t.Run("debug mode panics", func(t *testing.T) {
		m := NewSignerMetricsForTesting(zap.NewNop(), WithFailFast(true))

		assert.PanicsWithValue(t, "Invariant violation: boom", func() {
			m.InvariantViolation("boom")
		})
	})
}

func Test_ObserveSign(t *testing.T) {
	m := NewSignerMetricsForTesting(nil)

	m.ObserveSign("local", time.Now(), "")
	m.ObserveSign("local", time.Now(), "")
	m.ObserveSign("local", time.Now(), "bad_request")

	assert.Equal(t, float64(3), testutil.ToFloat64(m.NumSignRequests.WithLabelValues("local")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.NumSuccessfulSignRequests.WithLabelValues("local")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.NumFailedSignRequests.WithLabelValues("local", "bad_request")))
}

func Test_DefaultSignerMetrics(t *testing.T) {
	var first, second *SignerMetrics
	require.NotPanics(t, func() {
		first = DefaultSignerMetrics(zap.NewNop())
		second = DefaultSignerMetrics(zap.NewNop())
	})
	assert.Same(t, first, second)
}

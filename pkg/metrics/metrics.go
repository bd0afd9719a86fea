package metrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// SignerMetrics holds the counters for the signing subsystem.
type SignerMetrics struct {
	// sidecar server
	NumSignRequests           *prometheus.CounterVec
	NumSuccessfulSignRequests *prometheus.CounterVec
	NumFailedSignRequests     *prometheus.CounterVec
	SignDuration              *prometheus.HistogramVec

	NumSignerInvariantViolations prometheus.Counter

	logger   *zap.Logger
	failFast bool
}

type Option func(*SignerMetrics)

// WithFailFast overrides the build default for invariant violations.
func WithFailFast(failFast bool) Option {
	return func(m *SignerMetrics) {
		m.failFast = failFast
	}
}

// NewSignerMetrics registers the signer metrics with registry, or the default
// registerer when registry is nil.
func NewSignerMetrics(registry prometheus.Registerer, logger *zap.Logger, opts ...Option) *SignerMetrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	factory := promauto.With(registry)

	m := &SignerMetrics{
		NumSignRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "num_sign_requests",
			Help: "Total number of sign requests received",
		}, []string{"signer"}),
		NumSuccessfulSignRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "num_successful_sign_requests",
			Help: "Total number of sign requests that produced a signature",
		}, []string{"signer"}),
		NumFailedSignRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "num_failed_sign_requests",
			Help: "Total number of sign requests that failed",
		}, []string{"signer", "reason"}),
		SignDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sign_duration_seconds",
			Help:    "Time spent producing a signature",
			Buckets: prometheus.DefBuckets,
		}, []string{"signer"}),
		NumSignerInvariantViolations: factory.NewCounter(prometheus.CounterOpts{
			Name: "num_signer_invariant_violations",
			Help: "Total number of invariant violations in the signer. This should really never trigger",
		}),
		logger:   logger,
		failFast: debugAssertions,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

var (
	defaultOnce    sync.Once
	defaultMetrics *SignerMetrics
)

// DefaultSignerMetrics returns the process wide instance registered on the
// default registerer. Only the first caller's logger is used.
func DefaultSignerMetrics(logger *zap.Logger) *SignerMetrics {
	defaultOnce.Do(func() {
		defaultMetrics = NewSignerMetrics(prometheus.DefaultRegisterer, logger)
	})
	return defaultMetrics
}

// NewSignerMetricsForTesting uses a private registry so tests can create as
// many instances as they like.
func NewSignerMetricsForTesting(logger *zap.Logger, opts ...Option) *SignerMetrics {
	return NewSignerMetrics(prometheus.NewRegistry(), logger, opts...)
}

// InvariantViolation reports a logic error. Debug builds panic so the bug
// surfaces immediately; release builds log it and keep serving.
func (m *SignerMetrics) InvariantViolation(msg string) {
	if m.failFast {
		panic(fmt.Sprintf("Invariant violation: %s", msg))
	}
	m.logger.Error(fmt.Sprintf("Invariant violation: %s", msg))
	m.NumSignerInvariantViolations.Inc()
}

// ObserveSign records the outcome of one sign request.
func (m *SignerMetrics) ObserveSign(signer string, started time.Time, failureReason string) {
	m.NumSignRequests.WithLabelValues(signer).Inc()
	m.SignDuration.WithLabelValues(signer).Observe(time.Since(started).Seconds())
	if failureReason != "" {
		m.NumFailedSignRequests.WithLabelValues(signer, failureReason).Inc()
		return
	}
	m.NumSuccessfulSignRequests.WithLabelValues(signer).Inc()
}

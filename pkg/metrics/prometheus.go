package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder records domain metrics for the risk service.
type Recorder struct {
	analyzeRequests  *prometheus.CounterVec
	upstreamErrors   *prometheus.CounterVec
	narratorFallback prometheus.Counter
	cacheHits        *prometheus.CounterVec
	lockdowns        prometheus.Counter
	opDuration       *prometheus.HistogramVec
}

// NewRecorder creates a Recorder registered on the default registry.
func NewRecorder() *Recorder {
	return &Recorder{
		analyzeRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auri_risk_analyze_requests_total",
				Help: "Total risk analyze requests by outcome",
			},
			[]string{"outcome"},
		),
		upstreamErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auri_upstream_errors_total",
				Help: "Upstream fetch errors by source",
			},
			[]string{"source"},
		),
		narratorFallback: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "auri_narrator_fallback_total",
				Help: "Narrator calls that degraded to the local decision",
			},
		),
		cacheHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auri_cache_requests_total",
				Help: "Result cache lookups by outcome",
			},
			[]string{"outcome"},
		),
		lockdowns: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "auri_lockdowns_total",
				Help: "Analyze responses that resolved to the Lockdown state",
			},
		),
		opDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "auri_operation_duration_seconds",
				Help:    "Duration of internal operations",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"operation"},
		),
	}
}

// AnalyzeRequest counts one analyze request with the given outcome label.
func (r *Recorder) AnalyzeRequest(outcome string) {
	if r == nil {
		return
	}
	r.analyzeRequests.WithLabelValues(outcome).Inc()
}

// UpstreamError counts an upstream fetch failure.
func (r *Recorder) UpstreamError(source string) {
	if r == nil {
		return
	}
	r.upstreamErrors.WithLabelValues(source).Inc()
}

// NarratorFallback counts one degrade to the local decision.
func (r *Recorder) NarratorFallback() {
	if r == nil {
		return
	}
	r.narratorFallback.Inc()
}

// CacheLookup counts a result cache lookup as "hit" or "miss".
func (r *Recorder) CacheLookup(outcome string) {
	if r == nil {
		return
	}
	r.cacheHits.WithLabelValues(outcome).Inc()
}

// Lockdown counts one Lockdown verdict.
func (r *Recorder) Lockdown() {
	if r == nil {
		return
	}
	r.lockdowns.Inc()
}

// ObserveDuration records the duration of a named operation.
func (r *Recorder) ObserveDuration(operation string, d time.Duration) {
	if r == nil {
		return
	}
	r.opDuration.WithLabelValues(operation).Observe(d.Seconds())
}

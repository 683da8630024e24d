package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "paddy"

// Metrics holds the analysis pipeline collectors
type Metrics struct {
	Analyses       *prometheus.CounterVec
	ModelInference *prometheus.HistogramVec
	Attribution    *prometheus.HistogramVec
	ModelFailures  *prometheus.CounterVec
	CacheHits      prometheus.Counter
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Completed analyses by verdict.",
		}, []string{"verdict"}),
		ModelInference: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "model_inference_seconds",
			Help:      "Per-model preprocessing and forward pass latency.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}, []string{"model"}),
		Attribution: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "attribution_seconds",
			Help:      "Per-model saliency computation latency.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"model"}),
		ModelFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_failures_total",
			Help:      "Dropped or degraded model results by stage.",
		}, []string{"model", "stage"}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Analyses served from the result cache.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.Analyses, m.ModelInference, m.Attribution, m.ModelFailures, m.CacheHits)
	}
	return m
}

// ObserveAnalysis counts one finished analysis
func (m *Metrics) ObserveAnalysis(verdict string) {
	if m == nil {
		return
	}
	m.Analyses.WithLabelValues(verdict).Inc()
}

// ObserveInference records one model's inference latency
func (m *Metrics) ObserveInference(model string, d time.Duration) {
	if m == nil {
		return
	}
	m.ModelInference.WithLabelValues(model).Observe(d.Seconds())
}

// ObserveAttribution records one model's attribution latency
func (m *Metrics) ObserveAttribution(model string, d time.Duration) {
	if m == nil {
		return
	}
	m.Attribution.WithLabelValues(model).Observe(d.Seconds())
}

// ObserveFailure counts one model failure
func (m *Metrics) ObserveFailure(model, stage string) {
	if m == nil {
		return
	}
	m.ModelFailures.WithLabelValues(model, stage).Inc()
}

// ObserveCacheHit counts one cached response
func (m *Metrics) ObserveCacheHit() {
	if m == nil {
		return
	}
	m.CacheHits.Inc()
}

package metrics

import (
	"net/http"
	"time"

	"github.com/bnema/family-draft-cli/internal/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fdraft"

// Recorder exports synchronizer and dispatcher outcomes on its own registry,
// so nothing else in the process leaks into the scrape.
type Recorder struct {
	registry *prometheus.Registry

	fetches          *prometheus.CounterVec
	submits          *prometheus.CounterVec
	fetchDuration    prometheus.Histogram
	submitDuration   *prometheus.HistogramVec
	snapshotSequence prometheus.Gauge
}

var _ ports.Metrics = (*Recorder)(nil)

func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()
	auto := promauto.With(registry)

	return &Recorder{
		registry: registry,
		fetches: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "fetch_total",
			Help:      "State fetches by outcome.",
		}, []string{"outcome"}),
		submits: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "action",
			Name:      "submit_total",
			Help:      "Submitted actions by kind and outcome.",
		}, []string{"action", "outcome"}),
		fetchDuration: auto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "fetch_duration_seconds",
			Help:      "Latency of state fetches.",
			Buckets:   prometheus.DefBuckets,
		}),
		submitDuration: auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "action",
			Name:      "submit_duration_seconds",
			Help:      "Latency of submitted actions.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"action"}),
		snapshotSequence: auto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_sequence",
			Help:      "Sequence number of the snapshot currently shown.",
		}),
	}
}

func (r *Recorder) ObserveFetch(outcome string, elapsed time.Duration) {
	r.fetches.WithLabelValues(outcome).Inc()
	if outcome != ports.OutcomeConfig {
		r.fetchDuration.Observe(elapsed.Seconds())
	}
}

func (r *Recorder) ObserveSubmit(action string, outcome string, elapsed time.Duration) {
	r.submits.WithLabelValues(action, outcome).Inc()
	if outcome != ports.OutcomeConfig {
		r.submitDuration.WithLabelValues(action).Observe(elapsed.Seconds())
	}
}

func (r *Recorder) SetSequence(seq uint64) {
	r.snapshotSequence.Set(float64(seq))
}

func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// NewServer exposes the recorder on addr at /metrics.
func NewServer(addr string, r *Recorder) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

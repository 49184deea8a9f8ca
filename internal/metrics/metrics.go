// Package metrics exports import and media counters to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JonMunkholm/storyimport/internal/core"
)

const namespace = "storyimport"

// Recorder implements core.Recorder on a Prometheus registry.
type Recorder struct {
	rows         *prometheus.CounterVec
	runs         *prometheus.CounterVec
	runDuration  prometheus.Histogram
	mediaUpdates *prometheus.CounterVec
	gatherer     prometheus.Gatherer
}

var _ core.Recorder = (*Recorder)(nil)

// New registers the collectors on reg. Pass prometheus.NewRegistry() in
// tests to avoid clashing with the default registry.
func New(reg *prometheus.Registry) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		rows: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_total",
			Help:      "CSV rows processed, by outcome.",
		}, []string{"outcome"}),
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Import invocations, by result.",
		}, []string{"result"}),
		runDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of completed imports.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		}),
		mediaUpdates: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "media_updates_total",
			Help:      "Media references offered to a story, by field and whether they were applied.",
		}, []string{"field", "result"}),
		gatherer: reg,
	}
}

// NewDefault registers on a fresh registry that also carries the Go and
// process collectors.
func NewDefault() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return New(reg)
}

func (r *Recorder) RowProcessed(kind core.OutcomeKind) {
	r.rows.WithLabelValues(string(kind)).Inc()
}

// ImportFinished counts the run. Busy rejections are not timed.
func (r *Recorder) ImportFinished(result string, d time.Duration) {
	r.runs.WithLabelValues(result).Inc()
	if result != core.ImportResultBusy {
		r.runDuration.Observe(d.Seconds())
	}
}

func (r *Recorder) MediaUpdated(field string, applied bool) {
	result := "ignored"
	if applied {
		result = "applied"
	}
	r.mediaUpdates.WithLabelValues(field, result).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}

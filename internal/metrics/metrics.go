// Package metrics records pipeline and client activity as Prometheus
// metrics on a private registry.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/cognicore/protonlens/pkg/protonlens"
)

// Recorder implements protonlens.Observer and counts API requests.
type Recorder struct {
	registry *prometheus.Registry

	NotesAnalyzed   prometheus.Counter
	ReportsSkipped  *prometheus.CounterVec
	BatchDuration   prometheus.Histogram
	TableEntries    *prometheus.GaugeVec
	APIRequests     *prometheus.CounterVec
	APIRequestDelay prometheus.Histogram
}

var _ protonlens.Observer = (*Recorder)(nil)

// New creates a recorder with all collectors registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		NotesAnalyzed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "protonlens_notes_analyzed_total",
			Help: "Reports that produced an analyzed note",
		}),
		ReportsSkipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "protonlens_reports_skipped_total",
				Help: "Reports skipped, by reason",
			},
			[]string{"reason"},
		),
		BatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "protonlens_batch_duration_seconds",
			Help:    "Wall time of one analysis batch",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
		}),
		TableEntries: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "protonlens_ngram_entries",
				Help: "Distinct n-grams in the last batch, by table",
			},
			[]string{"table"},
		),
		APIRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "protonlens_api_requests_total",
				Help: "ProtonDB API requests, by endpoint and status",
			},
			[]string{"endpoint", "status"},
		),
		APIRequestDelay: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "protonlens_api_request_duration_seconds",
			Help:    "ProtonDB API request latency",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}),
	}

	r.registry.MustRegister(
		r.NotesAnalyzed,
		r.ReportsSkipped,
		r.BatchDuration,
		r.TableEntries,
		r.APIRequests,
		r.APIRequestDelay,
	)
	return r
}

// Registry exposes the private registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

func (r *Recorder) NoteAnalyzed() { r.NotesAnalyzed.Inc() }

func (r *Recorder) ReportSkipped(reason string) {
	r.ReportsSkipped.WithLabelValues(reason).Inc()
}

func (r *Recorder) BatchFinished(elapsed time.Duration, res *protonlens.Result) {
	r.BatchDuration.Observe(elapsed.Seconds())
	r.TableEntries.WithLabelValues("unigram").Set(float64(len(res.Unigrams)))
	r.TableEntries.WithLabelValues("bigram").Set(float64(len(res.Bigrams)))
	r.TableEntries.WithLabelValues("trigram").Set(float64(len(res.Trigrams)))
}

// ObserveRequest records one API call. status is the HTTP status code as
// text, or "error" for transport failures.
func (r *Recorder) ObserveRequest(endpoint, status string, elapsed time.Duration) {
	r.APIRequests.WithLabelValues(endpoint, status).Inc()
	r.APIRequestDelay.Observe(elapsed.Seconds())
}

// WriteTextfile writes all metrics in the node_exporter textfile format.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}

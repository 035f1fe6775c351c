package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the lead module.
type Metrics struct {
	Upserts        *prometheus.CounterVec
	UpsertDuration prometheus.Histogram
	Deleted        prometheus.Counter
	Scored         prometheus.Counter
}

// New registers the lead metrics with the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers the lead metrics with reg. Tests pass a fresh registry.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Upserts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "leadhub_lead_upserts_total",
			Help: "Lead upserts by outcome (inserted or merged)",
		}, []string{"action"}),
		UpsertDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "leadhub_lead_upsert_duration_seconds",
			Help:    "Duration of a single lead upsert including identifier lookups",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),
		Deleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "leadhub_leads_deleted_total",
			Help: "Total number of leads deleted through the API",
		}),
		Scored: factory.NewCounter(prometheus.CounterOpts{
			Name: "leadhub_leads_scored_total",
			Help: "Total number of lead score computations",
		}),
	}
}

// IncrementUpsert records one upsert outcome.
func (m *Metrics) IncrementUpsert(action string) {
	m.Upserts.WithLabelValues(action).Inc()
}

// ObserveUpsert records the duration of an upsert started at start.
func (m *Metrics) ObserveUpsert(start time.Time) {
	m.UpsertDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncrementDeleted() {
	m.Deleted.Inc()
}

func (m *Metrics) IncrementScored() {
	m.Scored.Inc()
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for dedup runs and product consolidation.
type Metrics struct {
	Runs            *prometheus.CounterVec
	RunDuration     *prometheus.HistogramVec
	LeadsMerged     prometheus.Counter
	ProductsRemoved prometheus.Counter
	LockContention  prometheus.Counter
}

// New registers the dedup metrics with the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers the dedup metrics with reg.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Runs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "leadhub_dedup_runs_total",
			Help: "Dedup runs by scope (all, product, canonical, consolidation) and outcome",
		}, []string{"scope", "outcome"}),
		RunDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "leadhub_dedup_run_duration_seconds",
			Help:    "Duration of a dedup run by scope",
			Buckets: prometheus.DefBuckets,
		}, []string{"scope"}),
		LeadsMerged: factory.NewCounter(prometheus.CounterOpts{
			Name: "leadhub_dedup_leads_merged_total",
			Help: "Leads folded into a survivor and deleted",
		}),
		ProductsRemoved: factory.NewCounter(prometheus.CounterOpts{
			Name: "leadhub_dedup_products_removed_total",
			Help: "Duplicate products removed by consolidation",
		}),
		LockContention: factory.NewCounter(prometheus.CounterOpts{
			Name: "leadhub_dedup_lock_contention_total",
			Help: "Dedup requests rejected because another run held the lock",
		}),
	}
}

// ObserveRun records one finished run.
func (m *Metrics) ObserveRun(scope string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.Runs.WithLabelValues(scope, outcome).Inc()
	m.RunDuration.WithLabelValues(scope).Observe(time.Since(start).Seconds())
}

func (m *Metrics) AddMerged(n int) {
	m.LeadsMerged.Add(float64(n))
}

func (m *Metrics) AddProductsRemoved(n int) {
	m.ProductsRemoved.Add(float64(n))
}

func (m *Metrics) IncrementLockContention() {
	m.LockContention.Inc()
}

package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "riskscore"

// Metrics holds the pipeline and serving collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	joinMismatches    prometheus.Counter
	featureBuilds     prometheus.Counter
	featureRows       prometheus.Gauge
	trainingRuns      prometheus.Counter
	predictions       prometheus.Counter
	excludedRows      *prometheus.CounterVec
	predictionLatency prometheus.Histogram
}

// NewRegistry holds the application collectors only. Go runtime, process,
// and gorm pool metrics live on the default registry and are merged at
// scrape time.
func NewRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		joinMismatches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "join_mismatch_invoices_total",
			Help:      "Invoices dropped because their customer is not in the roster.",
		}),
		featureBuilds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "feature_builds_total",
			Help:      "Completed feature table builds.",
		}),
		featureRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "feature_rows",
			Help:      "Customers in the most recent feature table build.",
		}),
		trainingRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "training_runs_total",
			Help:      "Completed model training runs.",
		}),
		predictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "predictions_total",
			Help:      "Customers scored by the risk model.",
		}),
		excludedRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "prediction_excluded_rows_total",
			Help:      "Customers excluded from prediction, by reason.",
		}, []string{"reason"}),
		predictionLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "prediction_batch_seconds",
			Help:      "Latency of a prediction batch.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.joinMismatches,
			m.featureBuilds,
			m.featureRows,
			m.trainingRuns,
			m.predictions,
			m.excludedRows,
			m.predictionLatency,
		)
	}
	return m
}

func (m *Metrics) ObserveFeatureBuild(rows, droppedInvoices int) {
	if m == nil {
		return
	}
	m.featureBuilds.Inc()
	m.featureRows.Set(float64(rows))
	m.joinMismatches.Add(float64(droppedInvoices))
}

func (m *Metrics) ObserveTrainingRun() {
	if m == nil {
		return
	}
	m.trainingRuns.Inc()
}

func (m *Metrics) ObservePredictionBatch(scored int, excluded map[string]int, seconds float64) {
	if m == nil {
		return
	}
	m.predictions.Add(float64(scored))
	for reason, n := range excluded {
		m.excludedRows.WithLabelValues(reason).Add(float64(n))
	}
	m.predictionLatency.Observe(seconds)
}

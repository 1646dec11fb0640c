package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Case book
	CasesStored  prometheus.Gauge
	CasesCreated *prometheus.CounterVec
	CasesDeleted prometheus.Counter

	// Spreadsheet import
	ImportRows     *prometheus.CounterVec
	ImportFailures prometheus.Counter
	ImportLatency  prometheus.Histogram

	// Reports
	ReportsRendered *prometheus.CounterVec

	// Broker
	EventsPublished *prometheus.CounterVec
	EventsReceived  *prometheus.CounterVec
}

// New creates the application metrics and registers them on reg. Tests pass
// a fresh prometheus.NewRegistry().
func New(reg prometheus.Registerer, namespace string) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		CasesStored: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cases_stored",
			Help:      "Current number of examination cases held in memory",
		}),
		CasesCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cases_created_total",
			Help:      "Total number of examination cases added",
		}, []string{"hazard_code", "source"}),
		CasesDeleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cases_deleted_total",
			Help:      "Total number of examination cases removed",
		}),

		ImportRows: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_rows_total",
			Help:      "Spreadsheet rows processed by the importer",
		}, []string{"result"}),
		ImportFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_failures_total",
			Help:      "Uploaded workbooks that could not be read",
		}),
		ImportLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "import_duration_seconds",
			Help:      "Time spent importing one workbook",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}),

		ReportsRendered: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_rendered_total",
			Help:      "Printable reports rendered, by output format",
		}, []string{"format"}),

		EventsPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Case events handed to the message broker",
		}, []string{"event_type", "status"}),
		EventsReceived: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_received_total",
			Help:      "Case events read back from the message broker by the worker",
		}, []string{"event_type", "status"}),
	}
}

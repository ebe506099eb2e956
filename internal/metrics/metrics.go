// Package metrics exposes Prometheus counters for collection and update
// cycles.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every venture-watch metric plus Go runtime collectors.
var Registry = prometheus.NewRegistry()

var (
	// SourceRecords counts candidate records returned per source.
	SourceRecords = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "venture_watch",
		Name:      "source_records_total",
		Help:      "Candidate records returned by each source.",
	}, []string{"source"})

	// SourceErrors counts failed source collections.
	SourceErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "venture_watch",
		Name:      "source_errors_total",
		Help:      "Source collections that returned an error.",
	}, []string{"source"})

	// SourceDuration observes how long each source takes to collect.
	SourceDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "venture_watch",
		Name:      "source_duration_seconds",
		Help:      "Time spent collecting from each source.",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
	}, []string{"source"})

	// EnrichedRecords counts enrichment attempts by outcome: ok, failed.
	EnrichedRecords = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "venture_watch",
		Name:      "enriched_records_total",
		Help:      "Records sent for LLM enrichment, by outcome.",
	}, []string{"outcome"})

	// ReconciledRecords counts update outcomes by kind: added, updated, dropped.
	ReconciledRecords = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "venture_watch",
		Name:      "reconciled_records_total",
		Help:      "Records folded into the collection, by outcome.",
	}, []string{"outcome"})

	// PersistFailures counts collection writes that failed.
	PersistFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "venture_watch",
		Name:      "persist_failures_total",
		Help:      "Collection writes that failed.",
	})

	// CollectionSize is the record count after the last successful write.
	CollectionSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "venture_watch",
		Name:      "collection_records",
		Help:      "Records in the collection after the last write.",
	})

	// Runs counts pipeline runs by final status.
	Runs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "venture_watch",
		Name:      "runs_total",
		Help:      "Pipeline runs by final status.",
	}, []string{"status"})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		SourceRecords,
		SourceErrors,
		SourceDuration,
		EnrichedRecords,
		ReconciledRecords,
		PersistFailures,
		CollectionSize,
		Runs,
	)
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}

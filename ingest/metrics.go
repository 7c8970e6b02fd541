package ingest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	documentsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "siegeingest_documents_processed_total",
		Help: "Documents successfully inferred and flattened.",
	})

	documentErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "siegeingest_document_errors_total",
		Help: "Documents skipped because reading, decoding or inference failed.",
	})

	mergeOperations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "siegeingest_merge_operations_total",
		Help: "Schema merge steps performed during consolidation.",
	})

	recordsFlattened = promauto.NewCounter(prometheus.CounterOpts{
		Name: "siegeingest_records_flattened_total",
		Help: "Flat rows handed to the table sink.",
	})

	validationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "siegeingest_validation_failures_total",
		Help: "Documents that did not validate against the consolidated schema.",
	})

	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "siegeingest_run_duration_seconds",
		Help:    "Wall time of complete ingestion runs.",
		Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
	})
)

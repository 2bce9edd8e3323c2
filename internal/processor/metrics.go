package processor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	invocationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fhir_ingest_invocations_total",
		Help: "The total number of batch invocations handled",
	})
	filesProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fhir_ingest_files_processed_total",
		Help: "The total number of input files transformed and written",
	})
	filesFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fhir_ingest_files_failed_total",
		Help: "The total number of input files that failed, by fault kind",
	}, []string{"kind"})
	rowsWritten = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fhir_ingest_rows_written_total",
		Help: "The total number of flattened rows written to the analytics bucket",
	})
	duplicateSkips = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fhir_ingest_duplicate_skips_total",
		Help: "The total number of writes skipped because the target already existed",
	})
)

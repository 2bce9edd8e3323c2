// Package processor drives one batch invocation: for every trigger record it
// runs read, flatten, partition, path derivation and the idempotent write,
// isolating failures per record and aggregating the outcomes into the batch
// result.
package processor

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/fhir-analytics/ingest-backend/internal/config"
	"github.com/fhir-analytics/ingest-backend/internal/faults"
	"github.com/fhir-analytics/ingest-backend/internal/flatten"
	"github.com/fhir-analytics/ingest-backend/internal/logging"
	"github.com/fhir-analytics/ingest-backend/internal/metrics"
	"github.com/fhir-analytics/ingest-backend/internal/partition"
	"github.com/fhir-analytics/ingest-backend/internal/payload"
	"github.com/fhir-analytics/ingest-backend/internal/storage"
	"github.com/fhir-analytics/ingest-backend/internal/types"
	"github.com/fhir-analytics/ingest-backend/internal/writer"
)

type Orchestrator struct {
	cfg    *config.Config
	reader *payload.Reader
	writer *writer.ParquetWriter
	sink   metrics.Sink
}

func New(store storage.ObjectStore, sink metrics.Sink, cfg *config.Config) *Orchestrator {
	return &Orchestrator{
		cfg:    cfg,
		reader: payload.NewReader(store),
		writer: writer.New(store),
		sink:   sink,
	}
}

// NewFromConfig wires the production collaborators: S3 store, and a
// CloudWatch sink when metrics are enabled.
func NewFromConfig() (*Orchestrator, error) {
	cfg := config.GetConfig()
	store, err := storage.NewS3Store()
	if err != nil {
		return nil, err
	}
	var sink metrics.Sink = metrics.Noop{}
	if cfg.MetricsEnabled {
		cw, err := metrics.NewCloudWatchSink()
		if err != nil {
			return nil, err
		}
		sink = cw
	}
	return New(store, sink, cfg), nil
}

// HandleEvent processes a batch of S3 trigger records. It always returns a
// structured result: 200 when every record succeeded, 207 on partial failure,
// 500 when configuration is broken (checked before any record is touched).
func (o *Orchestrator) HandleEvent(ctx context.Context, event events.S3Event) (types.BatchResult, error) {
	requestID := uuid.NewString()
	log := logging.GetLogger().WithField("request_id", requestID)

	invocationsTotal.Inc()
	o.sink.Count(metrics.InvocationCount, 1, nil)

	if err := o.cfg.Validate(); err != nil {
		log.Errorf("fatal configuration error: %v", err)
		return types.BatchResult{
			StatusCode:     500,
			Message:        "Internal error",
			ErrorBreakdown: map[string]int{string(faults.Configuration): 1},
		}, nil
	}

	results := make([]types.RecordResult, 0, len(event.Records))
	breakdown := map[string]int{}
	var recordErrs error
	successful := 0

	for i, record := range event.Records {
		res, err := o.processRecord(requestID, i, record)
		results = append(results, res)
		if err == nil {
			successful++
			filesProcessed.Inc()
			o.sink.Count(metrics.FilesProcessed, 1, nil)
			continue
		}
		kind := faults.KindOf(err)
		breakdown[string(kind)]++
		filesFailed.WithLabelValues(string(kind)).Inc()
		o.sink.Count(metrics.FilesFailed, 1, map[string]string{"Kind": string(kind)})
		o.sink.Count(metrics.ErrorCount, 1, map[string]string{"Kind": string(kind)})
		recordErrs = multierr.Append(recordErrs, err)
	}

	failed := len(results) - successful
	if recordErrs != nil {
		log.Errorf("batch completed with %d failed records: %v", failed, recordErrs)
	}

	status := 200
	if failed > 0 {
		status = 207
	}
	return types.BatchResult{
		StatusCode:     status,
		Message:        fmt.Sprintf("Processed %d files successfully, %d failed", successful, failed),
		Results:        results,
		ErrorBreakdown: breakdown,
	}, nil
}

func (o *Orchestrator) processRecord(requestID string, index int, record events.S3EventRecord) (res types.RecordResult, err error) {
	bucket := record.S3.Bucket.Name
	key := decodeKey(record.S3.Object.Key)
	log := logging.WithRecord(requestID, bucket, key)
	log.Infof("processing file: s3://%s/%s", bucket, key)

	// An unclassified panic inside one record is tagged Unknown and treated
	// like any other per-record failure; it never aborts the batch.
	defer func() {
		if r := recover(); r != nil {
			err = faults.Errorf(faults.Unknown, "panic while processing record: %v", r)
			log.Error(err)
			res = types.RecordResult{
				Status:       types.RecordStatusError,
				SourceBucket: bucket,
				SourceKey:    key,
				ErrorKind:    string(faults.Unknown),
				Error:        err.Error(),
			}
		}
	}()

	fail := func(err error) (types.RecordResult, error) {
		if f, ok := err.(*faults.Fault); ok {
			f.With("record_index", fmt.Sprintf("%d", index))
		}
		kind := faults.KindOf(err)
		log.Errorf("record failed (%s): %v", kind, err)
		return types.RecordResult{
			Status:       types.RecordStatusError,
			SourceBucket: bucket,
			SourceKey:    key,
			ErrorKind:    string(kind),
			Error:        err.Error(),
		}, err
	}

	p, err := o.reader.Read(bucket, key)
	if err != nil {
		return fail(err)
	}

	source := flatten.ResolveSource(p.Meta, bucket, key)
	rows, err := flatten.Flatten(p, path.Base(key), source)
	if err != nil {
		return fail(err)
	}

	// Derived once per file; row columns and path share the same key.
	pkey := partition.Derive(source, p.Meta.ResponseTs)
	rows = partition.Apply(rows, pkey)
	objectKey := partition.ObjectKey(pkey, key)

	start := time.Now()
	written, err := o.writer.Write(rows, o.cfg.TargetBucket, objectKey)
	if err != nil {
		return fail(err)
	}
	o.sink.Duration(metrics.WriteDuration, time.Since(start), map[string]string{"Source": source})

	if written {
		rowsWritten.Add(float64(len(rows)))
		o.sink.Count(metrics.RowsWritten, float64(len(rows)), map[string]string{"Source": source})
	} else {
		duplicateSkips.Inc()
		o.sink.Count(metrics.DuplicateSkips, 1, map[string]string{"Source": source})
	}

	outputPath := partition.URI(o.cfg.TargetBucket, objectKey)
	log.Infof("successfully processed %s -> %s (%d rows)", key, outputPath, len(rows))
	return types.RecordResult{
		Status:           types.RecordStatusSuccess,
		SourceBucket:     bucket,
		SourceKey:        key,
		OutputPath:       outputPath,
		RecordsProcessed: len(rows),
	}, nil
}

// decodeKey percent-decodes the object key from the event record. S3 encodes
// spaces as '+' in event notifications.
func decodeKey(raw string) string {
	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		logging.GetLogger().Warnf("unable to percent-decode key %q, using raw value: %v", raw, err)
		return raw
	}
	return decoded
}

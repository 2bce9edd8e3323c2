// Package writer persists flattened rows as a single snappy-compressed
// parquet object, skipping the write entirely when the target already exists.
// The existence check and the put are not atomic: two concurrent invocations
// can both observe "absent" and both write (last write wins). That race is
// accepted given the low duplicate-delivery rate of the trigger source.
package writer

import (
	"bytes"

	"github.com/parquet-go/parquet-go"

	"github.com/fhir-analytics/ingest-backend/internal/faults"
	"github.com/fhir-analytics/ingest-backend/internal/logging"
	"github.com/fhir-analytics/ingest-backend/internal/storage"
	"github.com/fhir-analytics/ingest-backend/internal/types"
)

type ParquetWriter struct {
	store storage.ObjectStore
}

func New(store storage.ObjectStore) *ParquetWriter {
	return &ParquetWriter{store: store}
}

// Write encodes and stores the rows. It returns false without error when the
// target already exists. An existence check that fails for any reason other
// than a definitive "not found" is treated as "does not exist" - a write
// attempt beats a false skip - but logged as a possible anomaly.
func (w *ParquetWriter) Write(rows []types.OutputRow, bucket string, key string) (bool, error) {
	log := logging.GetLogger()

	exists, err := w.store.Exists(bucket, key)
	if err != nil {
		log.Warnf("existence check failed for s3://%s/%s, assuming absent: %v", bucket, key, err)
		exists = false
	}
	if exists {
		log.Warnf("file already exists: s3://%s/%s, skipping write", bucket, key)
		return false, nil
	}

	body, err := Encode(rows)
	if err != nil {
		return false, faults.Wrap(faults.Write, err, "unable to encode parquet").
			With("bucket", bucket).With("key", key)
	}
	if err := w.store.Put(bucket, key, body); err != nil {
		return false, faults.Wrap(faults.Write, err, "unable to write parquet object").
			With("bucket", bucket).With("key", key)
	}

	log.Infof("wrote %d rows to s3://%s/%s", len(rows), bucket, key)
	return true, nil
}

// Encode renders the rows as a single snappy-compressed parquet file. The
// row struct's parquet tags fix the column set, so every file carries an
// identical schema; the path-encoded partition columns are excluded there.
func Encode(rows []types.OutputRow) ([]byte, error) {
	var buf bytes.Buffer
	pw := parquet.NewGenericWriter[types.OutputRow](&buf, parquet.Compression(&parquet.Snappy))
	if _, err := pw.Write(rows); err != nil {
		return nil, err
	}
	if err := pw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reads an encoded file back; used by the round-trip tests and the
// local inspect tooling.
func Decode(body []byte) ([]types.OutputRow, error) {
	return parquet.Read[types.OutputRow](bytes.NewReader(body), int64(len(body)))
}

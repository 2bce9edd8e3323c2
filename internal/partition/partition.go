// Package partition derives the (source, date, hour) partition key for one
// input file and builds the partitioned output object key from it. The key is
// derived exactly once per file and shared between the row columns and the
// path, so the two can never disagree.
package partition

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/fhir-analytics/ingest-backend/internal/logging"
	"github.com/fhir-analytics/ingest-backend/internal/types"
)

const outputExtension = ".parquet"

// utcNow is replaceable in tests to pin the wall-clock fallback.
var utcNow = func() time.Time { return time.Now().UTC() }

// Key is the partition triple encoded into the output location.
type Key struct {
	Source string
	Date   string // YYYY-MM-DD
	Hour   string // HH
}

// Derive computes the partition key. A parseable timestamp (trailing "Z"
// accepted as UTC designator) decides date and hour; anything else, including
// a parse failure, degrades to the current wall-clock UTC values. Parse
// failure is logged but never raises.
func Derive(sourceTag string, timestamp *string) Key {
	t := utcNow()
	if timestamp != nil && *timestamp != "" {
		parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(*timestamp))
		if err == nil {
			t = parsed.UTC()
		} else {
			logging.GetLogger().Warnf("unparsable partition timestamp %q, falling back to wall clock: %v", *timestamp, err)
		}
	}
	return Key{
		Source: sourceTag,
		Date:   t.Format("2006-01-02"),
		Hour:   t.Format("15"),
	}
}

// Apply attaches the partition values to every row. All rows of one file
// receive the same values.
func Apply(rows []types.OutputRow, key Key) []types.OutputRow {
	for i := range rows {
		source := key.Source
		rows[i].Source = &source
		rows[i].IngestDate = key.Date
		rows[i].Hour = key.Hour
	}
	return rows
}

// ObjectKey derives the output object key: the origin basename with its
// extension replaced, under the hive-style partition prefix. Arbitrary
// characters in the basename, including spaces, are preserved.
func ObjectKey(key Key, originFilename string) string {
	base := path.Base(originFilename)
	base = strings.TrimSuffix(base, path.Ext(base)) + outputExtension
	return fmt.Sprintf("data/source=%s/ingest_date=%s/hour=%s/%s", key.Source, key.Date, key.Hour, base)
}

// URI renders the fully qualified output location for reporting.
func URI(bucket string, objectKey string) string {
	return fmt.Sprintf("s3://%s/%s", bucket, objectKey)
}

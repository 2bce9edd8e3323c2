// Package flatten converts a validated payload into the tabular row set
// written to the analytics bucket. One response item with N outcome issues
// yields N rows sharing every other field; items with a 2xx status are
// successful persists and produce no rows at all.
package flatten

import (
	"strings"
	"time"

	"github.com/fhir-analytics/ingest-backend/internal/faults"
	"github.com/fhir-analytics/ingest-backend/internal/logging"
	"github.com/fhir-analytics/ingest-backend/internal/types"
)

const isoTimestampFormat = "2006-01-02T15:04:05.000Z"

// Flatten builds the output rows for one payload. It fails with a transform
// fault when the result would be empty: an empty response array, or a
// response array where every item carried a 2xx status.
func Flatten(p *types.Payload, originFilename string, sourceTag string) ([]types.OutputRow, error) {
	log := logging.GetLogger()

	if len(p.Response) == 0 {
		return nil, faults.New(faults.Transform, "response array is empty, nothing to report")
	}

	base := baseRow(p.Meta, originFilename, sourceTag)

	rows := []types.OutputRow{}
	skipped := 0
	for i := range p.Response {
		item := &p.Response[i]
		if isSuccessStatus(item.StatusCode) {
			skipped++
			continue
		}

		row := base
		row.RequestResourceID = item.RequestResourceID
		row.StatusCode = item.StatusCode
		row.OperationOutcomeLocation = item.ResourceLocation

		issues := item.Issues()
		if len(issues) == 0 {
			rows = append(rows, row)
			continue
		}
		for j := range issues {
			issue := issues[j]
			exploded := row
			exploded.OperationOutcomeSeverity = issue.Severity
			exploded.OperationOutcomeCode = issue.Code
			exploded.OperationOutcomeDetail = issue.DetailText()
			rows = append(rows, exploded)
		}
	}

	if len(rows) == 0 {
		return nil, faults.Errorf(faults.Transform,
			"all %d response items carried 2xx statuses, nothing to report", skipped)
	}

	log.Debugf("flattened %d response items into %d rows", len(p.Response), len(rows))
	return rows, nil
}

func baseRow(meta *types.Metadata, originFilename string, sourceTag string) types.OutputRow {
	row := types.OutputRow{
		S3Filename:              &originFilename,
		ApproximateReceiveCount: meta.ReceiveCount(),
		CustomerID:              meta.CustomerID,
		PatientID:               meta.PatientID,
		SourceFhirServer:        meta.SourceFhirServer,
		BundleResourceType:      meta.BundleResourceType,
		ResponseTs:              coerceTimestamp(meta.ResponseTs),
		LatencyMs:               meta.LatencyMs,
		DatastoreID:             meta.DatastoreID,
	}
	if sourceTag != "" {
		row.Source = &sourceTag
	} else {
		row.Source = meta.Source
	}
	return row
}

// isSuccessStatus applies the business filter: a status in [200,299] is a
// successful, non-reportable outcome. An absent status is reportable.
func isSuccessStatus(code *int32) bool {
	return code != nil && *code >= 200 && *code <= 299
}

// coerceTimestamp normalizes the response timestamp to a canonical UTC
// instant. Unparsable values become null; coercion failure is never fatal.
func coerceTimestamp(ts *string) *string {
	if ts == nil || *ts == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(*ts))
	if err != nil {
		logging.GetLogger().Warnf("unparsable responseTs %q dropped: %v", *ts, err)
		return nil
	}
	canonical := t.UTC().Format(isoTimestampFormat)
	return &canonical
}

// ResolveSource picks the source tag for a file: the payload's declared tag
// wins, then well-known substrings of the bucket or key, then "unknown".
func ResolveSource(meta *types.Metadata, bucket string, key string) string {
	if meta != nil && meta.Source != nil && *meta.Source != "" {
		return *meta.Source
	}
	for _, tag := range []string{"lca-persist", "dxa-persist"} {
		if strings.Contains(bucket, tag) || strings.Contains(key, tag) {
			return tag
		}
	}
	return "unknown"
}

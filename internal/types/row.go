package types

import "strconv"

// OutputRow is one flattened record: the shared metadata fields merged with
// the per-response-item and per-issue fields. The parquet tags define the
// fixed column set written for every file; the partition columns are encoded
// in the object path, not the row body, so they are excluded from the schema.
type OutputRow struct {
	S3Filename              *string `parquet:"s3Filename,optional"`
	Source                  *string `parquet:"source,optional"`
	ApproximateReceiveCount *int64  `parquet:"approximateReceiveCount,optional"`
	CustomerID              *string `parquet:"customerId,optional"`
	PatientID               *string `parquet:"patientId,optional"`
	SourceFhirServer        *string `parquet:"sourceFhirServer,optional"`
	RequestResourceID       *string `parquet:"requestResourceId,optional"`
	BundleResourceType      *string `parquet:"bundleResourceType,optional"`
	StatusCode              *int32  `parquet:"statusCode,optional"`
	ResponseTs              *string `parquet:"responseTs,optional"`
	LatencyMs               *int64  `parquet:"latencyMs,optional"`
	DatastoreID             *string `parquet:"datastoreId,optional"`

	OperationOutcomeLocation *string `parquet:"operationOutcomeLocation,optional"`
	OperationOutcomeSeverity *string `parquet:"operationOutcomeSeverity,optional"`
	OperationOutcomeCode     *string `parquet:"operationOutcomeCode,optional"`
	OperationOutcomeDetail   *string `parquet:"operationOutcomeDetail,optional"`

	IngestDate string `parquet:"-"`
	Hour       string `parquet:"-"`
}

// OutputColumns is the fixed column set of the written file, in schema order.
var OutputColumns = []string{
	"s3Filename",
	"source",
	"approximateReceiveCount",
	"customerId",
	"patientId",
	"sourceFhirServer",
	"requestResourceId",
	"bundleResourceType",
	"statusCode",
	"responseTs",
	"latencyMs",
	"datastoreId",
	"operationOutcomeLocation",
	"operationOutcomeSeverity",
	"operationOutcomeCode",
	"operationOutcomeDetail",
}

// RowsToRecords renders rows as string records (header first) for CSV
// previews; partition columns are included at the end. Nulls render empty.
func RowsToRecords(rows []OutputRow) [][]string {
	header := append(append([]string{}, OutputColumns...), "ingest_date", "hour")
	records := [][]string{header}
	for i := range rows {
		r := &rows[i]
		records = append(records, []string{
			strOrEmpty(r.S3Filename),
			strOrEmpty(r.Source),
			int64OrEmpty(r.ApproximateReceiveCount),
			strOrEmpty(r.CustomerID),
			strOrEmpty(r.PatientID),
			strOrEmpty(r.SourceFhirServer),
			strOrEmpty(r.RequestResourceID),
			strOrEmpty(r.BundleResourceType),
			int32OrEmpty(r.StatusCode),
			strOrEmpty(r.ResponseTs),
			int64OrEmpty(r.LatencyMs),
			strOrEmpty(r.DatastoreID),
			strOrEmpty(r.OperationOutcomeLocation),
			strOrEmpty(r.OperationOutcomeSeverity),
			strOrEmpty(r.OperationOutcomeCode),
			strOrEmpty(r.OperationOutcomeDetail),
			r.IngestDate,
			r.Hour,
		})
	}
	return records
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func int64OrEmpty(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

func int32OrEmpty(v *int32) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(int64(*v), 10)
}

package types

const (
	RecordStatusSuccess = "success"
	RecordStatusError   = "error"
)

// RecordResult is the terminal outcome of processing one trigger record.
type RecordResult struct {
	Status           string `json:"status"`
	SourceBucket     string `json:"source_bucket"`
	SourceKey        string `json:"source_key"`
	OutputPath       string `json:"output_path,omitempty"`
	RecordsProcessed int    `json:"records_processed,omitempty"`
	ErrorKind        string `json:"error_kind,omitempty"`
	Error            string `json:"error,omitempty"`
}

// BatchResult is the invocation's return value: 200 when every record
// succeeded, 207 on partial failure, 500 when configuration is broken.
type BatchResult struct {
	StatusCode     int            `json:"statusCode"`
	Message        string         `json:"message"`
	Results        []RecordResult `json:"results"`
	ErrorBreakdown map[string]int `json:"error_breakdown,omitempty"`
}

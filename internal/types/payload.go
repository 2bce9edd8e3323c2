package types

import (
	"encoding/json"
)

// Payload is the validated JSON document for one input file: ingest metadata
// plus the list of per-resource persist responses. Both fields must be
// present; response must be an array.
type Payload struct {
	Meta     *Metadata      `json:"meta" validate:"required"`
	Response []ResponseItem `json:"response" validate:"required"`
}

// Metadata fields are all optional; absent fields propagate as nulls into
// output rows.
type Metadata struct {
	S3Filename         *string `json:"s3Filename"`
	Source             *string `json:"source"`
	CustomerID         *string `json:"customerId"`
	PatientID          *string `json:"patientId"`
	SourceFhirServer   *string `json:"sourceFhirServer"`
	BundleResourceType *string `json:"bundleResourceType"`
	ResponseTs         *string `json:"responseTs"`
	LatencyMs          *int64  `json:"latencyMs"`
	DatastoreID        *string `json:"datastoreId"`

	ApproximateReceiveCount *int64 `json:"approximateReceiveCount"`
	// Legacy misspelling still produced by older upstream writers.
	ApproximateRecieveCount *int64 `json:"approximateRecieveCount"`
}

// ReceiveCount resolves the receive-count field, preferring the correctly
// spelled key over the legacy one.
func (m *Metadata) ReceiveCount() *int64 {
	if m.ApproximateReceiveCount != nil {
		return m.ApproximateReceiveCount
	}
	return m.ApproximateRecieveCount
}

type ResponseItem struct {
	StatusCode        *int32  `json:"statusCode"`
	RequestResourceID *string `json:"requestResourceId"`
	ResourceLocation  *string `json:"resourceLocation"`
	// Kept raw: upstream occasionally emits non-object values here, which
	// count as "no outcome" rather than a rejected payload.
	OperationOutcome json.RawMessage `json:"operationOutcome"`
}

type OperationOutcome struct {
	Issue []Issue `json:"issue"`
}

type Issue struct {
	Severity *string         `json:"severity"`
	Code     *string         `json:"code"`
	Details  json.RawMessage `json:"details"`
}

// Issues decodes the operationOutcome block. A missing block, a non-object
// value, or an empty issue list all yield nil.
func (r *ResponseItem) Issues() []Issue {
	if len(r.OperationOutcome) == 0 {
		return nil
	}
	var outcome OperationOutcome
	if err := json.Unmarshal(r.OperationOutcome, &outcome); err != nil {
		return nil
	}
	if len(outcome.Issue) == 0 {
		return nil
	}
	return outcome.Issue
}

// DetailText resolves the polymorphic details field: an object contributes
// its "text" member, a plain string contributes itself, any other non-null
// value contributes its compact JSON form.
func (i *Issue) DetailText() *string {
	if len(i.Details) == 0 || string(i.Details) == "null" {
		return nil
	}
	var obj struct {
		Text *string `json:"text"`
	}
	if err := json.Unmarshal(i.Details, &obj); err == nil && obj.Text != nil {
		return obj.Text
	}
	var s string
	if err := json.Unmarshal(i.Details, &s); err == nil {
		return &s
	}
	raw := string(i.Details)
	return &raw
}

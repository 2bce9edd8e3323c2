// Package payload fetches one input object and turns it into a validated
// Payload. Validation order is fixed: readability, then syntactic parse, then
// structural shape. Any failure aborts processing of that file entirely.
package payload

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"

	"github.com/fhir-analytics/ingest-backend/internal/faults"
	"github.com/fhir-analytics/ingest-backend/internal/storage"
	"github.com/fhir-analytics/ingest-backend/internal/types"
)

var validate = validator.New()

type Reader struct {
	store storage.ObjectStore
}

func NewReader(store storage.ObjectStore) *Reader {
	return &Reader{store: store}
}

func (r *Reader) Read(bucket string, key string) (*types.Payload, error) {
	data, err := r.store.Get(bucket, key)
	if err != nil {
		return nil, faults.Wrap(faults.Read, err, "unable to fetch object").
			With("bucket", bucket).With("key", key)
	}
	p, err := Parse(data)
	if err != nil {
		if f, ok := err.(*faults.Fault); ok {
			f.With("bucket", bucket).With("key", key)
		}
		return nil, err
	}
	return p, nil
}

// Parse decodes and structurally validates a raw payload document.
func Parse(data []byte) (*types.Payload, error) {
	if !json.Valid(data) {
		return nil, faults.New(faults.Parse, "payload is not valid JSON")
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		// Well-formed JSON that is not an object is a shape problem, not a
		// syntax problem.
		return nil, faults.Wrap(faults.Validation, err, "payload is not a JSON object")
	}

	rawMeta, ok := envelope["meta"]
	if !ok {
		return nil, faults.New(faults.Validation, "payload is missing 'meta' field")
	}
	rawResponse, ok := envelope["response"]
	if !ok {
		return nil, faults.New(faults.Validation, "payload is missing 'response' field")
	}

	var p types.Payload
	if err := json.Unmarshal(rawMeta, &p.Meta); err != nil {
		return nil, faults.Wrap(faults.Validation, err, "'meta' field is not an object")
	}
	if err := json.Unmarshal(rawResponse, &p.Response); err != nil {
		return nil, faults.Wrap(faults.Validation, err, "'response' field is not an array")
	}
	if p.Response == nil {
		// json null decodes without error but leaves the slice nil; an empty
		// array decodes to a non-nil empty slice.
		return nil, faults.New(faults.Validation, "'response' field is not an array")
	}
	if err := validate.Struct(&p); err != nil {
		return nil, faults.Wrap(faults.Validation, err, "payload failed structural validation")
	}
	return &p, nil
}

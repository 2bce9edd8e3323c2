// Package storage abstracts the object store so the pipeline can run against
// S3 in production and an in-memory fake in tests and local tooling.
package storage

// ObjectStore is the minimal surface the pipeline needs: fetch bytes, probe
// existence, single-shot write.
type ObjectStore interface {
	Get(bucket string, key string) ([]byte, error)
	// Exists reports whether the object is present. A definitive "not found"
	// is (false, nil); any other failure is (false, err) so callers can decide
	// how conservatively to treat it.
	Exists(bucket string, key string) (bool, error)
	Put(bucket string, key string, body []byte) error
}

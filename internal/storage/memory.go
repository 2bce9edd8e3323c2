package storage

import (
	"fmt"
	"sync"
)

// MemoryStore is an in-memory ObjectStore used by tests and the local flatten
// tool. Error fields, when set, are returned by the corresponding call to
// simulate transport failures.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte

	GetErr  error
	HeadErr error
	PutErr  error

	// PutCalls counts write attempts, including failed ones.
	PutCalls int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: map[string][]byte{}}
}

func (m *MemoryStore) Get(bucket string, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	body, ok := m.objects[bucket+"/"+key]
	if !ok {
		return nil, fmt.Errorf("object s3://%s/%s does not exist", bucket, key)
	}
	return body, nil
}

func (m *MemoryStore) Exists(bucket string, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.HeadErr != nil {
		return false, m.HeadErr
	}
	_, ok := m.objects[bucket+"/"+key]
	return ok, nil
}

func (m *MemoryStore) Put(bucket string, key string, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PutCalls++
	if m.PutErr != nil {
		return m.PutErr
	}
	m.objects[bucket+"/"+key] = body
	return nil
}

// Object returns the stored body, or nil when absent.
func (m *MemoryStore) Object(bucket string, key string) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.objects[bucket+"/"+key]
}

// Seed stores an object directly, bypassing PutCalls accounting.
func (m *MemoryStore) Seed(bucket string, key string, body []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[bucket+"/"+key] = body
}

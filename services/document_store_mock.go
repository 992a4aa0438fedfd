package services

import (
	"context"
	"fmt"
	"sync"
)

// MockDocumentStore is an in-memory DocumentStore for testing
type MockDocumentStore struct {
	documents map[string][]byte
	mu        sync.RWMutex

	// PutErr, when set, is returned by every Put call
	PutErr error
}

// NewMockDocumentStore creates a new mock document store
func NewMockDocumentStore() *MockDocumentStore {
	return &MockDocumentStore{
		documents: make(map[string][]byte),
	}
}

// SetAsMockForTesting sets this mock as the global document store
func (m *MockDocumentStore) SetAsMockForTesting() {
	SetDocumentStore(m)
}

// Put stores the document in memory
func (m *MockDocumentStore) Put(ctx context.Context, key string, content []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.PutErr != nil {
		return m.PutErr
	}
	m.documents[key] = append([]byte(nil), content...)
	return nil
}

// URL returns a fake presigned URL for stored documents
func (m *MockDocumentStore) URL(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	_, exists := m.documents[key]
	m.mu.RUnlock()

	if !exists {
		return "", fmt.Errorf("document not found in mock storage: %s", key)
	}
	return fmt.Sprintf("https://test-bucket.s3.us-east-1.amazonaws.com/%s?mock=true", key), nil
}

// Delete removes the document from memory
func (m *MockDocumentStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.documents, key)
	m.mu.Unlock()
	return nil
}

// Documents returns a copy of all stored documents
func (m *MockDocumentStore) Documents() map[string][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()

	documents := make(map[string][]byte, len(m.documents))
	for k, v := range m.documents {
		documents[k] = v
	}
	return documents
}

// Exists reports whether key is stored
func (m *MockDocumentStore) Exists(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.documents[key]
	return exists
}

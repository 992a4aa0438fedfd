package services

import "context"

// DocumentStore persists generated invoice documents
type DocumentStore interface {
	// Put stores content under key
	Put(ctx context.Context, key string, content []byte, contentType string) error

	// URL returns a download location for a stored document
	URL(ctx context.Context, key string) (string, error)

	// Delete removes a document; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error
}

var documentStoreInstance DocumentStore

// GetDocumentStore returns the configured document store
func GetDocumentStore() DocumentStore {
	return documentStoreInstance
}

// SetDocumentStore sets the document store instance (also used by tests)
func SetDocumentStore(store DocumentStore) {
	documentStoreInstance = store
}

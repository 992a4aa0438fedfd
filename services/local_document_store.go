package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/autoservice-manager/workshop-api/utils"
)

// LocalDocumentStore keeps documents in a directory served by the API
type LocalDocumentStore struct {
	dir string
}

// NewLocalDocumentStore creates a store rooted at dir
func NewLocalDocumentStore(dir string) *LocalDocumentStore {
	return &LocalDocumentStore{dir: dir}
}

// Dir returns the directory documents are written to
func (s *LocalDocumentStore) Dir() string {
	return s.dir
}

// Put writes the document to disk
func (s *LocalDocumentStore) Put(ctx context.Context, key string, content []byte, contentType string) error {
	if _, err := utils.SaveDocument(s.dir, utils.DocumentFilename(key), content); err != nil {
		return err
	}
	return nil
}

// URL returns the API path serving the document
func (s *LocalDocumentStore) URL(ctx context.Context, key string) (string, error) {
	return utils.GetDocumentURL(utils.DocumentFilename(key)), nil
}

// Delete removes the document file
func (s *LocalDocumentStore) Delete(ctx context.Context, key string) error {
	path := filepath.Join(s.dir, utils.DocumentFilename(key))
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete document %s: %w", key, err)
	}
	return nil
}

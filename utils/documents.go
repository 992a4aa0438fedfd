package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DocumentExtension is the only file type served from the documents directory
const DocumentExtension = ".pdf"

var (
	// DocumentsDir is the directory where generated documents are stored
	// Can be overridden for testing
	DocumentsDir = "./invoices"
)

// DocumentError represents a rejected document file name
type DocumentError struct {
	Code    string
	Message string
}

func (e *DocumentError) Error() string {
	return e.Message
}

// DocumentFilename flattens a storage key such as "invoices/INV-1/x.pdf"
// into a single file name
func DocumentFilename(key string) string {
	return strings.ReplaceAll(strings.Trim(key, "/"), "/", "_")
}

// ValidateDocumentFilename rejects names that could escape the documents
// directory or that are not PDF files
func ValidateDocumentFilename(filename string) error {
	if filename == "" {
		return &DocumentError{Code: "INVALID_REQUEST", Message: "Filename is required"}
	}

	// Prevent directory traversal
	if strings.Contains(filename, "..") || strings.Contains(filename, "/") || strings.Contains(filename, "\\") {
		return &DocumentError{Code: "INVALID_FILENAME", Message: "Invalid filename"}
	}

	if strings.ToLower(filepath.Ext(filename)) != DocumentExtension {
		return &DocumentError{
			Code:    "INVALID_FILE_TYPE",
			Message: fmt.Sprintf("Only %s files are supported", DocumentExtension),
		}
	}
	return nil
}

// SaveDocument writes content to dir/filename and returns the full path
func SaveDocument(dir, filename string, content []byte) (string, error) {
	if err := ValidateDocumentFilename(filename); err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create documents directory: %w", err)
	}

	fullPath := filepath.Join(dir, filename)
	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		return "", fmt.Errorf("failed to save document: %w", err)
	}
	return fullPath, nil
}

// GetDocumentURL returns the URL path for downloading a stored document
func GetDocumentURL(filename string) string {
	if filename == "" {
		return ""
	}
	return fmt.Sprintf("/api/v1/documents/%s", filename)
}

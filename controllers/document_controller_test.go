package controllers

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/autoservice-manager/workshop-api/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDocumentRouter(t *testing.T) (*gin.Engine, string) {
	gin.SetMode(gin.TestMode)

	tmpDir := t.TempDir()
	original := utils.DocumentsDir
	utils.DocumentsDir = tmpDir
	t.Cleanup(func() { utils.DocumentsDir = original })

	router := gin.New()
	router.GET("/documents/:filename", GetDocument)
	return router, tmpDir
}

func TestGetDocument_Success(t *testing.T) {
	router, tmpDir := setupDocumentRouter(t)

	testContent := []byte("%PDF-1.3 fake invoice")
	testFilename := "invoices_INV-2026-000001_abc.pdf"
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, testFilename), testContent, 0644))

	req := httptest.NewRequest("GET", "/documents/"+testFilename, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, "private, max-age=3600", w.Header().Get("Cache-Control"))
	assert.Equal(t, testContent, w.Body.Bytes())
}

func TestGetDocument_FileNotFound(t *testing.T) {
	router, _ := setupDocumentRouter(t)

	req := httptest.NewRequest("GET", "/documents/missing.pdf", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "FILE_NOT_FOUND")
	assert.Contains(t, w.Body.String(), "Document not found")
}

func TestGetDocument_DirectoryTraversal(t *testing.T) {
	router, _ := setupDocumentRouter(t)

	testCases := []struct {
		name           string
		filename       string
		expectedStatus int
		expectedError  string
	}{
		// Gin's router treats slashes as path separators, so these never reach the handler
		{"Parent directory traversal", "../../../etc/passwd", http.StatusNotFound, ""},
		{"Forward slash in filename", "path/to/file.pdf", http.StatusNotFound, ""},

		{"Backslash in filename", "path\\to\\file.pdf", http.StatusBadRequest, "INVALID_FILENAME"},
		{"Dots in filename", "..file.pdf", http.StatusBadRequest, "INVALID_FILENAME"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/documents/"+tc.filename, nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tc.expectedStatus, w.Code)
			if tc.expectedError != "" {
				assert.Contains(t, w.Body.String(), tc.expectedError)
			}
		})
	}
}

func TestGetDocument_InvalidFileType(t *testing.T) {
	router, _ := setupDocumentRouter(t)

	for _, filename := range []string{"invoice.png", "invoice.txt", "invoice"} {
		t.Run(filename, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/documents/"+filename, nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "INVALID_FILE_TYPE")
			assert.Contains(t, w.Body.String(), "Only .pdf files are supported")
		})
	}
}

func TestGetDocument_CaseInsensitiveExtension(t *testing.T) {
	router, tmpDir := setupDocumentRouter(t)

	testContent := []byte("%PDF-1.3 upper")
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "INVOICE.PDF"), testContent, 0644))

	req := httptest.NewRequest("GET", "/documents/INVOICE.PDF", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, testContent, w.Body.Bytes())
}

package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/autoservice-manager/workshop-api/config"
	"github.com/autoservice-manager/workshop-api/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// setupTestRouter creates a bare router in test mode
func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// setupTestDB installs a fresh database as the global connection
func setupTestDB(t *testing.T) *gorm.DB {
	db := testutil.NewTestDB(t)
	original := config.GetDB()
	config.SetDB(db)
	t.Cleanup(func() { config.SetDB(original) })
	return db
}

// performRequest sends body as JSON and decodes the response envelope
func performRequest(t *testing.T, router *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var response map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), "Response should be valid JSON")
	}
	return w, response
}

// assertErrorCode checks the error envelope
func assertErrorCode(t *testing.T, response map[string]interface{}, code string) {
	t.Helper()

	assert.False(t, response["success"].(bool))
	errorData := response["error"].(map[string]interface{})
	assert.Equal(t, code, errorData["code"])
}

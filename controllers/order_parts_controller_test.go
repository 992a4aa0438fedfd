package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/autoservice-manager/workshop-api/models"
	"github.com/autoservice-manager/workshop-api/tests/testutil"
	"github.com/stretchr/testify/assert"
)

func TestAttachOrderPart(t *testing.T) {
	tests := []struct {
		name           string
		status         models.OrderStatus
		stock          int
		requestBody    func(partID uint) map[string]interface{}
		expectedStatus int
		expectedError  string
		expectedStock  int
		checkResponse  func(t *testing.T, response map[string]interface{})
	}{
		{
			name:   "Attach at catalog price",
			status: models.StatusInProgress,
			stock:  5,
			requestBody: func(partID uint) map[string]interface{} {
				return map[string]interface{}{"part_id": partID, "quantity": 2}
			},
			expectedStatus: http.StatusCreated,
			expectedStock:  3,
			checkResponse: func(t *testing.T, response map[string]interface{}) {
				data := response["data"].(map[string]interface{})
				assert.Equal(t, float64(2), data["quantity"])
				assert.Equal(t, float64(20), data["unit_price"])
				assert.Equal(t, float64(40), data["total_price"])
				part := data["part"].(map[string]interface{})
				assert.Equal(t, "BP-100", part["code"])
			},
		},
		{
			name:   "Attach with price override",
			status: models.StatusNew,
			stock:  5,
			requestBody: func(partID uint) map[string]interface{} {
				return map[string]interface{}{"part_id": partID, "quantity": 1, "unit_price": 17.5}
			},
			expectedStatus: http.StatusCreated,
			expectedStock:  4,
			checkResponse: func(t *testing.T, response map[string]interface{}) {
				data := response["data"].(map[string]interface{})
				assert.Equal(t, 17.5, data["unit_price"])
			},
		},
		{
			name:   "Insufficient stock",
			status: models.StatusInProgress,
			stock:  2,
			requestBody: func(partID uint) map[string]interface{} {
				return map[string]interface{}{"part_id": partID, "quantity": 3}
			},
			expectedStatus: http.StatusConflict,
			expectedError:  "INSUFFICIENT_STOCK",
			expectedStock:  2,
			checkResponse: func(t *testing.T, response map[string]interface{}) {
				details := response["error"].(map[string]interface{})["details"].(map[string]interface{})
				assert.Equal(t, float64(3), details["requested"])
				assert.Equal(t, float64(2), details["available"])
			},
		},
		{
			name:   "Zero quantity",
			status: models.StatusInProgress,
			stock:  5,
			requestBody: func(partID uint) map[string]interface{} {
				return map[string]interface{}{"part_id": partID, "quantity": 0}
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
			expectedStock:  5,
		},
		{
			name:   "Unknown part",
			status: models.StatusInProgress,
			stock:  5,
			requestBody: func(partID uint) map[string]interface{} {
				return map[string]interface{}{"part_id": partID + 100, "quantity": 1}
			},
			expectedStatus: http.StatusNotFound,
			expectedError:  "NOT_FOUND",
			expectedStock:  5,
		},
		{
			name:   "Invoiced order is frozen",
			status: models.StatusInvoiced,
			stock:  5,
			requestBody: func(partID uint) map[string]interface{} {
				return map[string]interface{}{"part_id": partID, "quantity": 1}
			},
			expectedStatus: http.StatusConflict,
			expectedError:  "INVALID_STATE",
			expectedStock:  5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupTestDB(t)
			order := testutil.CreateOrder(t, db, tt.status, nil)
			part := testutil.CreatePart(t, db, "BP-100", "20.00", tt.stock)

			router := setupTestRouter()
			router.POST("/orders/:id/parts", AttachOrderPart)

			w, response := performRequest(t, router, http.MethodPost,
				fmt.Sprintf("/orders/%d/parts", order.ID), tt.requestBody(part.ID))

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedError != "" {
				assertErrorCode(t, response, tt.expectedError)
			}
			if tt.checkResponse != nil {
				tt.checkResponse(t, response)
			}
			assert.Equal(t, tt.expectedStock, testutil.ReloadPart(t, db, part.ID).StockQuantity)
		})
	}
}

func TestListAndDetachOrderParts(t *testing.T) {
	db := setupTestDB(t)
	order := testutil.CreateOrder(t, db, models.StatusInProgress, testutil.IntPtr(2))
	pads := testutil.CreatePart(t, db, "BP-100", "20.00", 5)
	filter := testutil.CreatePart(t, db, "OF-200", "7.25", 10)

	router := setupTestRouter()
	router.POST("/orders/:id/parts", AttachOrderPart)
	router.GET("/orders/:id/parts", ListOrderParts)
	router.DELETE("/orders/:id/parts/:orderPartId", DetachOrderPart)

	path := fmt.Sprintf("/orders/%d/parts", order.ID)
	_, first := performRequest(t, router, http.MethodPost, path, map[string]interface{}{"part_id": pads.ID, "quantity": 2})
	performRequest(t, router, http.MethodPost, path, map[string]interface{}{"part_id": filter.ID, "quantity": 4})

	w, response := performRequest(t, router, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data := response["data"].(map[string]interface{})
	assert.Len(t, data["parts"], 2)
	assert.Equal(t, float64(69), data["total_parts_cost"])

	orderPartID := uint(first["data"].(map[string]interface{})["id"].(float64))
	w, _ = performRequest(t, router, http.MethodDelete, fmt.Sprintf("%s/%d", path, orderPartID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, testutil.ReloadPart(t, db, pads.ID).StockQuantity)

	w, response = performRequest(t, router, http.MethodDelete, fmt.Sprintf("%s/%d", path, orderPartID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assertErrorCode(t, response, "NOT_FOUND")

	_, response = performRequest(t, router, http.MethodGet, path, nil)
	data = response["data"].(map[string]interface{})
	assert.Len(t, data["parts"], 1)
	assert.Equal(t, float64(29), data["total_parts_cost"])
}

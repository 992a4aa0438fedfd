package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// FinalizeRequest represents the request body for invoicing an order
type FinalizeRequest struct {
	FinalCost *decimal.Decimal `json:"final_cost" binding:"required"`
	Notes     *string          `json:"notes"`
}

// FinalizeOrder handles POST /api/v1/orders/:id/invoice
func FinalizeOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req FinalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	invoice, err := invoiceFinalizer().Finalize(c.Request.Context(), id, *req.FinalCost, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, invoice)
}

// GetOrderInvoice handles GET /api/v1/orders/:id/invoice
func GetOrderInvoice(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	invoice, err := invoiceFinalizer().GetInvoice(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, invoice)
}

// RegenerateInvoiceDocument handles POST /api/v1/orders/:id/invoice/document
func RegenerateInvoiceDocument(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	invoice, err := invoiceFinalizer().RegenerateDocument(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, invoice)
}

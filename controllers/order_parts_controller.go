package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// AttachPartRequest represents the request body for adding a part to an order
type AttachPartRequest struct {
	PartID    uint             `json:"part_id" binding:"required"`
	Quantity  int              `json:"quantity" binding:"required,gt=0"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

// ListOrderParts handles GET /api/v1/orders/:id/parts
func ListOrderParts(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	parts, err := partsLedger().ListOrderParts(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, parts)
}

// AttachOrderPart handles POST /api/v1/orders/:id/parts
func AttachOrderPart(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req AttachPartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	orderPart, err := partsLedger().AttachPart(c.Request.Context(), id, req.PartID, req.Quantity, req.UnitPrice)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, orderPart)
}

// DetachOrderPart handles DELETE /api/v1/orders/:id/parts/:orderPartId
func DetachOrderPart(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	orderPartID, ok := parseID(c, "orderPartId")
	if !ok {
		return
	}

	if err := partsLedger().DetachPart(c.Request.Context(), id, orderPartID); err != nil {
		respondError(c, err)
		return
	}
	respondDeleted(c, "Part removed from order")
}

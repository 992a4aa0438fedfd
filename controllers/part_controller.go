package controllers

import (
	"net/http"
	"strconv"

	"github.com/autoservice-manager/workshop-api/services"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// PartRequest represents the request body for creating or replacing a part.
// StockQuantity is only read on create.
type PartRequest struct {
	Code          string           `json:"code" binding:"required"`
	Name          string           `json:"name" binding:"required"`
	Description   *string          `json:"description"`
	Price         *decimal.Decimal `json:"price" binding:"required"`
	StockQuantity int              `json:"stock_quantity" binding:"gte=0"`
}

func (r PartRequest) input() services.PartInput {
	return services.PartInput{Code: r.Code, Name: r.Name, Description: r.Description, Price: *r.Price}
}

// StockAdjustmentRequest represents the request body for a stock correction
type StockAdjustmentRequest struct {
	Delta *int `json:"delta" binding:"required"`
}

// CreatePart handles POST /api/v1/parts
func CreatePart(c *gin.Context) {
	var req PartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	part, err := catalogService().CreatePart(c.Request.Context(), req.input(), req.StockQuantity)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, part)
}

// ListParts handles GET /api/v1/parts?search=&in_stock_only=
func ListParts(c *gin.Context) {
	skip, limit, ok := pageParams(c)
	if !ok {
		return
	}
	inStockOnly, _ := strconv.ParseBool(c.DefaultQuery("in_stock_only", "false"))

	parts, err := catalogService().ListParts(c.Request.Context(), services.PartFilter{
		Search:      c.Query("search"),
		InStockOnly: inStockOnly,
		Skip:        skip,
		Limit:       limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, parts)
}

// GetPart handles GET /api/v1/parts/:id
func GetPart(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	part, err := catalogService().GetPart(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, part)
}

// UpdatePart handles PUT /api/v1/parts/:id
func UpdatePart(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req PartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	part, err := catalogService().UpdatePart(c.Request.Context(), id, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, part)
}

// DeletePart handles DELETE /api/v1/parts/:id
func DeletePart(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := catalogService().DeletePart(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondDeleted(c, "Part deleted")
}

// AdjustPartStock handles POST /api/v1/parts/:id/stock
func AdjustPartStock(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req StockAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	part, err := partsLedger().AdjustStock(c.Request.Context(), id, *req.Delta)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, part)
}

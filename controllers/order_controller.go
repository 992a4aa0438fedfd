package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/autoservice-manager/workshop-api/models"
	"github.com/autoservice-manager/workshop-api/services"
	"github.com/autoservice-manager/workshop-api/workflow"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// OrderRequest represents the request body for creating or replacing an order
type OrderRequest struct {
	CustomerID    uint             `json:"customer_id" binding:"required"`
	VehicleID     uint             `json:"vehicle_id" binding:"required"`
	Description   string           `json:"description" binding:"required"`
	Priority      models.Priority  `json:"priority"`
	EstimatedCost *decimal.Decimal `json:"estimated_cost"`
}

func (r OrderRequest) input() services.OrderInput {
	in := services.OrderInput{
		CustomerID:  r.CustomerID,
		VehicleID:   r.VehicleID,
		Description: r.Description,
		Priority:    r.Priority,
	}
	if r.EstimatedCost != nil {
		in.EstimatedCost = *r.EstimatedCost
	}
	return in
}

// StationField is a work_station_id that remembers whether it was present
// in the body, so an explicit null can be told apart from an omitted field
type StationField struct {
	Set   bool
	Value *int
}

func (f *StationField) UnmarshalJSON(data []byte) error {
	f.Set = true
	if string(data) == "null" {
		f.Value = nil
		return nil
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	f.Value = &v
	return nil
}

// PatchOrderRequest represents a status change, a station move, or both
type PatchOrderRequest struct {
	Status        *models.OrderStatus `json:"status"`
	WorkStationID StationField        `json:"work_station_id"`
}

// CreateOrder handles POST /api/v1/orders
func CreateOrder(c *gin.Context) {
	var req OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	order, err := orderService().Create(c.Request.Context(), req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, order)
}

// ListOrders handles GET /api/v1/orders?status=&skip=&limit=
func ListOrders(c *gin.Context) {
	skip, limit, ok := pageParams(c)
	if !ok {
		return
	}

	filter := services.OrderFilter{Skip: skip, Limit: limit}
	if raw := c.Query("status"); raw != "" {
		status := models.OrderStatus(raw)
		filter.Status = &status
	}

	orders, err := orderService().List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orders,
		"count":   len(orders),
	})
}

// GetOrder handles GET /api/v1/orders/:id
func GetOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	order, err := orderService().Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, order)
}

// UpdateOrder handles PUT /api/v1/orders/:id - replaces the editable fields
func UpdateOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	order, err := orderService().Update(c.Request.Context(), id, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, order)
}

// PatchOrder handles PATCH /api/v1/orders/:id - moves the order on the board
func PatchOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req PatchOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	event, err := workflow.EventFromPatch(req.Status, req.WorkStationID.Set, req.WorkStationID.Value)
	if err != nil {
		respondError(c, err)
		return
	}

	order, err := orderService().ApplyEvent(c.Request.Context(), id, event)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, order)
}

// DeleteOrder handles DELETE /api/v1/orders/:id - returns attached parts to stock
func DeleteOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := orderService().Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondDeleted(c, "Order deleted")
}

// GetQueue handles GET /api/v1/queue
func GetQueue(c *gin.Context) {
	queue, err := orderService().Queue(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, queue)
}

// ListStations handles GET /api/v1/stations
func ListStations(c *gin.Context) {
	stations, err := orderService().Stations(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, stations)
}

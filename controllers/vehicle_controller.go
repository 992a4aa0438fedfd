package controllers

import (
	"net/http"

	"github.com/autoservice-manager/workshop-api/services"
	"github.com/gin-gonic/gin"
)

// VehicleRequest represents the request body for creating or replacing a vehicle
type VehicleRequest struct {
	CustomerID         uint    `json:"customer_id" binding:"required"`
	Brand              string  `json:"brand" binding:"required"`
	Model              string  `json:"model" binding:"required"`
	Year               *int    `json:"year"`
	RegistrationNumber string  `json:"registration_number" binding:"required"`
	VIN                *string `json:"vin" binding:"omitempty,max=17"`
}

func (r VehicleRequest) input() services.VehicleInput {
	return services.VehicleInput{
		CustomerID:         r.CustomerID,
		Brand:              r.Brand,
		Model:              r.Model,
		Year:               r.Year,
		RegistrationNumber: r.RegistrationNumber,
		VIN:                r.VIN,
	}
}

// CreateVehicle handles POST /api/v1/vehicles
func CreateVehicle(c *gin.Context) {
	var req VehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	vehicle, err := catalogService().CreateVehicle(c.Request.Context(), req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, vehicle)
}

// ListVehicles handles GET /api/v1/vehicles
func ListVehicles(c *gin.Context) {
	skip, limit, ok := pageParams(c)
	if !ok {
		return
	}

	vehicles, err := catalogService().ListVehicles(c.Request.Context(), skip, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, vehicles)
}

// GetVehicle handles GET /api/v1/vehicles/:id
func GetVehicle(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	vehicle, err := catalogService().GetVehicle(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, vehicle)
}

// UpdateVehicle handles PUT /api/v1/vehicles/:id
func UpdateVehicle(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req VehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	vehicle, err := catalogService().UpdateVehicle(c.Request.Context(), id, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, vehicle)
}

// DeleteVehicle handles DELETE /api/v1/vehicles/:id
func DeleteVehicle(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := catalogService().DeleteVehicle(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondDeleted(c, "Vehicle deleted")
}

package controllers

import (
	"net/http"

	"github.com/autoservice-manager/workshop-api/services"
	"github.com/gin-gonic/gin"
)

// CustomerRequest represents the request body for creating or replacing a customer
type CustomerRequest struct {
	Name    string  `json:"name" binding:"required"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email" binding:"omitempty,email"`
	Address *string `json:"address"`
}

func (r CustomerRequest) input() services.CustomerInput {
	return services.CustomerInput{Name: r.Name, Phone: r.Phone, Email: r.Email, Address: r.Address}
}

// CreateCustomer handles POST /api/v1/customers
func CreateCustomer(c *gin.Context) {
	var req CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	customer, err := catalogService().CreateCustomer(c.Request.Context(), req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, customer)
}

// ListCustomers handles GET /api/v1/customers
func ListCustomers(c *gin.Context) {
	skip, limit, ok := pageParams(c)
	if !ok {
		return
	}

	customers, err := catalogService().ListCustomers(c.Request.Context(), skip, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, customers)
}

// GetCustomer handles GET /api/v1/customers/:id
func GetCustomer(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	customer, err := catalogService().GetCustomer(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, customer)
}

// UpdateCustomer handles PUT /api/v1/customers/:id
func UpdateCustomer(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	customer, err := catalogService().UpdateCustomer(c.Request.Context(), id, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, customer)
}

// DeleteCustomer handles DELETE /api/v1/customers/:id
func DeleteCustomer(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := catalogService().DeleteCustomer(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondDeleted(c, "Customer deleted")
}

// ListCustomerVehicles handles GET /api/v1/customers/:id/vehicles
func ListCustomerVehicles(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	vehicles, err := catalogService().CustomerVehicles(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, vehicles)
}

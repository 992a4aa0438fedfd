package services

import (
	"errors"
	"fmt"

	"github.com/autoservice-manager/workshop-api/models"
	"github.com/autoservice-manager/workshop-api/workflow"
	"github.com/shopspring/decimal"
)

// Kind classifies a rejected workshop operation
type Kind string

const (
	KindNotFound          Kind = "NOT_FOUND"
	KindInvalidTransition Kind = "INVALID_TRANSITION"
	KindInsufficientStock Kind = "INSUFFICIENT_STOCK"
	KindInvalidState      Kind = "INVALID_STATE"
	KindValidation        Kind = "VALIDATION_ERROR"
	KindConflict          Kind = "CONFLICT"
)

// Error is returned for every rejected operation. Only the fields relevant
// to the Kind are set.
type Error struct {
	Kind      Kind
	Message   string
	Resource  string
	ID        uint
	OrderID   uint
	PartID    uint
	Requested int
	Available int
	Status    models.OrderStatus
	Event     workflow.EventKind
}

func (e *Error) Error() string {
	return e.Message
}

// Details returns the context fields for API responses
func (e *Error) Details() map[string]interface{} {
	details := make(map[string]interface{})
	if e.Resource != "" {
		details["resource"] = e.Resource
	}
	if e.ID != 0 {
		details["id"] = e.ID
	}
	if e.OrderID != 0 {
		details["order_id"] = e.OrderID
	}
	if e.PartID != 0 {
		details["part_id"] = e.PartID
	}
	if e.Kind == KindInsufficientStock {
		details["requested"] = e.Requested
		details["available"] = e.Available
	}
	if e.Status != "" {
		details["current_status"] = e.Status
	}
	if e.Event != "" {
		details["event"] = e.Event
	}
	return details
}

// IsKind reports whether err is an *Error of the given kind
func IsKind(err error, kind Kind) bool {
	var svcErr *Error
	return errors.As(err, &svcErr) && svcErr.Kind == kind
}

func notFound(resource string, id uint) *Error {
	return &Error{
		Kind:     KindNotFound,
		Message:  fmt.Sprintf("%s %d not found", resource, id),
		Resource: resource,
		ID:       id,
	}
}

func validationError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// validateMoney rejects negative amounts and amounts with more than two
// decimal places, which a decimal(12,2) column would round
func validateMoney(field string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return validationError("%s must not be negative", field)
	}
	if !amount.Equal(amount.Round(2)) {
		return validationError("%s must have at most two decimal places", field)
	}
	return nil
}

func conflict(resource string, id uint, format string, args ...interface{}) *Error {
	return &Error{
		Kind:     KindConflict,
		Message:  fmt.Sprintf(format, args...),
		Resource: resource,
		ID:       id,
	}
}

func insufficientStock(partID uint, requested, available int) *Error {
	return &Error{
		Kind:      KindInsufficientStock,
		Message:   fmt.Sprintf("part %d has %d in stock, %d requested", partID, available, requested),
		Resource:  "part",
		PartID:    partID,
		Requested: requested,
		Available: available,
	}
}

func invalidTransition(orderID uint, from models.OrderStatus, event workflow.EventKind) *Error {
	return &Error{
		Kind:     KindInvalidTransition,
		Message:  fmt.Sprintf("order %d: cannot apply %s in status %s", orderID, event, from),
		Resource: "order",
		OrderID:  orderID,
		Status:   from,
		Event:    event,
	}
}

func invalidState(orderID uint, current models.OrderStatus, action string) *Error {
	return &Error{
		Kind:     KindInvalidState,
		Message:  fmt.Sprintf("order %d: cannot %s in status %s", orderID, action, current),
		Resource: "order",
		OrderID:  orderID,
		Status:   current,
	}
}

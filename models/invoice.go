package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is the cost confirmation issued when an order is finalized.
// DocumentKey is nil until the PDF has been stored.
type Invoice struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	OrderID       uint            `gorm:"not null;uniqueIndex" json:"order_id"`
	InvoiceNumber string          `gorm:"size:50;not null;uniqueIndex" json:"invoice_number"`
	IssueDate     time.Time       `gorm:"not null" json:"issue_date"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	PartsCost     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"parts_cost"`
	Notes         *string         `gorm:"type:text" json:"notes"`
	DocumentKey   *string         `gorm:"size:255" json:"document_key"`
	DocumentURL   *string         `gorm:"-" json:"document_url,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// TableName specifies the table name for the Invoice model
func (Invoice) TableName() string {
	return "invoices"
}

// InvoiceNumberFor builds the invoice number for an order issued at the given time
func InvoiceNumberFor(orderID uint, issued time.Time) string {
	return fmt.Sprintf("INV-%d-%06d", issued.Year(), orderID)
}

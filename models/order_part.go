package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderPart records parts consumed by an order. UnitPrice is copied from the
// catalog when the part is attached and never follows later price changes.
type OrderPart struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	OrderID    uint            `gorm:"not null;index" json:"order_id"`
	PartID     uint            `gorm:"not null;index" json:"part_id"`
	Part       *Part           `gorm:"foreignKey:PartID" json:"part,omitempty"`
	Quantity   int             `gorm:"not null;check:quantity > 0" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	TotalPrice decimal.Decimal `gorm:"-" json:"total_price"`
	CreatedAt  time.Time       `json:"created_at"`
}

// TableName specifies the table name for the OrderPart model
func (OrderPart) TableName() string {
	return "order_parts"
}

// LineTotal returns quantity * unit price
func (op OrderPart) LineTotal() decimal.Decimal {
	return op.UnitPrice.Mul(decimal.NewFromInt(int64(op.Quantity)))
}

// AfterFind fills the computed total price
func (op *OrderPart) AfterFind(tx *gorm.DB) error {
	op.TotalPrice = op.LineTotal()
	return nil
}

// AfterCreate fills the computed total price
func (op *OrderPart) AfterCreate(tx *gorm.DB) error {
	op.TotalPrice = op.LineTotal()
	return nil
}

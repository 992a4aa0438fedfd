package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Part is a catalog item held in physical inventory.
// StockQuantity is only changed through the parts ledger.
type Part struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Code          string          `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Name          string          `gorm:"size:100;not null" json:"name"`
	Description   *string         `gorm:"type:text" json:"description"`
	Price         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	StockQuantity int             `gorm:"not null;default:0;check:stock_quantity >= 0" json:"stock_quantity"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Part model
func (Part) TableName() string {
	return "parts"
}

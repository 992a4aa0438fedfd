package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Priority of a repair order
type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Valid reports whether p is a known priority
func (p Priority) Valid() bool {
	switch p {
	case PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// OrderStatus is the lifecycle state of a repair order
type OrderStatus string

const (
	StatusNew             OrderStatus = "new"
	StatusInProgress      OrderStatus = "in_progress"
	StatusWaitingForParts OrderStatus = "waiting_for_parts"
	StatusCompleted       OrderStatus = "completed"
	StatusInvoiced        OrderStatus = "invoiced"
)

// AllStatuses lists every order status in lifecycle order
var AllStatuses = []OrderStatus{
	StatusNew,
	StatusInProgress,
	StatusWaitingForParts,
	StatusCompleted,
	StatusInvoiced,
}

// Valid reports whether s is a known status
func (s OrderStatus) Valid() bool {
	for _, status := range AllStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func (s OrderStatus) String() string {
	return string(s)
}

// PriorityOrderSQL sorts urgent orders first, then high, then normal
const PriorityOrderSQL = "CASE priority WHEN 'urgent' THEN 3 WHEN 'high' THEN 2 ELSE 1 END DESC"

// Order represents a repair order for one vehicle.
// WorkStationID is only set while the order is in progress.
// FinalCost is only set once the order is invoiced.
type Order struct {
	ID            uint                `gorm:"primaryKey" json:"id"`
	CustomerID    uint                `gorm:"not null;index" json:"customer_id"`
	Customer      *Customer           `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	VehicleID     uint                `gorm:"not null;index" json:"vehicle_id"`
	Vehicle       *Vehicle            `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
	WorkStationID *int                `gorm:"index" json:"work_station_id"`
	Description   string              `gorm:"type:text;not null" json:"description"`
	Priority      Priority            `gorm:"size:16;not null;default:'normal'" json:"priority"`
	Status        OrderStatus         `gorm:"size:32;not null;default:'new';index" json:"status"`
	EstimatedCost decimal.Decimal     `gorm:"type:decimal(12,2);not null;default:0" json:"estimated_cost"`
	FinalCost     decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"final_cost"`
	CreatedAt     time.Time           `json:"created_at"`
	StartedAt     *time.Time          `json:"started_at"`
	CompletedAt   *time.Time          `json:"completed_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
	DeletedAt     gorm.DeletedAt      `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// AllModels lists every model in migration order
func AllModels() []interface{} {
	return []interface{}{
		&Customer{},
		&Vehicle{},
		&Part{},
		&Order{},
		&OrderPart{},
		&Invoice{},
	}
}

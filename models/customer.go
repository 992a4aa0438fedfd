package models

import (
	"time"

	"gorm.io/gorm"
)

// Customer represents a workshop client who owns vehicles and places orders
type Customer struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"size:100;not null" json:"name"`
	Phone     *string        `gorm:"size:20" json:"phone"`
	Email     *string        `gorm:"size:100" json:"email"`
	Address   *string        `gorm:"size:200" json:"address"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Customer model
func (Customer) TableName() string {
	return "customers"
}

package models

import (
	"time"

	"gorm.io/gorm"
)

// Vehicle belongs to exactly one customer
type Vehicle struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	CustomerID         uint           `gorm:"not null;index" json:"customer_id"`
	Owner              *Customer      `gorm:"foreignKey:CustomerID" json:"owner,omitempty"`
	Brand              string         `gorm:"size:50;not null" json:"brand"`
	Model              string         `gorm:"size:50;not null" json:"model"`
	Year               *int           `json:"year"`
	RegistrationNumber string         `gorm:"size:20;uniqueIndex;not null" json:"registration_number"`
	VIN                *string        `gorm:"column:vin;size:17;uniqueIndex" json:"vin"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Vehicle model
func (Vehicle) TableName() string {
	return "vehicles"
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Dish is a menu item
type Dish struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	Name       string          `gorm:"size:255;not null" json:"name"`
	Price      decimal.Decimal `gorm:"type:decimal(10,2);not null;check:price >= 0" json:"price"`
	ImageS3Key *string         `json:"-"` // nullable, set when a photo is uploaded
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// TableName specifies the table name for the Dish model
func (Dish) TableName() string {
	return "dishes"
}

// BeforeSave rejects invalid dishes before they reach the database
func (d *Dish) BeforeSave(tx *gorm.DB) error {
	return ValidateDish(d)
}

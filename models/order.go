package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order is a table's order. Its total price is derived from the line items.
type Order struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	TableNumber uint        `gorm:"not null;uniqueIndex" json:"table_number"`
	Status      OrderStatus `gorm:"size:10;not null;default:'waiting'" json:"status"`
	OrderItems  []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"order_items"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// BeforeSave rejects orders with a missing table number or an unknown status
func (o *Order) BeforeSave(tx *gorm.DB) error {
	return ValidateOrder(o)
}

// TotalPrice sums price x quantity over the loaded line items.
// Items must be loaded together with their dish.
func (o Order) TotalPrice() decimal.Decimal {
	return SumLineItems(o.OrderItems)
}

// SumLineItems sums price x quantity; items without a loaded dish count as zero
func SumLineItems(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}

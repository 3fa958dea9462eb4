package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderItem is a line item: a quantity of one dish within one order.
// A dish appears at most once per order.
type OrderItem struct {
	ID       uint  `gorm:"primaryKey" json:"id"`
	OrderID  uint  `gorm:"not null;uniqueIndex:idx_order_items_order_dish" json:"order_id"`
	DishID   uint  `gorm:"not null;uniqueIndex:idx_order_items_order_dish" json:"dish"`
	Dish     *Dish `gorm:"foreignKey:DishID;constraint:OnDelete:CASCADE" json:"-"`
	Quantity int   `gorm:"not null;default:1;check:quantity >= 1" json:"quantity"`
}

// TableName specifies the table name for the OrderItem model
func (OrderItem) TableName() string {
	return "order_items"
}

// BeforeSave rejects items without a dish or with quantity below one
func (i *OrderItem) BeforeSave(tx *gorm.DB) error {
	return ValidateOrderItem(i)
}

// LineTotal is the dish price times the quantity
func (i OrderItem) LineTotal() decimal.Decimal {
	if i.Dish == nil {
		return decimal.Zero
	}
	return i.Dish.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

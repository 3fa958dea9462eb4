package testutil

import (
	"os"
	"testing"

	"github.com/kendall-kelly/cafe-orders-api/config"
	"github.com/kendall-kelly/cafe-orders-api/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RequireTestEnvironment ensures that tests are running in the test environment.
// This prevents accidental execution of tests against production or development databases.
// It will fail the test immediately if GO_ENV is not set to "test".
func RequireTestEnvironment(t *testing.T) {
	t.Helper()

	env := os.Getenv("GO_ENV")
	if env != "test" {
		t.Fatalf("SAFETY CHECK FAILED: Tests must run with GO_ENV=test to prevent data loss. Current GO_ENV=%q. Set GO_ENV=test before running tests.", env)
	}
}

// NewTestDB opens a migrated in-memory SQLite database with foreign keys enabled.
// A single connection keeps every query on the same in-memory database.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := config.OpenDatabase(":memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get test database handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := config.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

// CreateDish inserts a dish with the given decimal price
func CreateDish(t *testing.T, db *gorm.DB, name, price string) *models.Dish {
	t.Helper()

	dish := &models.Dish{Name: name, Price: decimal.RequireFromString(price)}
	if err := db.Create(dish).Error; err != nil {
		t.Fatalf("Failed to create dish %q: %v", name, err)
	}
	return dish
}

// CreateOrder inserts an order with one item per dish, each with the matching quantity
func CreateOrder(t *testing.T, db *gorm.DB, tableNumber uint, status models.OrderStatus, items map[*models.Dish]int) *models.Order {
	t.Helper()

	order := &models.Order{TableNumber: tableNumber, Status: status}
	if err := db.Omit("OrderItems").Create(order).Error; err != nil {
		t.Fatalf("Failed to create order for table %d: %v", tableNumber, err)
	}
	for dish, quantity := range items {
		item := &models.OrderItem{OrderID: order.ID, DishID: dish.ID, Quantity: quantity}
		if err := db.Omit("Dish").Create(item).Error; err != nil {
			t.Fatalf("Failed to create order item: %v", err)
		}
	}
	return order
}

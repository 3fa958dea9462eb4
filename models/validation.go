package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// PriceDecimalPlaces is the number of fractional digits stored for prices
	PriceDecimalPlaces = 2
	// PriceMaxDigits is the total number of digits a price column holds
	PriceMaxDigits = 10
)

var maxPrice = decimal.New(1, PriceMaxDigits-PriceDecimalPlaces)

// FieldError describes one invalid field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every invalid field of a write request.
// Nothing is persisted when a ValidationError is returned.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records an error for field
func (e *ValidationError) Add(field, message string) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: message})
}

// Merge appends all errors of other
func (e *ValidationError) Merge(other *ValidationError) {
	if other == nil {
		return
	}
	e.Errors = append(e.Errors, other.Errors...)
}

// HasErrors reports whether any field failed
func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Errors) > 0
}

// Fields returns the errors keyed by field name. The first message per field wins.
func (e *ValidationError) Fields() map[string]string {
	fields := make(map[string]string, len(e.Errors))
	for _, fe := range e.Errors {
		if _, exists := fields[fe.Field]; !exists {
			fields[fe.Field] = fe.Message
		}
	}
	return fields
}

// Err returns e as an error, or nil when there is nothing to report
func (e *ValidationError) Err() error {
	if !e.HasErrors() {
		return nil
	}
	return e
}

// ItemField names a field of the i-th line item in a submitted batch
func ItemField(i int, name string) string {
	return fmt.Sprintf("order_items[%d].%s", i, name)
}

// ValidateDish requires a non-empty name and a price >= 0 with at most two decimals
func ValidateDish(d *Dish) error {
	ve := &ValidationError{}
	if strings.TrimSpace(d.Name) == "" {
		ve.Add("name", "This field is required.")
	} else if len([]rune(d.Name)) > 255 {
		ve.Add("name", "Ensure this field has no more than 255 characters.")
	}
	ve.Merge(validatePrice(d.Price))
	return ve.Err()
}

func validatePrice(price decimal.Decimal) *ValidationError {
	ve := &ValidationError{}
	switch {
	case price.IsNegative():
		ve.Add("price", "Price cannot be negative.")
	case !price.Equal(price.Truncate(PriceDecimalPlaces)):
		ve.Add("price", fmt.Sprintf("Ensure that there are no more than %d decimal places.", PriceDecimalPlaces))
	case price.GreaterThanOrEqual(maxPrice):
		ve.Add("price", fmt.Sprintf("Ensure that there are no more than %d digits in total.", PriceMaxDigits))
	}
	return ve
}

// ValidateOrder checks the order's own fields. Table number uniqueness needs the
// database and is checked by the order service.
func ValidateOrder(o *Order) error {
	ve := &ValidationError{}
	if o.TableNumber == 0 {
		ve.Add("table_number", "A positive table number is required.")
	}
	if !o.Status.IsValid() {
		ve.Add("status", fmt.Sprintf("%q is not a valid choice.", string(o.Status)))
	}
	return ve.Err()
}

// ValidateOrderItem checks a single line item's own fields
func ValidateOrderItem(item *OrderItem) error {
	ve := &ValidationError{}
	if item.DishID == 0 {
		ve.Add("dish", "This field is required.")
	}
	if item.Quantity < 1 {
		ve.Add("quantity", "Ensure this value is greater than or equal to 1.")
	}
	return ve.Err()
}

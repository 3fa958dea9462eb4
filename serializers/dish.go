package serializers

import (
	"strings"

	"github.com/kendall-kelly/cafe-orders-api/models"
	"github.com/kendall-kelly/cafe-orders-api/services"
	"github.com/shopspring/decimal"
)

// DishRequest is the JSON body of dish create and replace.
// Price accepts both a JSON number and a decimal string.
type DishRequest struct {
	Name  *string          `json:"name" binding:"required"`
	Price *decimal.Decimal `json:"price" binding:"required"`
}

// DishPatchRequest is the JSON body of a partial dish update
type DishPatchRequest struct {
	Name  *string          `json:"name"`
	Price *decimal.Decimal `json:"price"`
}

// DishResponse is the public representation of a dish
type DishResponse struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	ImageURL string `json:"image_url,omitempty"`
}

// NewDishResponse renders a dish; imageURL is empty when the dish has no photo
func NewDishResponse(dish *models.Dish, imageURL string) DishResponse {
	return DishResponse{
		ID:       dish.ID,
		Name:     dish.Name,
		Price:    FormatMoney(dish.Price),
		ImageURL: imageURL,
	}
}

// FormatMoney renders an amount with exactly two fractional digits
func FormatMoney(amount decimal.Decimal) string {
	return amount.StringFixed(models.PriceDecimalPlaces)
}

// ToInput converts a create or replace request that already passed binding.
// A blank name is left to dish validation.
func (r DishRequest) ToInput() services.DishInput {
	var in services.DishInput
	if r.Name != nil {
		in.Name = strings.TrimSpace(*r.Name)
	}
	if r.Price != nil {
		in.Price = *r.Price
	}
	return in
}

// ToPatch converts a partial update request; absent fields stay unchanged
func (r DishPatchRequest) ToPatch() services.DishPatch {
	patch := services.DishPatch{Price: r.Price}
	if r.Name != nil {
		name := strings.TrimSpace(*r.Name)
		patch.Name = &name
	}
	return patch
}

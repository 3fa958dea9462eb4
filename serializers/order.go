package serializers

import (
	"encoding/json"
	"fmt"

	"github.com/kendall-kelly/cafe-orders-api/models"
	"github.com/kendall-kelly/cafe-orders-api/services"
	"github.com/shopspring/decimal"
)

// OrderItemRequest is one line item of an order payload. Quantity defaults to 1.
type OrderItemRequest struct {
	Dish     *uint `json:"dish" binding:"required"`
	Quantity *int  `json:"quantity" binding:"omitempty,min=1"`
}

// OrderCreateRequest is the JSON body of POST /api/orders/create
type OrderCreateRequest struct {
	TableNumber *int               `json:"table_number" binding:"required,min=1"`
	Status      *string            `json:"status"`
	OrderItems  []OrderItemRequest `json:"order_items" binding:"omitempty,dive"`
}

// OrderUpdateRequest is the JSON body of PATCH /api/orders/{id}/update.
// A present order_items array replaces all items of the order.
type OrderUpdateRequest struct {
	TableNumber *int                `json:"table_number" binding:"omitempty,min=1"`
	Status      *string             `json:"status"`
	OrderItems  *[]OrderItemRequest `json:"order_items" binding:"omitempty,dive"`
}

// OrderItemQuantityRequest is the JSON body of an item quantity change
type OrderItemQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required,min=1"`
}

// OrderItemResponse is one line item inside an order representation
type OrderItemResponse struct {
	ID       uint `json:"id"`
	Dish     uint `json:"dish"`
	Quantity int  `json:"quantity"`
}

// OrderResponse is the public representation of an order
type OrderResponse struct {
	ID          uint                `json:"id"`
	TableNumber uint                `json:"table_number"`
	Status      models.OrderStatus  `json:"status"`
	TotalPrice  string              `json:"total_price"`
	OrderItems  []OrderItemResponse `json:"order_items"`
}

// TotalRevenueResponse is the body of GET /api/orders/total. The sum is a JSON
// number with two fractional digits.
type TotalRevenueResponse struct {
	TotalSum json.Number `json:"total_sum"`
}

// NewTotalRevenueResponse renders the revenue of the paid orders
func NewTotalRevenueResponse(total decimal.Decimal) TotalRevenueResponse {
	return TotalRevenueResponse{TotalSum: json.Number(FormatMoney(total))}
}

// NewOrderResponse renders an order loaded with its items and their dishes
func NewOrderResponse(order *models.Order) OrderResponse {
	resp := OrderResponse{
		ID:          order.ID,
		TableNumber: order.TableNumber,
		Status:      order.Status,
		TotalPrice:  FormatMoney(order.TotalPrice()),
		OrderItems:  make([]OrderItemResponse, 0, len(order.OrderItems)),
	}
	for _, item := range order.OrderItems {
		resp.OrderItems = append(resp.OrderItems, NewOrderItemResponse(&item))
	}
	return resp
}

// NewOrderItemResponse renders a single line item
func NewOrderItemResponse(item *models.OrderItem) OrderItemResponse {
	return OrderItemResponse{ID: item.ID, Dish: item.DishID, Quantity: item.Quantity}
}

// NewOrderListResponse renders a list of orders, never null
func NewOrderListResponse(orders []models.Order) []OrderResponse {
	list := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		list = append(list, NewOrderResponse(&orders[i]))
	}
	return list
}

// ToInput converts a create request that already passed binding. Only the
// status needs checking here since it is matched case-insensitively.
func (r OrderCreateRequest) ToInput() (services.OrderInput, error) {
	ve := &models.ValidationError{}
	in := services.OrderInput{Items: itemInputs(r.OrderItems)}

	if r.TableNumber != nil {
		in.TableNumber = uint(*r.TableNumber)
	}
	if r.Status != nil {
		if status, ok := parseStatus(*r.Status, ve); ok {
			in.Status = status
		}
	}
	return in, ve.Err()
}

// ToPatch converts a partial update request
func (r OrderUpdateRequest) ToPatch() (services.OrderPatch, error) {
	ve := &models.ValidationError{}
	var patch services.OrderPatch

	if r.TableNumber != nil {
		table := uint(*r.TableNumber)
		patch.TableNumber = &table
	}
	if r.Status != nil {
		if status, ok := parseStatus(*r.Status, ve); ok {
			patch.Status = &status
		}
	}
	if r.OrderItems != nil {
		patch.ReplaceItems = true
		patch.Items = itemInputs(*r.OrderItems)
	}
	return patch, ve.Err()
}

// ToInput converts a single line item request for adding to an order
func (r OrderItemRequest) ToInput() services.OrderItemInput {
	in := services.OrderItemInput{Quantity: 1}
	if r.Dish != nil {
		in.DishID = *r.Dish
	}
	if r.Quantity != nil {
		in.Quantity = *r.Quantity
	}
	return in
}

func parseStatus(raw string, ve *models.ValidationError) (models.OrderStatus, bool) {
	status, ok := models.ParseOrderStatus(raw)
	if !ok {
		ve.Add("status", fmt.Sprintf("%q is not a valid choice.", raw))
	}
	return status, ok
}

func itemInputs(items []OrderItemRequest) []services.OrderItemInput {
	inputs := make([]services.OrderItemInput, 0, len(items))
	for _, item := range items {
		inputs = append(inputs, item.ToInput())
	}
	return inputs
}

package serializers

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/kendall-kelly/cafe-orders-api/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var ve *models.ValidationError
	require.True(t, errors.As(err, &ve), "expected validation error, got %v", err)
	return ve.Fields()
}

// bind decodes body and runs the binding tags the way gin does for a request
func bind(t *testing.T, body string, req interface{}) error {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(body), req), body)
	return binding.Validator.ValidateStruct(req)
}

func bindingFields(t *testing.T, err error) map[string]string {
	t.Helper()
	ve, ok := BindingErrors(err)
	require.True(t, ok, "expected binding errors, got %v", err)
	return ve.Fields()
}

func TestDishRequest_AcceptsNumberAndString(t *testing.T) {
	for _, body := range []string{`{"name":" Борщ ","price":10}`, `{"name":"Борщ","price":"10.00"}`} {
		var req DishRequest
		require.NoError(t, bind(t, body, &req))

		in := req.ToInput()
		assert.Equal(t, "Борщ", in.Name)
		assert.True(t, decimal.NewFromInt(10).Equal(in.Price), body)
	}
}

func TestDishRequest_RequiresFields(t *testing.T) {
	var req DishRequest
	fields := bindingFields(t, bind(t, `{}`, &req))

	assert.Equal(t, "This field is required.", fields["name"])
	assert.Equal(t, "This field is required.", fields["price"])
}

func TestDishPatchRequest_ToPatch(t *testing.T) {
	var req DishPatchRequest
	require.NoError(t, bind(t, `{"name":" Чай "}`, &req))

	patch := req.ToPatch()
	require.NotNil(t, patch.Name)
	assert.Equal(t, "Чай", *patch.Name)
	assert.Nil(t, patch.Price)
}

func TestNewDishResponse(t *testing.T) {
	dish := &models.Dish{ID: 4, Name: "Борщ", Price: decimal.NewFromInt(10)}

	body, err := json.Marshal(NewDishResponse(dish, ""))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":4,"name":"Борщ","price":"10.00"}`, string(body))

	withPhoto := NewDishResponse(dish, "https://example.com/borscht.png")
	assert.Equal(t, "https://example.com/borscht.png", withPhoto.ImageURL)
}

func TestOrderCreateRequest_ToInput(t *testing.T) {
	var req OrderCreateRequest
	require.NoError(t, bind(t, `{"table_number":3,"order_items":[{"dish":1,"quantity":2},{"dish":2}]}`, &req))

	in, err := req.ToInput()
	require.NoError(t, err)
	assert.Equal(t, uint(3), in.TableNumber)
	assert.Empty(t, in.Status)
	require.Len(t, in.Items, 2)
	assert.Equal(t, 2, in.Items[0].Quantity)
	assert.Equal(t, 1, in.Items[1].Quantity, "quantity defaults to 1")
}

func TestOrderCreateRequest_BindingErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		field   string
		message string
	}{
		{"missing table number", `{"order_items":[]}`, "table_number", "This field is required."},
		{"zero table number", `{"table_number":0}`, "table_number", "Ensure this value is greater than or equal to 1."},
		{"negative table number", `{"table_number":-4}`, "table_number", "Ensure this value is greater than or equal to 1."},
		{"item without dish", `{"table_number":1,"order_items":[{"quantity":2}]}`, "order_items[0].dish", "This field is required."},
		{"zero quantity", `{"table_number":1,"order_items":[{"dish":1},{"dish":2,"quantity":0}]}`, "order_items[1].quantity", "Ensure this value is greater than or equal to 1."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req OrderCreateRequest
			fields := bindingFields(t, bind(t, tt.body, &req))
			assert.Equal(t, tt.message, fields[tt.field], "fields: %v", fields)
		})
	}
}

func TestOrderCreateRequest_InvalidStatus(t *testing.T) {
	var req OrderCreateRequest
	require.NoError(t, bind(t, `{"table_number":1,"status":"Cooking"}`, &req))

	_, err := req.ToInput()
	assert.Contains(t, fieldsOf(t, err), "status")
}

func TestOrderCreateRequest_StatusIsCaseInsensitive(t *testing.T) {
	table := 1
	status := "PAID"
	in, err := OrderCreateRequest{TableNumber: &table, Status: &status}.ToInput()
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, in.Status)
}

func TestOrderUpdateRequest_ToPatch(t *testing.T) {
	var req OrderUpdateRequest
	require.NoError(t, bind(t, `{"status":"ready"}`, &req))
	patch, err := req.ToPatch()
	require.NoError(t, err)
	require.NotNil(t, patch.Status)
	assert.Equal(t, models.StatusReady, *patch.Status)
	assert.Nil(t, patch.TableNumber)
	assert.False(t, patch.ReplaceItems, "absent order_items leaves items alone")

	req = OrderUpdateRequest{}
	require.NoError(t, bind(t, `{"order_items":[]}`, &req))
	patch, err = req.ToPatch()
	require.NoError(t, err)
	assert.True(t, patch.ReplaceItems, "an empty array clears the items")
	assert.Empty(t, patch.Items)
}

func TestOrderUpdateRequest_BindingErrors(t *testing.T) {
	var req OrderUpdateRequest
	fields := bindingFields(t, bind(t, `{"table_number":0,"order_items":[{"quantity":1}]}`, &req))

	assert.Contains(t, fields, "table_number")
	assert.Contains(t, fields, "order_items[0].dish")
}

func TestOrderUpdateRequest_InvalidStatus(t *testing.T) {
	status := "cooking"
	_, err := OrderUpdateRequest{Status: &status}.ToPatch()
	assert.Contains(t, fieldsOf(t, err), "status")
}

func TestOrderItemRequest(t *testing.T) {
	var req OrderItemRequest
	assert.Contains(t, bindingFields(t, bind(t, `{}`, &req)), "dish")

	req = OrderItemRequest{}
	require.NoError(t, bind(t, `{"dish":2}`, &req))
	assert.Equal(t, 1, req.ToInput().Quantity, "quantity defaults to 1")
}

func TestOrderItemQuantityRequest(t *testing.T) {
	var req OrderItemQuantityRequest
	assert.Contains(t, bindingFields(t, bind(t, `{}`, &req)), "quantity")

	req = OrderItemQuantityRequest{}
	assert.Contains(t, bindingFields(t, bind(t, `{"quantity":0}`, &req)), "quantity")
}

func TestBindingErrors_IgnoresOtherErrors(t *testing.T) {
	_, ok := BindingErrors(errors.New("unexpected EOF"))
	assert.False(t, ok)
}

func TestNewTotalRevenueResponse(t *testing.T) {
	body, err := json.Marshal(NewTotalRevenueResponse(decimal.RequireFromString("60.27")))
	require.NoError(t, err)
	assert.Equal(t, `{"total_sum":60.27}`, string(body))

	body, err = json.Marshal(NewTotalRevenueResponse(decimal.Zero))
	require.NoError(t, err)
	assert.Equal(t, `{"total_sum":0.00}`, string(body))
}

func TestNewOrderResponse(t *testing.T) {
	dish := &models.Dish{ID: 1, Name: "Борщ", Price: decimal.RequireFromString("10.00")}
	order := &models.Order{
		ID:          9,
		TableNumber: 1,
		Status:      models.StatusWaiting,
		OrderItems:  []models.OrderItem{{ID: 3, OrderID: 9, DishID: 1, Dish: dish, Quantity: 2}},
	}

	body, err := json.Marshal(NewOrderResponse(order))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": 9,
		"table_number": 1,
		"status": "waiting",
		"total_price": "20.00",
		"order_items": [{"id": 3, "dish": 1, "quantity": 2}]
	}`, string(body))
}

func TestNewOrderListResponse_Empty(t *testing.T) {
	body, err := json.Marshal(NewOrderListResponse(nil))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(body))
}

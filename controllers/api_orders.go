package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/cafe-orders-api/config"
	"github.com/kendall-kelly/cafe-orders-api/serializers"
	"github.com/kendall-kelly/cafe-orders-api/services"
)

func orderService() *services.OrderService {
	return services.NewOrderService(config.GetDB())
}

// ListOrders handles GET /api/orders/ - lists orders newest first.
// The optional search parameter matches a table number or status substring.
func ListOrders(c *gin.Context) {
	orders, err := orderService().List(c.Request.Context(), services.OrderFilter{Search: c.Query("search")})
	if err != nil {
		respondServiceError(c, err, "retrieve orders")
		return
	}
	c.JSON(http.StatusOK, serializers.NewOrderListResponse(orders))
}

// GetOrder handles GET /api/orders/:id/ - retrieves one order with its items
func GetOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "order")
	if !ok {
		return
	}

	order, err := orderService().Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "retrieve order")
		return
	}
	c.JSON(http.StatusOK, serializers.NewOrderResponse(order))
}

// CreateOrder handles POST /api/orders/create - creates an order together with its items
func CreateOrder(c *gin.Context) {
	var req serializers.OrderCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	in, err := req.ToInput()
	if err != nil {
		respondServiceError(c, err, "create order")
		return
	}

	order, err := orderService().Create(c.Request.Context(), in)
	if err != nil {
		respondServiceError(c, err, "create order")
		return
	}
	c.JSON(http.StatusCreated, serializers.NewOrderResponse(order))
}

// FilterOrdersByStatus handles GET /api/orders/status/:status. Unknown statuses
// produce an empty list.
func FilterOrdersByStatus(c *gin.Context) {
	orders, err := orderService().ListByStatus(c.Request.Context(), c.Param("status"))
	if err != nil {
		respondServiceError(c, err, "retrieve orders")
		return
	}
	c.JSON(http.StatusOK, serializers.NewOrderListResponse(orders))
}

// UpdateOrder handles PATCH /api/orders/:id/update - partially updates an order.
// A present order_items array replaces every item of the order.
func UpdateOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "order")
	if !ok {
		return
	}

	var req serializers.OrderUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	patch, err := req.ToPatch()
	if err != nil {
		respondServiceError(c, err, "update order")
		return
	}

	order, err := orderService().Update(c.Request.Context(), id, patch)
	if err != nil {
		respondServiceError(c, err, "update order")
		return
	}
	c.JSON(http.StatusOK, serializers.NewOrderResponse(order))
}

// DeleteOrder handles DELETE /api/orders/:id/delete
func DeleteOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "order")
	if !ok {
		return
	}

	if err := orderService().Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "delete order")
		return
	}
	c.Status(http.StatusNoContent)
}

// TotalRevenue handles GET /api/orders/total - the revenue of all paid orders
func TotalRevenue(c *gin.Context) {
	total, err := orderService().TotalRevenue(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "compute total revenue")
		return
	}
	c.JSON(http.StatusOK, serializers.NewTotalRevenueResponse(total))
}

// AddOrderItem handles POST /api/orders/:id/items - adds a dish to an existing order
func AddOrderItem(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "order")
	if !ok {
		return
	}

	var req serializers.OrderItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	item, err := orderService().AddItem(c.Request.Context(), id, req.ToInput())
	if err != nil {
		respondServiceError(c, err, "add order item")
		return
	}
	c.JSON(http.StatusCreated, serializers.NewOrderItemResponse(item))
}

// UpdateOrderItem handles PATCH /api/orders/:id/items/:item_id - changes an item's quantity
func UpdateOrderItem(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id", "order")
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "item_id", "order item")
	if !ok {
		return
	}

	var req serializers.OrderItemQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	item, err := orderService().UpdateItemQuantity(c.Request.Context(), orderID, itemID, *req.Quantity)
	if err != nil {
		respondServiceError(c, err, "update order item")
		return
	}
	c.JSON(http.StatusOK, serializers.NewOrderItemResponse(item))
}

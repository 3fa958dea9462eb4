package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/cafe-orders-api/models"
	"github.com/kendall-kelly/cafe-orders-api/services"
	"github.com/kendall-kelly/cafe-orders-api/utils"
)

// OrderListPage handles GET / - orders newest first, filtered by q and paginated
func OrderListPage(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	page, err := orderService().ListPage(c.Request.Context(), services.OrderFilter{Query: query},
		utils.ParsePage(c.Query("page")), pageSize())
	if err != nil {
		renderServerError(c, err, "list orders")
		return
	}

	c.HTML(http.StatusOK, "order_list.html", gin.H{
		"Title":  "Заказы",
		"Query":  query,
		"Orders": page.Items,
		"Pager":  newPager(page, query),
	})
}

// OrderDetailPage handles GET /order/:id/
func OrderDetailPage(c *gin.Context) {
	id, ok := lookupID(c, "order")
	if !ok {
		return
	}

	order, err := orderService().Get(c.Request.Context(), id)
	if err != nil {
		renderLookupError(c, err, "load order")
		return
	}
	c.HTML(http.StatusOK, "order_detail.html", gin.H{
		"Title": fmt.Sprintf("Заказ №%d", order.ID),
		"Order": order,
	})
}

// NewOrderPage handles GET /new_order - an empty order form
func NewOrderPage(c *gin.Context) {
	renderOrderForm(c, http.StatusOK, "Новый заказ", "/new_order", false, newOrderForm())
}

// CreateOrderPage handles POST /new_order. The order and all its items are
// validated together; on any error nothing is stored and the form is shown again.
func CreateOrderPage(c *gin.Context) {
	form := parseOrderForm(c, false, orderFormRows)
	if !form.valid() {
		renderOrderForm(c, http.StatusOK, "Новый заказ", "/new_order", false, form)
		return
	}

	_, err := orderService().Create(c.Request.Context(), services.OrderInput{
		TableNumber: form.tableNumber,
		Items:       form.items,
	})
	if err != nil {
		if fields, ok := formErrors(err); ok {
			form.applyErrors(fields)
			renderOrderForm(c, http.StatusOK, "Новый заказ", "/new_order", false, form)
			return
		}
		renderServerError(c, err, "create order")
		return
	}
	c.Redirect(http.StatusFound, "/")
}

// EditOrderPage handles GET /:id/order_update - the order form prefilled with its items
func EditOrderPage(c *gin.Context) {
	id, ok := lookupID(c, "order")
	if !ok {
		return
	}

	order, err := orderService().Get(c.Request.Context(), id)
	if err != nil {
		renderLookupError(c, err, "load order")
		return
	}
	renderOrderForm(c, http.StatusOK, fmt.Sprintf("Заказ №%d", order.ID), orderUpdatePath(order.ID), true, orderFormFromOrder(order))
}

// UpdateOrderPage handles POST /:id/order_update. The submitted rows replace
// every item of the order; the order and its items commit together or not at all.
func UpdateOrderPage(c *gin.Context) {
	id, ok := lookupID(c, "order")
	if !ok {
		return
	}
	order, err := orderService().Get(c.Request.Context(), id)
	if err != nil {
		renderLookupError(c, err, "load order")
		return
	}

	title := fmt.Sprintf("Заказ №%d", id)
	form := parseOrderForm(c, true, len(order.OrderItems)+orderFormRows)
	if !form.valid() {
		renderOrderForm(c, http.StatusOK, title, orderUpdatePath(id), true, form)
		return
	}

	_, err = orderService().Update(c.Request.Context(), id, services.OrderPatch{
		TableNumber:  &form.tableNumber,
		Status:       &form.status,
		ReplaceItems: true,
		Items:        form.items,
	})
	if err != nil {
		if fields, ok := formErrors(err); ok {
			form.applyErrors(fields)
			renderOrderForm(c, http.StatusOK, title, orderUpdatePath(id), true, form)
			return
		}
		renderLookupError(c, err, "update order")
		return
	}
	c.Redirect(http.StatusFound, "/")
}

// ConfirmDeleteOrderPage handles GET /:id/order_delete
func ConfirmDeleteOrderPage(c *gin.Context) {
	id, ok := lookupID(c, "order")
	if !ok {
		return
	}

	order, err := orderService().Get(c.Request.Context(), id)
	if err != nil {
		renderLookupError(c, err, "load order")
		return
	}
	c.HTML(http.StatusOK, "order_confirm_delete.html", gin.H{
		"Title": "Удаление заказа",
		"Order": order,
	})
}

// DeleteOrderPage handles POST /:id/order_delete
func DeleteOrderPage(c *gin.Context) {
	id, ok := lookupID(c, "order")
	if !ok {
		return
	}

	if err := orderService().Delete(c.Request.Context(), id); err != nil {
		renderLookupError(c, err, "delete order")
		return
	}
	c.Redirect(http.StatusFound, "/")
}

// TotalSumPage handles GET /total_sum - revenue of all paid orders
func TotalSumPage(c *gin.Context) {
	total, err := orderService().TotalRevenue(c.Request.Context())
	if err != nil {
		renderServerError(c, err, "compute total revenue")
		return
	}
	c.HTML(http.StatusOK, "total_sum.html", gin.H{
		"Title":    "Выручка",
		"TotalSum": total,
	})
}

// OrderQRCode handles GET /order/:id/qrcode - a PNG linking to the order's page
func OrderQRCode(c *gin.Context) {
	id, ok := lookupID(c, "order")
	if !ok {
		return
	}
	if _, err := orderService().Get(c.Request.Context(), id); err != nil {
		renderLookupError(c, err, "load order")
		return
	}

	png, err := services.OrderQRCode(publicBaseURL(), id)
	if err != nil {
		renderServerError(c, err, "generate QR code")
		return
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "image/png", png)
}

func orderUpdatePath(id uint) string {
	return fmt.Sprintf("/%d/order_update", id)
}

func renderOrderForm(c *gin.Context, status int, title, action string, withStatus bool, form *orderForm) {
	dishes, err := dishService().List(c.Request.Context())
	if err != nil {
		renderServerError(c, err, "list dishes")
		return
	}
	c.HTML(status, "order_form.html", gin.H{
		"Title":       title,
		"Action":      action,
		"ShowStatus":  withStatus,
		"Statuses":    models.OrderStatuses,
		"Dishes":      dishes,
		"TableNumber": form.TableNumber,
		"Status":      form.Status,
		"Rows":        form.Rows,
		"Errors":      form.Errors,
	})
}

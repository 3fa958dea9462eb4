package controllers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/cafe-orders-api/middleware"
	"github.com/kendall-kelly/cafe-orders-api/models"
	"github.com/kendall-kelly/cafe-orders-api/services"
	"github.com/kendall-kelly/cafe-orders-api/utils"
)

// orderFormRows is the number of blank item rows offered by the order forms
const orderFormRows = 5

// formErrorsKey holds errors not tied to a single input
const formErrorsKey = "__all__"

// itemRow is one dish/quantity row of the order form
type itemRow struct {
	Dish          string
	Quantity      string
	DishError     string
	QuantityError string
}

// orderForm is the submitted or prefilled state of the order form
type orderForm struct {
	TableNumber string
	Status      string
	Rows        []itemRow
	Errors      map[string]string

	tableNumber uint
	status      models.OrderStatus
	items       []services.OrderItemInput
	rowOf       []int // item index -> row index
}

func newOrderForm() *orderForm {
	return &orderForm{
		Status: string(models.StatusWaiting),
		Rows:   make([]itemRow, orderFormRows),
		Errors: map[string]string{},
	}
}

// orderFormFromOrder prefills the form with an order and its items, followed by blank rows
func orderFormFromOrder(order *models.Order) *orderForm {
	form := &orderForm{
		TableNumber: strconv.FormatUint(uint64(order.TableNumber), 10),
		Status:      string(order.Status),
		Errors:      map[string]string{},
	}
	for _, item := range order.OrderItems {
		form.Rows = append(form.Rows, itemRow{
			Dish:     strconv.FormatUint(uint64(item.DishID), 10),
			Quantity: strconv.Itoa(item.Quantity),
		})
	}
	form.Rows = append(form.Rows, make([]itemRow, orderFormRows)...)
	return form
}

// parseOrderForm reads table_number, status and the parallel dish/quantity
// arrays. Rows without a dish are skipped; a missing quantity means 1. At most
// maxRows rows are read, as many as the rendered form offers.
func parseOrderForm(c *gin.Context, withStatus bool, maxRows int) *orderForm {
	form := &orderForm{
		TableNumber: strings.TrimSpace(c.PostForm("table_number")),
		Status:      strings.TrimSpace(c.PostForm("status")),
		Errors:      map[string]string{},
	}

	switch n, err := strconv.Atoi(form.TableNumber); {
	case form.TableNumber == "":
		form.Errors["table_number"] = "This field is required."
	case err != nil:
		form.Errors["table_number"] = "Enter a whole number."
	case n < 1:
		form.Errors["table_number"] = "Ensure this value is greater than or equal to 1."
	default:
		form.tableNumber = uint(n)
	}

	if withStatus {
		status, ok := models.ParseOrderStatus(form.Status)
		if ok {
			form.Status = string(status)
		} else {
			form.Errors["status"] = "Select a valid choice."
		}
		form.status = status
	}

	dishes := c.PostFormArray("dish")
	quantities := c.PostFormArray("quantity")
	if len(dishes) > maxRows {
		form.Errors[formErrorsKey] = fmt.Sprintf("Please submit at most %d items.", maxRows)
		dishes = dishes[:maxRows]
	}
	for i, rawDish := range dishes {
		row := itemRow{Dish: strings.TrimSpace(rawDish)}
		if i < len(quantities) {
			row.Quantity = strings.TrimSpace(quantities[i])
		}
		form.Rows = append(form.Rows, row)
		if row.Dish == "" {
			continue
		}

		in := services.OrderItemInput{Quantity: 1}
		dishID, err := strconv.ParseUint(row.Dish, 10, 64)
		if err != nil {
			form.Rows[i].DishError = "Select a valid choice."
		}
		in.DishID = uint(dishID)
		if row.Quantity != "" {
			if in.Quantity, err = strconv.Atoi(row.Quantity); err != nil {
				form.Rows[i].QuantityError = "Enter a whole number."
			}
		}
		form.items = append(form.items, in)
		form.rowOf = append(form.rowOf, i)
	}
	for len(form.Rows) < orderFormRows {
		form.Rows = append(form.Rows, itemRow{})
	}
	return form
}

// valid reports whether the form parsed without errors
func (f *orderForm) valid() bool {
	if len(f.Errors) > 0 {
		return false
	}
	for _, row := range f.Rows {
		if row.DishError != "" || row.QuantityError != "" {
			return false
		}
	}
	return true
}

// applyErrors places service field errors next to their inputs
func (f *orderForm) applyErrors(fields map[string]string) {
	for key, message := range fields {
		index, name, ok := splitItemField(key)
		if !ok {
			if key == "table_number" || key == "status" {
				f.Errors[key] = message
			} else {
				f.Errors[formErrorsKey] = message
			}
			continue
		}
		if index < 0 || index >= len(f.rowOf) {
			f.Errors[formErrorsKey] = message
			continue
		}
		row := &f.Rows[f.rowOf[index]]
		if name == "quantity" {
			row.QuantityError = message
		} else {
			row.DishError = message
		}
	}
}

// splitItemField splits "order_items[2].dish" into 2 and "dish"
func splitItemField(key string) (int, string, bool) {
	rest, ok := strings.CutPrefix(key, "order_items[")
	if !ok {
		return 0, "", false
	}
	rawIndex, name, ok := strings.Cut(rest, "].")
	if !ok {
		return 0, "", false
	}
	index, err := strconv.Atoi(rawIndex)
	if err != nil {
		return 0, "", false
	}
	return index, name, true
}

// formErrors extracts per-field messages from validation and conflict errors
func formErrors(err error) (map[string]string, bool) {
	var ve *models.ValidationError
	if errors.As(err, &ve) {
		return ve.Fields(), true
	}
	var conflict *services.ConflictError
	if errors.As(err, &conflict) {
		return map[string]string{conflict.Field: conflict.Message}, true
	}
	return nil, false
}

// renderNotFound renders the 404 page
func renderNotFound(c *gin.Context, message string) {
	c.HTML(http.StatusNotFound, "not_found.html", gin.H{
		"Title":   "Не найдено",
		"Message": message,
	})
}

// renderServerError logs err and renders a plain 500 page
func renderServerError(c *gin.Context, err error, action string) {
	requestID, _ := middleware.GetRequestID(c)
	log.Printf("[%s] Failed to %s: %v", requestID, action, err)
	c.String(http.StatusInternalServerError, "Internal Server Error")
}

// renderLookupError renders a 404 page for missing entities and a 500 otherwise
func renderLookupError(c *gin.Context, err error, action string) {
	var notFound *services.NotFoundError
	if errors.As(err, &notFound) {
		renderNotFound(c, capitalize(notFound.Error()))
		return
	}
	renderServerError(c, err, action)
}

// lookupID reads a positive id path parameter, rendering the 404 page when it is malformed
func lookupID(c *gin.Context, resource string) (uint, bool) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		renderNotFound(c, capitalize(resource)+" not found")
	}
	return id, ok
}

// pager is the navigation state of a paginated list page
type pager struct {
	Number         int
	NumPages       int
	HasPrevious    bool
	HasNext        bool
	PreviousNumber int
	NextNumber     int
	Query          string
}

func newPager[T any](page services.Page[T], query string) pager {
	return pager{
		Number:         page.Number,
		NumPages:       page.NumPages(),
		HasPrevious:    page.HasPrevious(),
		HasNext:        page.HasNext(),
		PreviousNumber: page.PreviousNumber(),
		NextNumber:     page.NextNumber(),
		Query:          query,
	}
}

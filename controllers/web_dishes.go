package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/cafe-orders-api/serializers"
	"github.com/kendall-kelly/cafe-orders-api/services"
	"github.com/kendall-kelly/cafe-orders-api/utils"
	"github.com/shopspring/decimal"
)

// dishForm is the submitted or prefilled state of the dish form
type dishForm struct {
	Name   string
	Price  string
	Errors map[string]string

	input services.DishInput
}

func parseDishForm(c *gin.Context) *dishForm {
	form := &dishForm{
		Name:   strings.TrimSpace(c.PostForm("name")),
		Price:  strings.TrimSpace(strings.ReplaceAll(c.PostForm("price"), ",", ".")),
		Errors: map[string]string{},
	}

	if form.Name == "" {
		form.Errors["name"] = "This field is required."
	}
	form.input.Name = form.Name

	if form.Price == "" {
		form.Errors["price"] = "This field is required."
	} else if price, err := decimal.NewFromString(form.Price); err != nil {
		form.Errors["price"] = "Enter a number."
	} else {
		form.input.Price = price
	}
	return form
}

// DishListPage handles GET /dishs/ - dishes newest first, paginated
func DishListPage(c *gin.Context) {
	page, err := dishService().ListPage(c.Request.Context(), utils.ParsePage(c.Query("page")), pageSize())
	if err != nil {
		renderServerError(c, err, "list dishes")
		return
	}
	c.HTML(http.StatusOK, "dish_list.html", gin.H{
		"Title":  "Блюда",
		"Dishes": page.Items,
		"Pager":  newPager(page, ""),
	})
}

// DishDetailPage handles GET /dish/:id/
func DishDetailPage(c *gin.Context) {
	id, ok := lookupID(c, "dish")
	if !ok {
		return
	}

	dish, err := dishService().Get(c.Request.Context(), id)
	if err != nil {
		renderLookupError(c, err, "load dish")
		return
	}
	c.HTML(http.StatusOK, "dish_detail.html", gin.H{
		"Title":    dish.Name,
		"Dish":     dish,
		"ImageURL": dishImageURL(c.Request.Context(), dish),
	})
}

// NewDishPage handles GET /new_dish
func NewDishPage(c *gin.Context) {
	renderDishForm(c, "Новое блюдо", "/new_dish", &dishForm{Errors: map[string]string{}})
}

// CreateDishPage handles POST /new_dish and returns to an empty form for the next dish
func CreateDishPage(c *gin.Context) {
	form := parseDishForm(c)
	if len(form.Errors) > 0 {
		renderDishForm(c, "Новое блюдо", "/new_dish", form)
		return
	}

	if _, err := dishService().Create(c.Request.Context(), form.input); err != nil {
		if fields, ok := formErrors(err); ok {
			form.Errors = fields
			renderDishForm(c, "Новое блюдо", "/new_dish", form)
			return
		}
		renderServerError(c, err, "create dish")
		return
	}
	c.Redirect(http.StatusFound, "/new_dish")
}

// EditDishPage handles GET /:id/dish_update
func EditDishPage(c *gin.Context) {
	id, ok := lookupID(c, "dish")
	if !ok {
		return
	}

	dish, err := dishService().Get(c.Request.Context(), id)
	if err != nil {
		renderLookupError(c, err, "load dish")
		return
	}
	renderDishForm(c, dish.Name, dishUpdatePath(id), &dishForm{
		Name:   dish.Name,
		Price:  serializers.FormatMoney(dish.Price),
		Errors: map[string]string{},
	})
}

// UpdateDishPage handles POST /:id/dish_update
func UpdateDishPage(c *gin.Context) {
	id, ok := lookupID(c, "dish")
	if !ok {
		return
	}

	form := parseDishForm(c)
	if len(form.Errors) > 0 {
		renderDishForm(c, form.Name, dishUpdatePath(id), form)
		return
	}

	patch := services.DishPatch{Name: &form.input.Name, Price: &form.input.Price}
	if _, err := dishService().Update(c.Request.Context(), id, patch); err != nil {
		if fields, ok := formErrors(err); ok {
			form.Errors = fields
			renderDishForm(c, form.Name, dishUpdatePath(id), form)
			return
		}
		renderLookupError(c, err, "update dish")
		return
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("/dish/%d/", id))
}

func dishUpdatePath(id uint) string {
	return fmt.Sprintf("/%d/dish_update", id)
}

func renderDishForm(c *gin.Context, title, action string, form *dishForm) {
	c.HTML(http.StatusOK, "dish_form.html", gin.H{
		"Title":  title,
		"Action": action,
		"Name":   form.Name,
		"Price":  form.Price,
		"Errors": form.Errors,
	})
}

// NotFound renders a JSON 404 for the API and the 404 page for everything else
func NotFound(c *gin.Context) {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Resource not found")
		return
	}
	renderNotFound(c, "Page not found")
}


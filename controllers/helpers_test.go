package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/cafe-orders-api/config"
	"github.com/kendall-kelly/cafe-orders-api/middleware"
	"github.com/kendall-kelly/cafe-orders-api/services"
	"github.com/kendall-kelly/cafe-orders-api/templates"
	"github.com/kendall-kelly/cafe-orders-api/tests/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// setupTestDB installs a fresh in-memory database and a test configuration
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db := testutil.NewTestDB(t)
	config.SetDB(db)
	config.SetConfig(&config.Config{
		GoEnv:          "test",
		PageSize:       config.DefaultPageSize,
		PublicBaseURL:  "http://cafe.test",
		MaxImageSizeMB: 1,
	})
	services.SetDishImageService(nil)
	t.Cleanup(func() {
		config.SetDB(nil)
		config.SetConfig(nil)
		services.SetDishImageService(nil)
	})
	return db
}

// setupTestRouter wires every handler the way the application does
func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.RequestID())
	router.SetHTMLTemplate(templates.Must())

	router.GET("/health", HealthCheck)
	router.GET("/health/db", DatabaseStatus)

	router.GET("/", OrderListPage)
	router.GET("/order/:id/", OrderDetailPage)
	router.GET("/order/:id/qrcode", OrderQRCode)
	router.GET("/new_order", NewOrderPage)
	router.POST("/new_order", CreateOrderPage)
	router.GET("/:id/order_update", EditOrderPage)
	router.POST("/:id/order_update", UpdateOrderPage)
	router.GET("/:id/order_delete", ConfirmDeleteOrderPage)
	router.POST("/:id/order_delete", DeleteOrderPage)
	router.GET("/total_sum", TotalSumPage)
	router.GET("/dishs/", DishListPage)
	router.GET("/dish/:id/", DishDetailPage)
	router.GET("/new_dish", NewDishPage)
	router.POST("/new_dish", CreateDishPage)
	router.GET("/:id/dish_update", EditDishPage)
	router.POST("/:id/dish_update", UpdateDishPage)

	api := router.Group("/api")
	{
		api.GET("/orders/", ListOrders)
		api.POST("/orders/create", CreateOrder)
		api.GET("/orders/total", TotalRevenue)
		api.GET("/orders/status/:status", FilterOrdersByStatus)
		api.GET("/orders/:id/", GetOrder)
		api.PATCH("/orders/:id/update", UpdateOrder)
		api.DELETE("/orders/:id/delete", DeleteOrder)
		api.POST("/orders/:id/items", AddOrderItem)
		api.PATCH("/orders/:id/items/:item_id", UpdateOrderItem)

		api.GET("/dish/", ListDishes)
		api.POST("/dish/", CreateDish)
		api.GET("/dish/:id/", GetDish)
		api.PUT("/dish/:id/", ReplaceDish)
		api.PATCH("/dish/:id/", PatchDish)
		api.DELETE("/dish/:id/", DeleteDish)
		api.POST("/dish/:id/image", UploadDishImage)
	}

	router.NoRoute(NotFound)
	return router
}

func performJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else if raw, ok := body.(string); ok {
		reader = bytes.NewReader([]byte(raw))
	} else {
		encoded, _ := json.Marshal(body)
		reader = bytes.NewReader(encoded)
	}

	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func performForm(router *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func performGet(router *gin.Engine, path string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeObject(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), w.Body.String())
	return response
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()
	var response []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), w.Body.String())
	return response
}

// errorFields returns the per-field messages of an error envelope
func errorFields(t *testing.T, w *httptest.ResponseRecorder) (string, map[string]interface{}) {
	t.Helper()
	response := decodeObject(t, w)
	require.Equal(t, false, response["success"])
	errObj := response["error"].(map[string]interface{})
	fields, _ := errObj["fields"].(map[string]interface{})
	return errObj["code"].(string), fields
}

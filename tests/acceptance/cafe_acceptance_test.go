package acceptance

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/cafe-orders-api/config"
	"github.com/kendall-kelly/cafe-orders-api/models"
	"github.com/kendall-kelly/cafe-orders-api/routes"
	"github.com/kendall-kelly/cafe-orders-api/tests/testutil"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

// CafeAcceptanceTestSuite exercises the running server over real HTTP
type CafeAcceptanceTestSuite struct {
	suite.Suite
	server *httptest.Server
	client *http.Client
	db     *gorm.DB
	cfg    *config.Config
}

// SetupSuite runs once before all tests
func (suite *CafeAcceptanceTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	os.Setenv("GO_ENV", "test")
	os.Setenv("PORT", "8080")

	cfg, err := config.Load()
	suite.Require().NoError(err)
	suite.cfg = cfg

	// form posts answer with redirects; keep them visible to the tests
	suite.client = &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// SetupTest starts a fresh server on a fresh database for every test
func (suite *CafeAcceptanceTestSuite) SetupTest() {
	suite.db = testutil.NewTestDB(suite.T())
	config.SetDB(suite.db)
	config.SetConfig(suite.cfg)
	suite.server = httptest.NewServer(routes.New(suite.cfg))
}

// TearDownTest stops the server
func (suite *CafeAcceptanceTestSuite) TearDownTest() {
	suite.server.Close()
	config.SetDB(nil)
}

func (suite *CafeAcceptanceTestSuite) do(method, path string, body interface{}) (*http.Response, []byte) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, suite.server.URL+path, reader)
	suite.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := suite.client.Do(req)
	suite.Require().NoError(err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	suite.Require().NoError(err)
	return resp, data
}

func (suite *CafeAcceptanceTestSuite) postForm(path string, form url.Values) (*http.Response, string) {
	resp, err := suite.client.PostForm(suite.server.URL+path, form)
	suite.Require().NoError(err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	suite.Require().NoError(err)
	return resp, string(data)
}

func (suite *CafeAcceptanceTestSuite) createDish(name, price string) uint {
	resp, body := suite.do(http.MethodPost, "/api/dish/", map[string]string{"name": name, "price": price})
	suite.Require().Equal(http.StatusCreated, resp.StatusCode, string(body))
	var dish struct {
		ID    uint   `json:"id"`
		Price string `json:"price"`
	}
	suite.Require().NoError(json.Unmarshal(body, &dish))
	suite.Equal(price, dish.Price)
	return dish.ID
}

type orderRepr struct {
	ID          uint   `json:"id"`
	TableNumber uint   `json:"table_number"`
	Status      string `json:"status"`
	TotalPrice  string `json:"total_price"`
	OrderItems  []struct {
		ID       uint `json:"id"`
		Dish     uint `json:"dish"`
		Quantity int  `json:"quantity"`
	} `json:"order_items"`
}

func (suite *CafeAcceptanceTestSuite) createOrder(table int, status string, items ...map[string]interface{}) orderRepr {
	payload := map[string]interface{}{"table_number": table, "order_items": items}
	if status != "" {
		payload["status"] = status
	}
	resp, body := suite.do(http.MethodPost, "/api/orders/create", payload)
	suite.Require().Equal(http.StatusCreated, resp.StatusCode, string(body))
	var order orderRepr
	suite.Require().NoError(json.Unmarshal(body, &order))
	return order
}

func (suite *CafeAcceptanceTestSuite) errorFields(body []byte) map[string]string {
	var envelope struct {
		Success bool `json:"success"`
		Error   struct {
			Code   string            `json:"code"`
			Fields map[string]string `json:"fields"`
		} `json:"error"`
	}
	suite.Require().NoError(json.Unmarshal(body, &envelope), string(body))
	suite.False(envelope.Success)
	return envelope.Error.Fields
}

// TestOrderTotalPrice: a waiting order with two portions of a 10.00 dish costs 20.00
func (suite *CafeAcceptanceTestSuite) TestOrderTotalPrice() {
	borscht := suite.createDish("Борщ", "10.00")

	order := suite.createOrder(1, "waiting", map[string]interface{}{"dish": borscht, "quantity": 2})

	suite.Equal("20.00", order.TotalPrice)
	resp, body := suite.do(http.MethodGet, fmt.Sprintf("/api/orders/%d/", order.ID), nil)
	suite.Equal(http.StatusOK, resp.StatusCode)
	var fetched orderRepr
	suite.Require().NoError(json.Unmarshal(body, &fetched))
	suite.Equal("20.00", fetched.TotalPrice)
}

// TestDuplicateTableNumber: the second order for a table is rejected and only one row exists
func (suite *CafeAcceptanceTestSuite) TestDuplicateTableNumber() {
	suite.createOrder(1, "")

	resp, body := suite.do(http.MethodPost, "/api/orders/create", map[string]interface{}{"table_number": 1, "order_items": []interface{}{}})

	suite.Equal(http.StatusBadRequest, resp.StatusCode)
	suite.Contains(suite.errorFields(body), "table_number")
	var count int64
	suite.db.Model(&models.Order{}).Where("table_number = ?", 1).Count(&count)
	suite.Equal(int64(1), count)
}

// TestRevenueExcludesUnpaidOrders: only the paid order counts
func (suite *CafeAcceptanceTestSuite) TestRevenueExcludesUnpaidOrders() {
	dish := suite.createDish("Борщ", "10.00")
	suite.createOrder(1, "paid", map[string]interface{}{"dish": dish, "quantity": 2})
	suite.createOrder(2, "ready", map[string]interface{}{"dish": dish, "quantity": 3})

	resp, body := suite.do(http.MethodGet, "/api/orders/total", nil)

	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.JSONEq(`{"total_sum":20.00}`, string(body))
}

// TestInvalidStatusPatch: an unknown status is a field error and the order keeps its status
func (suite *CafeAcceptanceTestSuite) TestInvalidStatusPatch() {
	order := suite.createOrder(1, "")

	resp, body := suite.do(http.MethodPatch, fmt.Sprintf("/api/orders/%d/update", order.ID), map[string]string{"status": "burnt"})

	suite.Equal(http.StatusBadRequest, resp.StatusCode)
	suite.Contains(suite.errorFields(body), "status")
	_, body = suite.do(http.MethodGet, fmt.Sprintf("/api/orders/%d/", order.ID), nil)
	var fetched orderRepr
	suite.Require().NoError(json.Unmarshal(body, &fetched))
	suite.Equal("waiting", fetched.Status)
}

// TestDeleteOrderWithItems: deleting removes the items and later reads are not found
func (suite *CafeAcceptanceTestSuite) TestDeleteOrderWithItems() {
	dish := suite.createDish("Борщ", "10.00")
	order := suite.createOrder(1, "", map[string]interface{}{"dish": dish, "quantity": 2})

	resp, _ := suite.do(http.MethodDelete, fmt.Sprintf("/api/orders/%d/delete", order.ID), nil)
	suite.Equal(http.StatusNoContent, resp.StatusCode)

	var items int64
	suite.db.Model(&models.OrderItem{}).Where("order_id = ?", order.ID).Count(&items)
	suite.Zero(items)

	resp, _ = suite.do(http.MethodGet, fmt.Sprintf("/api/orders/%d/", order.ID), nil)
	suite.Equal(http.StatusNotFound, resp.StatusCode)
	resp, _ = suite.do(http.MethodDelete, fmt.Sprintf("/api/orders/%d/delete", order.ID), nil)
	suite.Equal(http.StatusNotFound, resp.StatusCode)
}

// TestCreateOrderWithUnknownDish: nothing is stored when an item references a missing dish
func (suite *CafeAcceptanceTestSuite) TestCreateOrderWithUnknownDish() {
	resp, body := suite.do(http.MethodPost, "/api/orders/create", map[string]interface{}{
		"table_number": 1,
		"order_items":  []map[string]interface{}{{"dish": 4242, "quantity": 1}},
	})

	suite.Equal(http.StatusBadRequest, resp.StatusCode)
	suite.Contains(suite.errorFields(body), "order_items[0].dish")
	var count int64
	suite.db.Model(&models.Order{}).Count(&count)
	suite.Zero(count)
}

// TestNegativeDishPrice: negative prices are rejected, zero is fine
func (suite *CafeAcceptanceTestSuite) TestNegativeDishPrice() {
	resp, body := suite.do(http.MethodPost, "/api/dish/", map[string]interface{}{"name": "Борщ", "price": -0.01})
	suite.Equal(http.StatusBadRequest, resp.StatusCode)
	suite.Contains(suite.errorFields(body), "price")

	suite.createDish("Вода", "0.00")
}

// TestWebOrderFlow creates, lists, edits and deletes an order through the HTML pages
func (suite *CafeAcceptanceTestSuite) TestWebOrderFlow() {
	dish := suite.createDish("Борщ", "10.00")

	form := url.Values{"table_number": {"9"}}
	form.Add("dish", fmt.Sprint(dish))
	form.Add("quantity", "3")
	for i := 0; i < 4; i++ {
		form.Add("dish", "")
		form.Add("quantity", "")
	}
	resp, _ := suite.postForm("/new_order", form)
	suite.Require().Equal(http.StatusFound, resp.StatusCode)
	suite.Equal("/", resp.Header.Get("Location"))

	resp, page := suite.do(http.MethodGet, "/?q=9", nil)
	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.Contains(string(page), "30.00")

	var order models.Order
	suite.Require().NoError(suite.db.Where("table_number = ?", 9).First(&order).Error)

	form.Set("status", "paid")
	resp, _ = suite.postForm(fmt.Sprintf("/%d/order_update", order.ID), form)
	suite.Require().Equal(http.StatusFound, resp.StatusCode)

	resp, page = suite.do(http.MethodGet, "/total_sum", nil)
	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.Contains(string(page), "30.00")

	resp, page = suite.do(http.MethodGet, fmt.Sprintf("/order/%d/qrcode", order.ID), nil)
	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.True(strings.HasPrefix(string(page), "\x89PNG"))

	resp, _ = suite.postForm(fmt.Sprintf("/%d/order_delete", order.ID), url.Values{})
	suite.Equal(http.StatusFound, resp.StatusCode)
	resp, page = suite.do(http.MethodGet, fmt.Sprintf("/order/%d/", order.ID), nil)
	suite.Equal(http.StatusNotFound, resp.StatusCode)
	suite.Contains(string(page), "Страница не найдена")
}

// TestCafeAcceptanceTestSuite runs the acceptance test suite
func TestCafeAcceptanceTestSuite(t *testing.T) {
	suite.Run(t, new(CafeAcceptanceTestSuite))
}

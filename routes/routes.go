package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/cafe-orders-api/config"
	"github.com/kendall-kelly/cafe-orders-api/controllers"
	"github.com/kendall-kelly/cafe-orders-api/middleware"
	"github.com/kendall-kelly/cafe-orders-api/templates"
)

// New builds the application router with logging, recovery, request ids,
// CORS and the HTML pages. Access logs follow LOG_LEVEL.
func New(cfg *config.Config) *gin.Engine {
	router := gin.New()
	if cfg == nil || cfg.LogsRequests() {
		router.Use(gin.Logger())
	}
	router.Use(gin.Recovery())
	Setup(router, cfg)
	return router
}

// Setup registers middleware and every web and API route on router
func Setup(router *gin.Engine, cfg *config.Config) {
	router.Use(middleware.RequestID())
	router.Use(cors.New(corsConfig(cfg)))
	router.SetHTMLTemplate(templates.Must())

	router.GET("/health", controllers.HealthCheck)
	router.GET("/health/db", controllers.DatabaseStatus)

	// Server-rendered pages
	router.GET("/", controllers.OrderListPage)
	router.GET("/order/:id/", controllers.OrderDetailPage)
	router.GET("/order/:id/qrcode", controllers.OrderQRCode)
	router.GET("/new_order", controllers.NewOrderPage)
	router.POST("/new_order", controllers.CreateOrderPage)
	router.GET("/:id/order_update", controllers.EditOrderPage)
	router.POST("/:id/order_update", controllers.UpdateOrderPage)
	router.GET("/:id/order_delete", controllers.ConfirmDeleteOrderPage)
	router.POST("/:id/order_delete", controllers.DeleteOrderPage)
	router.GET("/total_sum", controllers.TotalSumPage)

	router.GET("/dishs/", controllers.DishListPage)
	router.GET("/dish/:id/", controllers.DishDetailPage)
	router.GET("/new_dish", controllers.NewDishPage)
	router.POST("/new_dish", controllers.CreateDishPage)
	router.GET("/:id/dish_update", controllers.EditDishPage)
	router.POST("/:id/dish_update", controllers.UpdateDishPage)

	api := router.Group("/api")
	{
		orders := api.Group("/orders")
		{
			orders.GET("/", controllers.ListOrders)
			orders.POST("/create", controllers.CreateOrder)
			orders.GET("/total", controllers.TotalRevenue)
			orders.GET("/status/:status", controllers.FilterOrdersByStatus)
			orders.GET("/:id/", controllers.GetOrder)
			orders.PATCH("/:id/update", controllers.UpdateOrder)
			orders.DELETE("/:id/delete", controllers.DeleteOrder)
			orders.POST("/:id/items", controllers.AddOrderItem)
			orders.PATCH("/:id/items/:item_id", controllers.UpdateOrderItem)
		}

		dishes := api.Group("/dish")
		{
			dishes.GET("/", controllers.ListDishes)
			dishes.POST("/", controllers.CreateDish)
			dishes.GET("/:id/", controllers.GetDish)
			dishes.PUT("/:id/", controllers.ReplaceDish)
			dishes.PATCH("/:id/", controllers.PatchDish)
			dishes.DELETE("/:id/", controllers.DeleteDish)
			dishes.POST("/:id/image", controllers.UploadDishImage)
		}
	}

	router.NoRoute(controllers.NotFound)
}

func corsConfig(cfg *config.Config) cors.Config {
	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}

	origins := []string{"*"}
	if cfg != nil && len(cfg.CORSAllowedOrigins) > 0 {
		origins = cfg.CORSAllowedOrigins
	}
	for _, origin := range origins {
		if origin == "*" {
			corsCfg.AllowAllOrigins = true
			return corsCfg
		}
	}
	corsCfg.AllowOrigins = origins
	return corsCfg
}

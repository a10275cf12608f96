// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/cafe-frontend/internal/domain/admin"
	"github.com/your-org/cafe-frontend/internal/interfaces/http/handlers"
	"github.com/your-org/cafe-frontend/internal/interfaces/http/middleware"
)

// Handlers groups the endpoint handlers
type Handlers struct {
	Menu  *handlers.MenuHandler
	Cart  *handlers.CartHandler
	Order *handlers.OrderHandler
	Admin *handlers.AdminHandler
}

// SetupMenuRoutes sets up menu browsing routes
func SetupMenuRoutes(rg *gin.RouterGroup, h *handlers.MenuHandler) {
	rg.GET("/menu", h.GetMenu)
	rg.GET("/categories", h.GetCategories)
}

// SetupCartRoutes sets up cart routes
func SetupCartRoutes(rg *gin.RouterGroup, h *handlers.CartHandler, orders *handlers.OrderHandler) {
	cart := rg.Group("/cart")
	{
		cart.GET("", h.GetCart)
		cart.DELETE("", h.ClearCart)
		cart.POST("/items", h.AddItem)
		cart.PUT("/items/:id", h.UpdateItem)
		cart.DELETE("/items/:id", h.RemoveItem)
		cart.POST("/checkout", orders.Checkout)
	}
}

// SetupOrderRoutes sets up order history and tracking routes
func SetupOrderRoutes(rg *gin.RouterGroup, h *handlers.OrderHandler) {
	rg.GET("/orders", h.GetOrders)

	status := rg.Group("/order/status")
	{
		status.GET("/:id", h.GetOrderStatus)
		status.GET("/:id/stream", h.StreamOrderStatus)
	}
}

// SetupAdminRoutes sets up admin routes. Everything except login and logout
// needs a stored admin token.
func SetupAdminRoutes(rg *gin.RouterGroup, h *handlers.AdminHandler, tokens admin.TokenChecker) {
	adminGroup := rg.Group("/admin")
	{
		adminGroup.POST("/login", h.Login)
		adminGroup.POST("/logout", h.Logout)

		protected := adminGroup.Group("")
		protected.Use(middleware.RequireAdmin(tokens))
		{
			protected.GET("/orders", h.GetOrders)
			protected.GET("/orders/stream", h.StreamOrders)
			protected.PUT("/orders/:id/time", h.SetOrderTime)
			protected.PUT("/orders/:id/status", h.SetOrderStatus)
			protected.DELETE("/orders/:id", h.DeleteOrder)

			protected.POST("/items", h.CreateItem)
			protected.PUT("/items/:id", h.UpdateItem)
			protected.DELETE("/items/:id", h.DeleteItem)

			protected.GET("/income", h.GetIncome)
			protected.GET("/tables", h.GetTables)
		}
	}
}

// SetupRoutes registers every API route on rg
func SetupRoutes(rg *gin.RouterGroup, h Handlers, tokens admin.TokenChecker, log logrus.FieldLogger) {
	rg.Use(middleware.EnsureSessionID(log))

	SetupMenuRoutes(rg, h.Menu)
	SetupCartRoutes(rg, h.Cart, h.Order)
	SetupOrderRoutes(rg, h.Order)
	SetupAdminRoutes(rg, h.Admin, tokens)
}

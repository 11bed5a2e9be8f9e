package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/okoshkin/storefront/internal/authz"
	"github.com/okoshkin/storefront/internal/handlers"
	"github.com/okoshkin/storefront/internal/service"
)

type Deps struct {
	AuthHandler     *handlers.AuthHandler
	ProductHandler  *handlers.ProductHandler
	CategoryHandler *handlers.CategoryHandler
	CartHandler     *handlers.CartHandler
	OrderHandler    *handlers.OrderHandler
	UserHandler     *handlers.UserHandler
	SummaryHandler  *handlers.SummaryHandler
	TokenService    *service.TokenService
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	v1 := e.Group("/api/v1")

	v1.POST("/register", d.AuthHandler.Register)
	v1.POST("/login", d.AuthHandler.Login)
	v1.POST("/logout", d.AuthHandler.LogOut)

	// Everything below needs a session.
	auth := v1.Group("", d.TokenService.AutoRefreshMiddleware)

	auth.GET("", d.SummaryHandler.GetSummary)

	auth.GET("/products", d.ProductHandler.GetProducts)
	auth.GET("/products/:id", d.ProductHandler.GetProduct)
	auth.GET("/categories", d.CategoryHandler.GetCategories)
	auth.GET("/categories/:id", d.CategoryHandler.GetCategory)

	auth.POST("/cart/add/:product_id", d.CartHandler.AddToCart)
	auth.GET("/cart", d.CartHandler.GetCart)
	auth.POST("/cart/update/:item_id", d.CartHandler.UpdateItem)
	auth.POST("/cart/remove/:item_id", d.CartHandler.RemoveItem)
	auth.POST("/order/confirm", d.CartHandler.ConfirmOrder)

	auth.GET("/myorders", d.OrderHandler.MyOrders)
	auth.GET("/myorders/:id", d.OrderHandler.MyOrderDetail)

	// Catalog mutation: staff or employee only.
	catalog := auth.Group("", authz.Require(authz.ManageCatalog))
	catalog.POST("/products", d.ProductHandler.CreateProduct)
	catalog.PATCH("/products/:id", d.ProductHandler.PatchProduct)
	catalog.DELETE("/products/:id", d.ProductHandler.DeleteProduct)
	catalog.POST("/categories", d.CategoryHandler.CreateCategory)
	catalog.PATCH("/categories/:id", d.CategoryHandler.PatchCategory)
	catalog.DELETE("/categories/:id", d.CategoryHandler.DeleteCategory)

	// Order management and the user directory: staff or employee only.
	mgmt := auth.Group("", authz.Require(authz.ManageOrders))
	mgmt.GET("/orders", d.OrderHandler.ListOrders)
	mgmt.GET("/orders/:id", d.OrderHandler.GetOrder)
	mgmt.POST("/orders/:id/status", d.OrderHandler.UpdateStatus)
	mgmt.GET("/users", d.UserHandler.GetUsers)
	mgmt.GET("/users/:id", d.UserHandler.GetUser)
}

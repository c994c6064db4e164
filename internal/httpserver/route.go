package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/buyme/internal/account"
	middleware "github.com/Skotchmaster/buyme/pkg/middleware/auth"
)

type Deps struct {
	Storefront *StorefrontHTTP
	Checkout   *CheckoutHTTP
	Auth       *AuthHTTP
	Admin      *AdminHTTP
	Staff      *StaffHTTP
	Guard      *middleware.Guard
	Ready      func(ctx context.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return c.NoContent(http.StatusServiceUnavailable)
			}
		}
		return c.NoContent(http.StatusOK)
	})

	api := e.Group("/api/v1")
	api.GET("/storefront", d.Storefront.Get)
	api.GET("/storefront/shelves/:shelf", d.Storefront.Shelf)
	api.GET("/products/:id", d.Storefront.Product)
	api.GET("/categories", d.Storefront.Categories)
	api.GET("/search", d.Storefront.Search)

	co := api.Group("/checkout", d.Guard.Optional)
	co.POST("", d.Checkout.Open)
	co.GET("/:id", d.Checkout.Get)
	co.PUT("/:id/size", d.Checkout.SelectSize)
	co.PUT("/:id/quantity", d.Checkout.SetQuantity)
	co.POST("/:id/submit", d.Checkout.Submit)
	co.DELETE("/:id", d.Checkout.Cancel)

	auth := api.Group("/auth")
	auth.POST("/sign-up", d.Auth.SignUp)
	auth.POST("/sign-in", d.Auth.SignIn)
	auth.POST("/sign-out", d.Auth.SignOut)
	auth.GET("/me", d.Auth.Me, d.Guard.RequireSession)

	admin := api.Group("/admin", d.Guard.RequireRole(string(account.RoleAdmin)))
	admin.GET("/dashboard", d.Admin.Dashboard)
	admin.GET("/products", d.Admin.ListProducts)
	admin.POST("/products", d.Admin.CreateProduct)
	admin.PUT("/products/:id", d.Admin.UpdateProduct)
	admin.DELETE("/products/:id", d.Admin.DeleteProduct)
	admin.GET("/categories", d.Admin.ListCategories)
	admin.POST("/categories", d.Admin.CreateCategory)
	admin.PUT("/categories/:id", d.Admin.UpdateCategory)
	admin.DELETE("/categories/:id", d.Admin.DeleteCategory)
	admin.GET("/customers", d.Admin.ListCustomers)
	admin.POST("/customers", d.Admin.CreateCustomer)
	admin.PUT("/customers/:id", d.Admin.UpdateCustomer)
	admin.DELETE("/customers/:id", d.Admin.DeleteCustomer)
	admin.POST("/images", d.Admin.UploadImage, echomw.BodyLimit("6M"))

	staff := e.Group("/staff", d.Guard.RedirectUnlessRole(string(account.RoleStaff)))
	staff.GET("/dashboard", d.Staff.Dashboard)
}

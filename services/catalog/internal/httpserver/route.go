package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	authmw "github.com/Skotchmaster/coffeemania/pkg/middleware/auth"
)

type Deps struct {
	CatalogHandler *CatalogHTTP
	JWTSecret      []byte
	Ready          func(ctx context.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil && d.Ready(c.Request().Context()) != nil {
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	})

	authMW := authmw.NewBearerMiddleware(d.JWTSecret)

	products := e.Group("/api/products")
	products.GET("", d.CatalogHandler.GetProducts)
	products.GET("/search", d.CatalogHandler.SearchProducts)
	products.GET("/category/:category", d.CatalogHandler.GetByCategory)
	products.GET("/:id", d.CatalogHandler.GetProduct)

	write := products.Group("", authMW.RequireAuth)
	write.POST("", d.CatalogHandler.CreateProduct)
	write.POST("/seed", d.CatalogHandler.SeedProducts)
	write.PUT("/:id", d.CatalogHandler.PatchProduct)
	write.PATCH("/:id", d.CatalogHandler.PatchProduct)
	write.DELETE("/:id", d.CatalogHandler.DeleteProduct)
}

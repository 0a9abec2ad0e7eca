package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/coffeemania/gateway/internal/middleware"
)

type Deps struct {
	AuthURL    string
	CatalogURL string
	CartURL    string

	JWTSecret   []byte
	Logger      *slog.Logger
	CORSOrigins []string
}

var writeMethods = []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete}

func Register(e *echo.Echo, d *Deps) error {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	for _, m := range middleware.Common(logger, d.CORSOrigins) {
		e.Use(m)
	}

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	authProxy, err := newProxy(d.AuthURL)
	if err != nil {
		return err
	}
	catalogProxy, err := newProxy(d.CatalogURL)
	if err != nil {
		return err
	}
	cartProxy, err := newProxy(d.CartURL)
	if err != nil {
		return err
	}

	requireJWT := middleware.Middleware(d.JWTSecret)

	e.Any("/api/auth/*", authProxy)

	e.GET("/api/products", catalogProxy)
	e.GET("/api/products/*", catalogProxy)
	e.Match(writeMethods, "/api/products", catalogProxy, requireJWT)
	e.Match(writeMethods, "/api/products/*", catalogProxy, requireJWT)

	e.Any("/api/cart", cartProxy, requireJWT)
	e.Any("/api/cart/*", cartProxy, requireJWT)

	return nil
}

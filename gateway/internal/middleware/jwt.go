package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"

	authmw "github.com/Skotchmaster/coffeemania/pkg/middleware/auth"
)

// HeaderUserID carries the verified subject to upstream services.
const HeaderUserID = "X-User-ID"

// Middleware rejects requests without a valid bearer token and forwards the
// caller's id upstream. The original Authorization header is left in place.
func Middleware(secret []byte) echo.MiddlewareFunc {
	bearer := authmw.NewBearerMiddleware(secret)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return bearer.RequireAuth(func(c echo.Context) error {
			req := c.Request()
			req.Header.Del(HeaderUserID)
			if id, ok := authmw.UserID(c); ok {
				req.Header.Set(HeaderUserID, strconv.FormatUint(uint64(id), 10))
			}
			return next(c)
		})
	}
}

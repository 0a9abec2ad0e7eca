package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/coffeemania/pkg/tokens"
)

const (
	// UserIDKey holds the authenticated uint user id in the echo context.
	UserIDKey = "user_id"
	LoginKey  = "login"

	CookieName = "accessToken"
)

type BearerMiddleware struct {
	JWTSecret []byte
}

func NewBearerMiddleware(secret []byte) *BearerMiddleware {
	return &BearerMiddleware{JWTSecret: secret}
}

func (m *BearerMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := tokenFromRequest(c)
		if raw == "" {
			return unauthorized(c)
		}

		claims, err := tokens.AccessClaimsFromToken(raw, m.JWTSecret)
		if err != nil {
			return unauthorized(c)
		}
		id, err := claims.UserID()
		if err != nil {
			return unauthorized(c)
		}

		c.Set(UserIDKey, id)
		c.Set(LoginKey, claims.Login)
		return next(c)
	}
}

// UserID returns the id stored by RequireAuth.
func UserID(c echo.Context) (uint, bool) {
	id, ok := c.Get(UserIDKey).(uint)
	return id, ok && id != 0
}

func tokenFromRequest(c echo.Context) string {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	if ck, err := c.Cookie(CookieName); err == nil {
		return ck.Value
	}
	return ""
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, map[string]string{"message": "unauthorized"})
}

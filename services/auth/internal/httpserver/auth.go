package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/coffeemania/pkg/logging"
	"github.com/Skotchmaster/coffeemania/services/auth/internal/service"
	"github.com/Skotchmaster/coffeemania/services/auth/internal/transport"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func message(c echo.Context, status int, msg string) error {
	return c.JSON(status, transport.MessageResponse{Message: msg})
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return message(c, http.StatusBadRequest, "Invalid request body")
	}

	res, err := h.Svc.Register(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrPrivacyPolicy):
			l.Warn("register_error", "status", 400, "error", err)
			return message(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrConflict):
			l.Warn("register_error", "status", 409, "error", err)
			return message(c, http.StatusConflict, service.ErrConflict.Error())
		default:
			l.Error("register_error", "status", 500, "error", err)
			return message(c, http.StatusInternalServerError, "Internal server error")
		}
	}
	return c.JSON(http.StatusOK, res)
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return message(c, http.StatusBadRequest, "Invalid request body")
	}

	res, err := h.Svc.Login(ctx, req.Login, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			return message(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrInvalidCredentials):
			l.Warn("login_failed", "status", 401)
			return message(c, http.StatusUnauthorized, service.ErrInvalidCredentials.Error())
		default:
			l.Error("login_error", "status", 500, "error", err)
			return message(c, http.StatusInternalServerError, "Internal server error")
		}
	}
	l.Info("login_successful", "user_id", res.User.ID)
	return c.JSON(http.StatusOK, res)
}

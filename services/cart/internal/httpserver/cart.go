package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/coffeemania/pkg/logging"
	authmw "github.com/Skotchmaster/coffeemania/pkg/middleware/auth"
	"github.com/Skotchmaster/coffeemania/services/cart/internal/service"
	"github.com/Skotchmaster/coffeemania/services/cart/internal/transport"
)

const (
	msgProductNotFound  = "Product not found"
	msgCartItemNotFound = "Cart item not found"
	msgItemRemoved      = "Item removed from cart"
	msgItemNotInCart    = "Item not found in cart"
	msgCartCleared      = "Cart cleared successfully"
	msgCartAlreadyEmpty = "Cart was already empty"
	msgInternal         = "Internal server error"
	msgInvalidBody      = "Invalid request body"
	msgInvalidProductID = "Invalid product id"
	msgInvalidAddition  = "Quantity must be greater than zero and productId is required"
	msgUnauthorized     = "unauthorized"
)

type CartHTTP struct {
	Svc *service.CartService
}

func message(c echo.Context, status int, msg string) error {
	return c.JSON(status, transport.MessageResponse{Message: msg})
}

func userID(c echo.Context) (uint, bool) {
	return authmw.UserID(c)
}

func productIDParam(c echo.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("productId"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "get.cart")

	uid, ok := userID(c)
	if !ok {
		return message(c, http.StatusUnauthorized, msgUnauthorized)
	}

	cart, err := h.Svc.GetCart(ctx, uid)
	if err != nil {
		l.Error("get_cart_error", "status", 500, "user_id", uid, "error", err)
		return message(c, http.StatusInternalServerError, msgInternal)
	}
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHTTP) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "add.cart")

	uid, ok := userID(c)
	if !ok {
		return message(c, http.StatusUnauthorized, msgUnauthorized)
	}

	var req transport.AddToCartRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("add_to_cart_error", "status", 400, "user_id", uid, "error", err)
		return message(c, http.StatusBadRequest, msgInvalidBody)
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	item, err := h.Svc.AddToCart(ctx, uid, req.ProductID, qty)
	switch {
	case err == nil:
		l.Info("item added to cart", "user_id", uid, "product_id", req.ProductID, "quantity", qty)
		return c.JSON(http.StatusOK, item)
	case errors.Is(err, service.ErrProductNotFound):
		l.Warn("add_to_cart_error", "status", 400, "user_id", uid, "product_id", req.ProductID, "error", err)
		return message(c, http.StatusBadRequest, msgProductNotFound)
	case errors.Is(err, service.ErrUnknownUser):
		l.Warn("add_to_cart_error", "status", 401, "user_id", uid, "error", err)
		return message(c, http.StatusUnauthorized, msgUnauthorized)
	case errors.Is(err, service.ErrValidation):
		l.Warn("add_to_cart_error", "status", 400, "user_id", uid, "product_id", req.ProductID, "error", err)
		return message(c, http.StatusBadRequest, msgInvalidAddition)
	default:
		l.Error("add_to_cart_error", "status", 500, "user_id", uid, "product_id", req.ProductID, "error", err)
		return message(c, http.StatusInternalServerError, msgInternal)
	}
}

func (h *CartHTTP) UpdateCartItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "update.cart")

	uid, ok := userID(c)
	if !ok {
		return message(c, http.StatusUnauthorized, msgUnauthorized)
	}

	var req transport.UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_cart_item_error", "status", 400, "user_id", uid, "error", err)
		return message(c, http.StatusBadRequest, msgInvalidBody)
	}

	item, removed, err := h.Svc.UpdateCartItem(ctx, uid, req.ProductID, req.Quantity)
	switch {
	case err == nil && removed:
		return message(c, http.StatusOK, msgItemRemoved)
	case err == nil:
		return c.JSON(http.StatusOK, item)
	case errors.Is(err, service.ErrItemNotFound):
		l.Warn("update_cart_item_error", "status", 400, "user_id", uid, "product_id", req.ProductID)
		return message(c, http.StatusBadRequest, msgCartItemNotFound)
	case errors.Is(err, service.ErrValidation):
		return message(c, http.StatusBadRequest, msgInvalidProductID)
	default:
		l.Error("update_cart_item_error", "status", 500, "user_id", uid, "product_id", req.ProductID, "error", err)
		return message(c, http.StatusInternalServerError, msgInternal)
	}
}

func (h *CartHTTP) RemoveFromCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "remove.cart")

	uid, ok := userID(c)
	if !ok {
		return message(c, http.StatusUnauthorized, msgUnauthorized)
	}
	pid, ok := productIDParam(c)
	if !ok {
		return message(c, http.StatusBadRequest, msgInvalidProductID)
	}

	removed, err := h.Svc.RemoveFromCart(ctx, uid, pid)
	if err != nil {
		l.Error("remove_from_cart_error", "status", 500, "user_id", uid, "product_id", pid, "error", err)
		return message(c, http.StatusInternalServerError, msgInternal)
	}
	if !removed {
		return message(c, http.StatusNotFound, msgItemNotInCart)
	}
	return message(c, http.StatusOK, msgItemRemoved)
}

func (h *CartHTTP) ClearCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "clear.cart")

	uid, ok := userID(c)
	if !ok {
		return message(c, http.StatusUnauthorized, msgUnauthorized)
	}

	cleared, err := h.Svc.ClearCart(ctx, uid)
	if err != nil {
		l.Error("clear_cart_error", "status", 500, "user_id", uid, "error", err)
		return message(c, http.StatusInternalServerError, msgInternal)
	}
	if !cleared {
		return message(c, http.StatusOK, msgCartAlreadyEmpty)
	}
	l.Info("cart cleared", "user_id", uid)
	return message(c, http.StatusOK, msgCartCleared)
}

func (h *CartHTTP) GetCartItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "get.cart.item")

	uid, ok := userID(c)
	if !ok {
		return message(c, http.StatusUnauthorized, msgUnauthorized)
	}
	pid, ok := productIDParam(c)
	if !ok {
		return message(c, http.StatusBadRequest, msgInvalidProductID)
	}

	item, err := h.Svc.GetCartItem(ctx, uid, pid)
	if err != nil {
		l.Error("get_cart_item_error", "status", 500, "user_id", uid, "product_id", pid, "error", err)
		return message(c, http.StatusInternalServerError, msgInternal)
	}
	if item == nil {
		return message(c, http.StatusNotFound, msgCartItemNotFound)
	}
	return c.JSON(http.StatusOK, item)
}

package cartclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL + "/")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestGetCart_SendsBearerAndDecodes(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/cart", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[{"id":1,"productId":4,"productName":"latte","productPrice":"2.50","quantity":2,"totalPrice":"5"}],"totalAmount":"5","totalItems":2}`))
	})

	cart, err := c.GetCart(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "2.5", cart.Items[0].ProductPrice.String())
	assert.Equal(t, 2, cart.TotalItems)
}

func TestErrorsAreClassified(t *testing.T) {
	status := http.StatusUnauthorized
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, status, map[string]string{"message": "Product not found"})
	})

	_, err := c.AddToCart(context.Background(), "tok", 1, 1)
	assert.ErrorIs(t, err, ErrUnauthorized)

	status = http.StatusBadRequest
	_, err = c.AddToCart(context.Background(), "tok", 1, 1)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Product not found", apiErr.Message)
	assert.False(t, apiErr.ServerSide())

	status = http.StatusBadGateway
	_, err = c.AddToCart(context.Background(), "tok", 1, 1)
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.ServerSide())
}

func TestTransportErrorIsWrapped(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	c := NewClient(srv.URL)
	srv.Close()

	_, err := c.GetCart(context.Background(), "tok")
	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
	assert.NotErrorIs(t, err, ErrUnauthorized)
}

func TestUpdateCartItem_RemovedMessage(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]int
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["quantity"] <= 0 {
			writeJSON(w, http.StatusOK, map[string]string{"message": "Item removed from cart"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": 1, "productId": body["productId"], "quantity": body["quantity"]})
	})

	item, removed, err := c.UpdateCartItem(context.Background(), "tok", 3, 0)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Nil(t, item)

	item, removed, err = c.UpdateCartItem(context.Background(), "tok", 3, 4)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, 4, item.Quantity)
}

func TestRemoveClearAndGetItem(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/cart/remove/1":
			writeJSON(w, http.StatusOK, map[string]string{"message": "Item removed from cart"})
		case "/api/cart/remove/2", "/api/cart/item/2":
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Item not found in cart"})
		case "/api/cart/clear":
			writeJSON(w, http.StatusOK, map[string]string{"message": "Cart was already empty"})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})
	ctx := context.Background()

	ok, err := c.RemoveFromCart(ctx, "tok", 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.RemoveFromCart(ctx, "tok", 2)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = c.ClearCart(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, ok)

	item, err := c.GetCartItem(ctx, "tok", 2)
	require.NoError(t, err)
	assert.Nil(t, item)
}

func TestLogin(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]any{"token": "jwt", "user": map[string]any{"id": 8, "login": "ann"}})
	})

	res, err := c.Login(context.Background(), "ann", "secret")
	require.NoError(t, err)
	assert.Equal(t, "jwt", res.Token)
	assert.EqualValues(t, 8, res.User.ID)
}

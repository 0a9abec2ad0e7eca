package cartclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

var ErrUnauthorized = errors.New("unauthorized")

// APIError is a non-2xx answer other than 401.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	return fmt.Sprintf("api error: status %d: %s", e.Status, e.Message)
}

// ServerSide reports a 5xx answer.
func (e *APIError) ServerSide() bool { return e.Status >= 500 }

// Client talks to the gateway on behalf of one storefront. Tokens are passed per call.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return NewClientWithHTTP(baseURL, &http.Client{
		Timeout: 5 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	})
}

func NewClientWithHTTP(baseURL string, hc *http.Client) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: hc}
}

type messageBody struct {
	Message string `json:"message"`
}

func (c *Client) GetCart(ctx context.Context, token string) (*Cart, error) {
	var out Cart
	if err := c.do(ctx, http.MethodGet, "/api/cart", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AddToCart(ctx context.Context, token string, productID uint, qty int) (*CartItem, error) {
	body := map[string]any{"productId": productID, "quantity": qty}
	var out CartItem
	if err := c.do(ctx, http.MethodPost, "/api/cart/add", token, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateCartItem returns removed=true with a nil item when qty <= 0 deleted the line.
func (c *Client) UpdateCartItem(ctx context.Context, token string, productID uint, qty int) (*CartItem, bool, error) {
	body := map[string]any{"productId": productID, "quantity": qty}
	var out struct {
		CartItem
		Message string `json:"message"`
	}
	if err := c.do(ctx, http.MethodPut, "/api/cart/update", token, body, &out); err != nil {
		return nil, false, err
	}
	if out.Message != "" {
		return nil, true, nil
	}
	return &out.CartItem, false, nil
}

// RemoveFromCart reports false when the product was not in the cart.
func (c *Client) RemoveFromCart(ctx context.Context, token string, productID uint) (bool, error) {
	err := c.do(ctx, http.MethodDelete, "/api/cart/remove/"+strconv.FormatUint(uint64(productID), 10), token, nil, nil)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
		return false, nil
	}
	return err == nil, err
}

// ClearCart reports whether anything was removed.
func (c *Client) ClearCart(ctx context.Context, token string) (bool, error) {
	var out messageBody
	if err := c.do(ctx, http.MethodDelete, "/api/cart/clear", token, nil, &out); err != nil {
		return false, err
	}
	return out.Message != "Cart was already empty", nil
}

// GetCartItem returns nil without an error when the line does not exist.
func (c *Client) GetCartItem(ctx context.Context, token string, productID uint) (*CartItem, error) {
	var out CartItem
	err := c.do(ctx, http.MethodGet, "/api/cart/item/"+strconv.FormatUint(uint64(productID), 10), token, nil, &out)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetProduct(ctx context.Context, productID uint) (*Product, error) {
	var out Product
	if err := c.do(ctx, http.MethodGet, "/api/products/"+strconv.FormatUint(uint64(productID), 10), "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, login, password string) (*AuthResult, error) {
	body := map[string]string{"login": login, "password": password}
	var out AuthResult
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var m messageBody
		_ = json.NewDecoder(resp.Body).Decode(&m)
		return &APIError{Status: resp.StatusCode, Message: m.Message}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

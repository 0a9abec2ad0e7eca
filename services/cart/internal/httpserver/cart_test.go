package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/coffeemania/pkg/db"
	"github.com/Skotchmaster/coffeemania/pkg/tokens"
	"github.com/Skotchmaster/coffeemania/services/cart/internal/models"
	"github.com/Skotchmaster/coffeemania/services/cart/internal/repo"
	"github.com/Skotchmaster/coffeemania/services/cart/internal/service"
	"github.com/Skotchmaster/coffeemania/services/cart/internal/transport"
)

var jwtSecret = []byte("cart-http-secret")

type testEnv struct {
	t  *testing.T
	e  *echo.Echo
	db *gorm.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gdb, err := db.OpenSQLite(filepath.Join(t.TempDir(), "http.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })
	require.NoError(t, gdb.AutoMigrate(&models.User{}, &models.Product{}, &models.CartItem{}))
	for id := uint(1); id <= 10; id++ {
		require.NoError(t, gdb.Create(&models.User{ID: id}).Error)
	}

	e := echo.New()
	Register(e, &Deps{
		CartHandler: &CartHTTP{Svc: service.New(repo.New(gdb), nil)},
		JWTSecret:   jwtSecret,
		Ready:       func(ctx context.Context) error { return db.Ping(ctx, gdb) },
	})
	return &testEnv{t: t, e: e, db: gdb}
}

func (env *testEnv) product(name, price string) uint {
	p := models.Product{Name: name, Price: decimal.RequireFromString(price)}
	require.NoError(env.t, env.db.Create(&p).Error)
	return p.ID
}

func (env *testEnv) do(method, path string, userID uint, body string) *httptest.ResponseRecorder {
	env.t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if userID != 0 {
		tok, err := tokens.NewAccessToken(jwtSecret, userID, "tester", "", time.Now().Add(time.Hour))
		require.NoError(env.t, err)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var m transport.MessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m.Message
}

func TestCartEndpoints_RequireAuth(t *testing.T) {
	env := newTestEnv(t)
	routes := []struct{ method, path string }{
		{http.MethodGet, "/api/cart"},
		{http.MethodPost, "/api/cart/add"},
		{http.MethodPut, "/api/cart/update"},
		{http.MethodDelete, "/api/cart/remove/1"},
		{http.MethodDelete, "/api/cart/clear"},
		{http.MethodGet, "/api/cart/item/1"},
	}
	for _, r := range routes {
		rec := env.do(r.method, r.path, 0, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, r.method+" "+r.path)
	}
}

func TestAddAndGetCart(t *testing.T) {
	env := newTestEnv(t)
	p1 := env.product("latte", "100")
	p2 := env.product("cake", "250")

	rec := env.do(http.MethodPost, "/api/cart/add", 5, `{"productId":`+strconv.Itoa(int(p1))+`,"quantity":2}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var item transport.CartItemResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &item))
	assert.Equal(t, 2, item.Quantity)
	assert.Equal(t, "latte", item.ProductName)

	rec = env.do(http.MethodPost, "/api/cart/add", 5, `{"productId":`+strconv.Itoa(int(p2))+`}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodGet, "/api/cart", 5, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var cart transport.CartResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cart))
	assert.Len(t, cart.Items, 2)
	assert.Equal(t, 3, cart.TotalItems)
	assert.True(t, decimal.RequireFromString("450").Equal(cart.TotalAmount))
	assert.Contains(t, rec.Body.String(), `"totalAmount":"450"`)

	rec = env.do(http.MethodGet, "/api/cart", 6, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"items":[]`)
}

func TestAddToCart_Errors(t *testing.T) {
	env := newTestEnv(t)
	p := env.product("latte", "100")

	rec := env.do(http.MethodPost, "/api/cart/add", 5, `{"productId":999}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Product not found", decodeMessage(t, rec))

	rec = env.do(http.MethodPost, "/api/cart/add", 5, `{"productId":`+strconv.Itoa(int(p))+`,"quantity":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, msgInvalidAddition, decodeMessage(t, rec))

	rec = env.do(http.MethodPost, "/api/cart/add", 404, `{"productId":`+strconv.Itoa(int(p))+`}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, msgUnauthorized, decodeMessage(t, rec))

	rec = env.do(http.MethodPost, "/api/cart/add", 5, `{"productId":"abc"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateCartItem(t *testing.T) {
	env := newTestEnv(t)
	p := env.product("latte", "100")
	pid := strconv.Itoa(int(p))

	rec := env.do(http.MethodPut, "/api/cart/update", 5, `{"productId":`+pid+`,"quantity":3}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Cart item not found", decodeMessage(t, rec))

	require.Equal(t, http.StatusOK, env.do(http.MethodPost, "/api/cart/add", 5, `{"productId":`+pid+`,"quantity":5}`).Code)

	rec = env.do(http.MethodPut, "/api/cart/update", 5, `{"productId":`+pid+`,"quantity":3}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var item transport.CartItemResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &item))
	assert.Equal(t, 3, item.Quantity)

	rec = env.do(http.MethodPut, "/api/cart/update", 5, `{"productId":`+pid+`,"quantity":0}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Item removed from cart", decodeMessage(t, rec))

	rec = env.do(http.MethodGet, "/api/cart/item/"+pid, 5, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRemoveAndClear(t *testing.T) {
	env := newTestEnv(t)
	p := env.product("latte", "100")
	pid := strconv.Itoa(int(p))

	rec := env.do(http.MethodDelete, "/api/cart/remove/"+pid, 5, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Item not found in cart", decodeMessage(t, rec))

	rec = env.do(http.MethodDelete, "/api/cart/remove/abc", 5, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	require.Equal(t, http.StatusOK, env.do(http.MethodPost, "/api/cart/add", 5, `{"productId":`+pid+`}`).Code)

	rec = env.do(http.MethodGet, "/api/cart/item/"+pid, 5, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodDelete, "/api/cart/remove/"+pid, 5, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Item removed from cart", decodeMessage(t, rec))

	rec = env.do(http.MethodDelete, "/api/cart/clear", 5, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Cart was already empty", decodeMessage(t, rec))

	require.Equal(t, http.StatusOK, env.do(http.MethodPost, "/api/cart/add", 5, `{"productId":`+pid+`}`).Code)
	rec = env.do(http.MethodDelete, "/api/cart/clear", 5, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Cart cleared successfully", decodeMessage(t, rec))
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/health/live", 0, "").Code)
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/health/ready", 0, "").Code)

	e := echo.New()
	Register(e, &Deps{CartHandler: &CartHTTP{}, Ready: func(context.Context) error { return errors.New("down") }})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

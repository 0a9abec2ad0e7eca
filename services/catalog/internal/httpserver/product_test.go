package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/coffeemania/pkg/db"
	"github.com/Skotchmaster/coffeemania/pkg/tokens"
	"github.com/Skotchmaster/coffeemania/services/catalog/internal/models"
	"github.com/Skotchmaster/coffeemania/services/catalog/internal/repo"
	"github.com/Skotchmaster/coffeemania/services/catalog/internal/service"
	"github.com/Skotchmaster/coffeemania/services/catalog/internal/transport"
)

var jwtSecret = []byte("catalog-secret")

type testEnv struct {
	t *testing.T
	e *echo.Echo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gdb, err := db.OpenSQLite(filepath.Join(t.TempDir(), "http.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })
	require.NoError(t, gdb.AutoMigrate(&models.Product{}))
	require.NoError(t, gdb.Exec("CREATE TABLE cart_items (id INTEGER PRIMARY KEY, user_id INTEGER, product_id INTEGER, quantity INTEGER)").Error)

	e := echo.New()
	Register(e, &Deps{
		CatalogHandler: &CatalogHTTP{Svc: service.New(repo.New(gdb), nil, nil)},
		JWTSecret:      jwtSecret,
	})
	return &testEnv{t: t, e: e}
}

func (env *testEnv) do(method, path, body string, authed bool) *httptest.ResponseRecorder {
	env.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if authed {
		tok, err := tokens.NewAccessToken(jwtSecret, 1, "admin", "", time.Now().Add(time.Hour))
		require.NoError(env.t, err)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func TestProductLifecycle(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/products", `{"name":"latte","price":"2.50","category":"coffee"}`, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(http.MethodPost, "/api/products", `{"name":"latte","price":"2.50","category":"coffee"}`, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Contains(t, rec.Body.String(), `"price":"2.5"`)

	path := fmt.Sprintf("/api/products/%d", created.ID)
	rec = env.do(http.MethodGet, path, "", false)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodPut, path, `{"price":"3.10"}`, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"price":"3.1"`)

	rec = env.do(http.MethodGet, "/api/products/category/coffee", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	var page transport.ProductPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.EqualValues(t, 1, page.Meta.Total)

	rec = env.do(http.MethodGet, "/api/products/search?q=lat", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Len(t, page.Data, 1)

	rec = env.do(http.MethodDelete, path, "", true)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(http.MethodGet, path, "", false)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"Product not found"}`, rec.Body.String())
}

func TestProductErrors(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/api/products/abc", "", false).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodPost, "/api/products", `{"name":"","price":"1"}`, true).Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodDelete, "/api/products/42", "", true).Code)

	rec := env.do(http.MethodGet, "/api/products", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"data":[]`)
}

func TestSeedProducts(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodPost, "/api/products/seed", "", false).Code)

	rec := env.do(http.MethodPost, "/api/products/seed", "", true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"message":"Products initialized","count":2}`, rec.Body.String())

	rec = env.do(http.MethodGet, "/api/products/category/coffee", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	var page transport.ProductPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.EqualValues(t, 2, page.Meta.Total)
}

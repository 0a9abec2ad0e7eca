package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/coffeemania/pkg/tokens"
)

var secret = []byte("mw-secret")

func serve(t *testing.T, setup func(r *http.Request)) (*httptest.ResponseRecorder, uint) {
	t.Helper()
	e := echo.New()
	var got uint
	e.GET("/me", func(c echo.Context) error {
		got, _ = UserID(c)
		return c.NoContent(http.StatusNoContent)
	}, NewBearerMiddleware(secret).RequireAuth)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	setup(req)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec, got
}

func TestRequireAuth_Bearer(t *testing.T) {
	tok, err := tokens.NewAccessToken(secret, 7, "u", "", time.Now().Add(time.Hour))
	require.NoError(t, err)

	rec, id := serve(t, func(r *http.Request) { r.Header.Set(echo.HeaderAuthorization, "Bearer "+tok) })
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.EqualValues(t, 7, id)
}

func TestRequireAuth_Cookie(t *testing.T) {
	tok, err := tokens.NewAccessToken(secret, 9, "u", "", time.Now().Add(time.Hour))
	require.NoError(t, err)

	rec, id := serve(t, func(r *http.Request) { r.AddCookie(&http.Cookie{Name: CookieName, Value: tok}) })
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.EqualValues(t, 9, id)
}

func TestRequireAuth_Rejects(t *testing.T) {
	expired, err := tokens.NewAccessToken(secret, 7, "u", "", time.Now().Add(-time.Hour))
	require.NoError(t, err)
	foreign, err := tokens.NewAccessToken([]byte("x"), 7, "u", "", time.Now().Add(time.Hour))
	require.NoError(t, err)

	cases := map[string]func(r *http.Request){
		"missing": func(r *http.Request) {},
		"expired": func(r *http.Request) { r.Header.Set(echo.HeaderAuthorization, "Bearer "+expired) },
		"foreign": func(r *http.Request) { r.Header.Set(echo.HeaderAuthorization, "Bearer "+foreign) },
		"basic":   func(r *http.Request) { r.Header.Set(echo.HeaderAuthorization, "Basic abc") },
	}
	for name, setup := range cases {
		t.Run(name, func(t *testing.T) {
			rec, id := serve(t, setup)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.JSONEq(t, `{"message":"unauthorized"}`, rec.Body.String())
			assert.Zero(t, id)
		})
	}
}

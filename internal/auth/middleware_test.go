package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runMiddleware(t *testing.T, mw echo.MiddlewareFunc, req *http.Request) (*httptest.ResponseRecorder, int64) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen int64
	err := mw(func(c echo.Context) error {
		id, err := GetUserID(c)
		require.NoError(t, err)
		seen = id
		return c.NoContent(http.StatusOK)
	})(c)
	require.NoError(t, err)

	return rec, seen
}

func TestRequireJWT(t *testing.T) {
	svc := NewJWTService(testSecret, time.Hour, "")
	m := NewMiddleware(svc)
	token, err := svc.Generate(7, "ada")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec, id := runMiddleware(t, m.RequireJWT(), req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(7), id)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	rec, _ = runMiddleware(t, m.RequireJWT(), req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), msgMissingAuthorization)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec, _ = runMiddleware(t, m.RequireJWT(), req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/?auth_token="+token, nil)
	rec, _ = runMiddleware(t, m.RequireJWT(), req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireJWTOrQuery(t *testing.T) {
	svc := NewJWTService(testSecret, time.Hour, "")
	token, err := svc.Generate(9, "grace")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/?auth_token="+token, nil)
	rec, id := runMiddleware(t, NewMiddleware(svc).RequireJWTOrQuery(), req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(9), id)
}

func TestGetUserID_Unauthenticated(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	_, err := GetUserID(c)
	assert.Error(t, err)
}

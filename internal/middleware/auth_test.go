package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"company-service/pkg/config"
	"company-service/pkg/jwtutil"
	"company-service/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	prometheus.InitMetrics(&config.Config{Metrics: config.MetricsConfig{Prefix: "middleware_test"}})
	jwtutil.Initialize(&config.JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 1})
	os.Exit(m.Run())
}

func runMiddleware(t *testing.T, mw echo.MiddlewareFunc, req *http.Request) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	called := false
	handler := mw(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	return rec, called
}

func TestAuthMiddlewareMissingToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/companies", nil)
	rec, called := runMiddleware(t, AuthMiddleware, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called, "handler must not run without identity")
}

func TestAuthMiddlewareInvalidToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/companies", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec, called := runMiddleware(t, AuthMiddleware, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	token, err := jwtutil.GenerateToken("admin@example.com", 7, jwtutil.AdminRole)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/companies", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	handler := AuthMiddleware(func(c echo.Context) error {
		assert.Equal(t, uint(7), c.Get("user_id"))
		assert.Equal(t, "admin@example.com", c.Get("email"))
		assert.Equal(t, jwtutil.AdminRole, c.Get("role"))
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAdminRejectsOtherRoles(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/companies", nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	c.Set("role", "viewer")

	called := false
	handler := RequireAdmin(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, called)
}

func TestRequireAdminAllowsAdmin(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/companies", nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	c.Set("role", jwtutil.AdminRole)

	handler := RequireAdmin(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

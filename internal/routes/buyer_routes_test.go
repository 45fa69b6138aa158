package routes

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signRole(t *testing.T, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 1,
		"role":    role,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestUsersRouteRegisteredAndGated(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	app := fiber.New()
	SetupBuyerRoutes(app)

	// No token: the route exists and is auth-gated, not a 404.
	req := httptest.NewRequest("GET", "/api/users", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	// Non-admin roles are rejected before the handler runs.
	for _, role := range []string{"buyer", "farmer"} {
		req = httptest.NewRequest("GET", "/api/users", nil)
		req.Header.Set("Authorization", "Bearer "+signRole(t, role))
		resp, err = app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode, "role %s", role)
	}
}

func TestBuyerListingGated(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	app := fiber.New()
	SetupBuyerRoutes(app)

	req := httptest.NewRequest("GET", "/api/buyers", nil)
	req.Header.Set("Authorization", "Bearer "+signRole(t, "farmer"))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListUsersRejectsInvalidRoleFilter(t *testing.T) {
	h := &AdminHandler{}
	app := fiber.New()
	app.Get("/users", h.ListUsers)

	// The role filter is validated before any query runs, so a bogus role
	// comes back 400 without touching storage.
	req := httptest.NewRequest("GET", "/users?role=wholesaler", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

package apikey_test

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/web/middleware/apikey"
)

func TestNew(t *testing.T) {
	hash, err := apikey.Hash("s3cret")
	require.NoError(t, err)

	tests := []struct {
		name       string
		hash       string
		path       string
		key        string
		wantStatus int
	}{
		{name: "disabled", hash: "", path: "/api", wantStatus: fiber.StatusOK},
		{name: "valid key", hash: hash, path: "/api", key: "s3cret", wantStatus: fiber.StatusOK},
		{name: "missing key", hash: hash, path: "/api", wantStatus: fiber.StatusUnauthorized},
		{name: "wrong key", hash: hash, path: "/api", key: "nope", wantStatus: fiber.StatusUnauthorized},
		{name: "health is public", hash: hash, path: "/health", wantStatus: fiber.StatusOK},
		{name: "broken hash", hash: "not-a-hash", path: "/api", key: "x", wantStatus: fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Use(apikey.New(apikey.Config{Hash: tt.hash, Next: apikey.Public}))
			app.Get(tt.path, func(c fiber.Ctx) error {
				return c.SendString("ok")
			})

			req := httptest.NewRequest(fiber.MethodGet, tt.path, nil)
			if tt.key != "" {
				req.Header.Set(apikey.Header, tt.key)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

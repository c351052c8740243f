package fiber_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adapter "github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/logger/adapter/fiber"
)

type accessEntry struct {
	IP     string `json:"ip"`
	Method string `json:"method"`
	URI    string `json:"uri"`
	Status int    `json:"status"`
	Error  string `json:"error"`
}

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantURI    string
		wantErr    bool
	}{
		{name: "root", target: "/", wantStatus: fiber.StatusOK, wantURI: "/"},
		{name: "query string kept", target: "/?page=2", wantStatus: fiber.StatusOK, wantURI: "/?page=2"},
		{name: "unknown route", target: "/nope", wantStatus: fiber.StatusNotFound, wantURI: "/nope", wantErr: true},
		{name: "handler error", target: "/fail", wantStatus: fiber.StatusConflict, wantURI: "/fail", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer

			app := fiber.New()
			app.Use(adapter.New(adapter.Config{Output: &out}))
			app.Get("/", func(c fiber.Ctx) error {
				return c.SendString("ok")
			})
			app.Get("/fail", func(_ fiber.Ctx) error {
				return fiber.NewError(fiber.StatusConflict, errors.New("user already exists").Error())
			})

			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, tt.target, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			var entry accessEntry
			require.NoError(t, json.Unmarshal(out.Bytes(), &entry), out.String())
			assert.Equal(t, fiber.MethodGet, entry.Method)
			assert.Equal(t, tt.wantStatus, entry.Status)
			assert.Equal(t, tt.wantURI, entry.URI)
			assert.Equal(t, tt.wantErr, entry.Error != "")
		})
	}
}

func TestNextSkips(t *testing.T) {
	var out bytes.Buffer

	app := fiber.New()
	app.Use(adapter.New(adapter.Config{
		Output: &out,
		Next: func(c fiber.Ctx) bool {
			return c.Path() == "/metrics"
		},
	}))
	app.Get("/metrics", func(c fiber.Ctx) error {
		return c.SendString("# metrics")
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Empty(t, out.String())
}

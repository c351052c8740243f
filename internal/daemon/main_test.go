package daemon

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/config"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/db/dbtest"
)

func TestNewAutoconnect(t *testing.T) {
	tests := []struct {
		name          string
		driver        string
		autoconnect   bool
		wantConnected bool
	}{
		{name: "autoconnect", driver: "sqlite", autoconnect: true, wantConnected: true},
		{name: "manual", driver: "sqlite", autoconnect: false, wantConnected: false},
		{name: "autoconnect failure is not fatal", driver: "postgres", autoconnect: true, wantConnected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Database = dbtest.Config()
			cfg.Database.Driver = tt.driver
			cfg.Database.Autoconnect = tt.autoconnect
			cfg.Database.ConnectTimeout = 1

			if tt.driver == "postgres" {
				cfg.Database.Server = "127.0.0.1"
				cfg.Database.Port = 1
			}

			d := New(context.Background(), &cfg)
			require.NotNil(t, d)

			t.Cleanup(func() {
				_ = d.Sessions().Disconnect()
			})

			assert.Equal(t, tt.wantConnected, d.Sessions().Status().Connected)
		})
	}
}

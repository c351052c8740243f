package config

import (
	"time"

	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/logger"
)

// Config overall data structure.
type Config struct {
	Database    Database    `toml:"database"    mapstructure:"database"`
	Application Application `toml:"application" mapstructure:"application"`
	Log         logger.Log  `toml:"log"         mapstructure:"log"`
	Webserver   Webserver   `toml:"webserver"   mapstructure:"webserver"`
}

// Database holds the connection parameters of the FreeRADIUS database.
type Database struct {
	// Driver is one of sqlserver, mysql, postgres or sqlite.
	Driver   string `toml:"driver" json:"driver" mapstructure:"driver" validate:"required,oneof=sqlserver mysql postgres sqlite"`
	Server   string `toml:"server" json:"server" mapstructure:"server" validate:"required_unless=Driver sqlite"`
	Port     int    `toml:"port" json:"port" mapstructure:"port" validate:"gte=0,lte=65535"`
	Database string `toml:"database" json:"database" mapstructure:"database" validate:"required"`
	Username string `toml:"username" json:"username" mapstructure:"username"`
	Password string `toml:"password" json:"password" mapstructure:"password"`

	// TrustedConnection uses integrated authentication instead of Username/Password (sqlserver).
	TrustedConnection bool `toml:"trusted_connection" json:"trusted_connection" mapstructure:"trusted_connection"`
	// Encrypt requests TLS to the server.
	Encrypt bool `toml:"encrypt" json:"encrypt" mapstructure:"encrypt"`
	// Autoconnect connects on startup of the REST service.
	Autoconnect bool `toml:"autoconnect" json:"autoconnect" mapstructure:"autoconnect"`
	// Extras is appended to the generated DSN as driver specific parameters.
	Extras string `toml:"extras" json:"extras" mapstructure:"extras"`

	// Timeouts in seconds.
	ConnectTimeout int `toml:"connect_timeout" json:"connect_timeout" mapstructure:"connect_timeout" validate:"gt=0"`
	TestTimeout    int `toml:"test_timeout" json:"test_timeout" mapstructure:"test_timeout" validate:"gt=0"`
	QueryTimeout   int `toml:"query_timeout" json:"query_timeout" mapstructure:"query_timeout" validate:"gt=0"`
}

// ConnectTimeoutDuration returns ConnectTimeout as a duration.
func (d Database) ConnectTimeoutDuration() time.Duration {
	return time.Duration(d.ConnectTimeout) * time.Second
}

// TestTimeoutDuration returns TestTimeout as a duration.
func (d Database) TestTimeoutDuration() time.Duration {
	return time.Duration(d.TestTimeout) * time.Second
}

// QueryTimeoutDuration returns QueryTimeout as a duration.
func (d Database) QueryTimeoutDuration() time.Duration {
	return time.Duration(d.QueryTimeout) * time.Second
}

// Application holds presentation preferences.
type Application struct {
	WindowWidth  int    `toml:"window_width"  mapstructure:"window_width"  validate:"gte=0"`
	WindowHeight int    `toml:"window_height" mapstructure:"window_height" validate:"gte=0"`
	LogFile      string `toml:"log_file"      mapstructure:"log_file"`
	Theme        string `toml:"theme"         mapstructure:"theme"`
}

// Webserver implements the REST service settings.
type Webserver struct {
	Port int `toml:"port" mapstructure:"port" validate:"gt=0,lte=65535"`
	// APIKeyHash is an argon2id hash. When set, requests need a matching X-API-Key header.
	APIKeyHash   string `toml:"api_key_hash"  mapstructure:"api_key_hash"`
	ShutDownTime int    `toml:"shutdown_time" mapstructure:"shutdown_time" validate:"gte=0"` // seconds
}

// Package dsn builds driver specific Data Source Names from the database configuration.
package dsn

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/config"
)

// Supported drivers.
const (
	DriverSQLServer = "sqlserver"
	DriverMySQL     = "mysql"
	DriverPostgres  = "postgres"
	DriverSQLite    = "sqlite"
)

// ErrUnknownDriver is returned for a driver not listed above.
var ErrUnknownDriver = errors.New("unknown database driver")

// Create builds the DSN for cfg. timeout bounds the dial where the driver supports it.
func Create(cfg config.Database, timeout time.Duration) (string, error) {
	switch cfg.Driver {
	case DriverSQLServer:
		return sqlServer(cfg, timeout), nil
	case DriverMySQL:
		return mySQL(cfg, timeout), nil
	case DriverPostgres:
		return postgres(cfg, timeout), nil
	case DriverSQLite:
		return sqlite(cfg), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

// Describe returns "database on server" for log and status messages.
// It never includes credentials.
func Describe(cfg config.Database) string {
	if cfg.Driver == DriverSQLite {
		return cfg.Database
	}

	return cfg.Database + " on " + hostPort(cfg)
}

func hostPort(cfg config.Database) string {
	if cfg.Port == 0 {
		return cfg.Server
	}

	return net.JoinHostPort(cfg.Server, strconv.Itoa(cfg.Port))
}

func seconds(d time.Duration) int {
	s := int(d.Seconds())
	if s < 1 {
		s = 1
	}

	return s
}

// sqlServer returns a go-mssqldb URL. Without credentials the driver uses
// integrated authentication.
func sqlServer(cfg config.Database, timeout time.Duration) string {
	q := url.Values{}
	q.Set("database", cfg.Database)
	q.Set("dial timeout", strconv.Itoa(seconds(timeout)))
	q.Set("connection timeout", strconv.Itoa(seconds(timeout)))

	if cfg.Encrypt {
		q.Set("encrypt", "true")
	} else {
		q.Set("encrypt", "disable")
	}

	u := url.URL{
		Scheme:   "sqlserver",
		Host:     hostPort(cfg),
		RawQuery: q.Encode(),
	}

	if !cfg.TrustedConnection {
		u.User = url.UserPassword(cfg.Username, cfg.Password)
	}

	return withExtras(u.String(), "&", cfg.Extras)
}

// mySQL returns a go-sql-driver DSN.
func mySQL(cfg config.Database, timeout time.Duration) string {
	params := []string{
		"charset=utf8mb4",
		"parseTime=true",
		"timeout=" + strconv.Itoa(seconds(timeout)) + "s",
	}

	if cfg.Encrypt {
		params = append(params, "tls=true")
	}

	out := fmt.Sprintf("%s:%s@tcp(%s)/%s?%s",
		cfg.Username,
		cfg.Password,
		hostPort(cfg),
		cfg.Database,
		strings.Join(params, "&"),
	)

	return withExtras(out, "&", cfg.Extras)
}

// postgres returns a libpq style keyword/value DSN.
func postgres(cfg config.Database, timeout time.Duration) string {
	sslmode := "disable"
	if cfg.Encrypt {
		sslmode = "require"
	}

	kv := []string{
		"host=" + quote(cfg.Server),
		"dbname=" + quote(cfg.Database),
		"sslmode=" + sslmode,
		"connect_timeout=" + strconv.Itoa(seconds(timeout)),
	}

	if cfg.Port != 0 {
		kv = append(kv, "port="+strconv.Itoa(cfg.Port))
	}

	if cfg.Username != "" {
		kv = append(kv, "user="+quote(cfg.Username))
	}

	if cfg.Password != "" {
		kv = append(kv, "password="+quote(cfg.Password))
	}

	return withExtras(strings.Join(kv, " "), " ", cfg.Extras)
}

// sqlite uses Database as the file name.
func sqlite(cfg config.Database) string {
	sep := "?"
	if strings.Contains(cfg.Database, "?") {
		sep = "&"
	}

	return withExtras(cfg.Database, sep, cfg.Extras)
}

// quote wraps a libpq value in single quotes when needed.
func quote(s string) string {
	if s != "" && !strings.ContainsAny(s, ` '\`) {
		return s
	}

	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)

	return "'" + r.Replace(s) + "'"
}

func withExtras(dsn, sep, extras string) string {
	if extras == "" {
		return dsn
	}

	return dsn + sep + extras
}

package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"

	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/config"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/db/dsn"
	gormlog "github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/logger/adapter/gorm"
)

const slowQueryThreshold = time.Second

// Provider hands out the live session. The record access layer depends on
// this interface only.
type Provider interface {
	Current() (*Session, bool)
}

// Acquire returns the live session and a handle with the query timeout
// applied. It returns ErrNotConnected when no session is open; cancel is
// always safe to call.
func Acquire(ctx context.Context, p Provider) (*Session, *gorm.DB, context.CancelFunc, error) {
	s, ok := p.Current()
	if !ok {
		return nil, nil, func() {}, ErrNotConnected
	}

	db, cancel := s.Conn(ctx)

	return s, db, cancel, nil
}

// Status describes the manager state for presentation layers.
type Status struct {
	Connected bool     `json:"connected"`
	Driver    string   `json:"driver,omitempty"`
	Target    string   `json:"target,omitempty"`
	Missing   []string `json:"missing_tables,omitempty"`
}

// Manager owns at most one live Session.
type Manager struct {
	mu      sync.RWMutex
	current *Session
}

// NewManager returns a disconnected manager.
func NewManager() *Manager {
	return &Manager{}
}

// Connect opens a new session for cfg and replaces the current one, which is
// closed. On failure the current session is left untouched.
func (m *Manager) Connect(ctx context.Context, cfg config.Database) error {
	s, err := Open(ctx, cfg, cfg.ConnectTimeoutDuration())
	if err != nil {
		log.Error().Err(err).Str("target", dsn.Describe(cfg)).Msg("connect failed")
		return err
	}

	s.Probe(ctx)
	m.Use(s)

	log.Info().Str("driver", cfg.Driver).Str("target", s.Target()).Msg("connected")

	return nil
}

// Use installs s as the live session and closes the previous one.
func (m *Manager) Use(s *Session) {
	m.mu.Lock()
	old := m.current
	m.current = s
	m.mu.Unlock()

	if old != nil && old != s {
		if err := old.Close(); err != nil {
			log.Warn().Err(err).Msg("closing previous session failed")
		}
	}
}

// Disconnect closes the live session. It is a no-op when disconnected.
func (m *Manager) Disconnect() error {
	m.mu.Lock()
	old := m.current
	m.current = nil
	m.mu.Unlock()

	if old == nil {
		return nil
	}

	log.Info().Str("target", old.Target()).Msg("disconnected")

	return old.Close()
}

// Current returns the live session.
func (m *Manager) Current() (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.current, m.current != nil
}

// Status reports whether a session is open and which tables it lacks.
func (m *Manager) Status() Status {
	s, ok := m.Current()
	if !ok {
		return Status{}
	}

	return Status{Connected: true, Driver: s.Dialect(), Target: s.Target(), Missing: s.Missing()}
}

// TestConnection opens a throwaway session with the test timeout. The live
// session is not touched.
func (m *Manager) TestConnection(ctx context.Context, cfg config.Database) (string, error) {
	s, err := Open(ctx, cfg, cfg.TestTimeoutDuration())
	if err != nil {
		return "", err
	}

	defer func() {
		_ = s.Close()
	}()

	return fmt.Sprintf("Connection successful: database %s (%s)", s.Target(), cfg.Driver), nil
}

// Open connects to cfg, limited to one open connection, and runs a liveness
// query within timeout.
func Open(ctx context.Context, cfg config.Database, timeout time.Duration) (*Session, error) {
	dataSource, err := dsn.Create(cfg, timeout)
	if err != nil {
		return nil, Wrap("connect", err)
	}

	dialector, err := dialector(cfg.Driver, dataSource)
	if err != nil {
		return nil, Wrap("connect", err)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:               gormlog.New(slowQueryThreshold),
		DisableAutomaticPing: true,
	})
	if err != nil {
		return nil, Wrap("connect", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, Wrap("connect", err)
	}

	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var alive int
	if err = db.WithContext(pingCtx).Raw("SELECT 1").Scan(&alive).Error; err != nil {
		_ = sqlDB.Close()
		return nil, Wrap("connect", err)
	}

	return New(db, dsn.Describe(cfg), cfg.QueryTimeoutDuration()), nil
}

func dialector(driver, dataSource string) (gorm.Dialector, error) {
	switch driver {
	case dsn.DriverSQLServer:
		return sqlserver.Open(dataSource), nil
	case dsn.DriverMySQL:
		return mysql.Open(dataSource), nil
	case dsn.DriverPostgres:
		return postgres.Open(dataSource), nil
	case dsn.DriverSQLite:
		return sqlite.Open(dataSource), nil
	default:
		return nil, fmt.Errorf("%w: %q", dsn.ErrUnknownDriver, driver)
	}
}

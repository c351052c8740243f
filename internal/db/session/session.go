// Package session owns the database session used by the record access layer.
//
// A Manager holds at most one live Session. Reconnecting replaces the Session
// value instead of mutating it, so callers holding the old value see a closed
// session rather than a half configured one.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/db/models"
)

// Session is one open database connection plus the table presence probed at
// connect time.
type Session struct {
	db      *gorm.DB
	target  string
	timeout time.Duration

	mu     sync.RWMutex
	tables map[string]bool
}

// New wraps an open gorm handle. Call Probe before relying on HasTable.
func New(db *gorm.DB, target string, queryTimeout time.Duration) *Session {
	return &Session{
		db:      db,
		target:  target,
		timeout: queryTimeout,
		tables:  map[string]bool{},
	}
}

// Conn returns a handle bound to ctx with the per-query timeout applied.
// The cancel func must be called when the statements are done.
func (s *Session) Conn(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	if s.timeout <= 0 {
		ctx, cancel := context.WithCancel(ctx)
		return s.db.WithContext(ctx), cancel
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)

	return s.db.WithContext(ctx), cancel
}

// Target describes the connected database, without credentials.
func (s *Session) Target() string {
	return s.target
}

// Dialect is the gorm dialector name, e.g. "sqlserver" or "sqlite".
func (s *Session) Dialect() string {
	return s.db.Dialector.Name()
}

// Probe checks which known tables exist and logs the missing ones.
func (s *Session) Probe(ctx context.Context) []string {
	db, cancel := s.Conn(ctx)
	defer cancel()

	tables := make(map[string]bool, len(models.Tables))
	missing := make([]string, 0)

	for _, name := range models.Tables {
		tables[name] = db.Migrator().HasTable(name)
		if !tables[name] {
			missing = append(missing, name)
		}
	}

	s.mu.Lock()
	s.tables = tables
	s.mu.Unlock()

	if len(missing) > 0 {
		log.Warn().Strs("tables", missing).Str("target", s.target).Msg("tables missing, dependent features disabled")
	}

	return missing
}

// HasTable reports whether name existed at the last Probe.
func (s *Session) HasTable(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.tables[name]
}

// Missing lists known tables absent at the last Probe.
func (s *Session) Missing() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []string

	for _, name := range models.Tables {
		if !s.tables[name] {
			out = append(out, name)
		}
	}

	return out
}

// Close closes the underlying connection pool.
func (s *Session) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return Wrap("close", err)
	}

	return Wrap("close", sqlDB.Close())
}

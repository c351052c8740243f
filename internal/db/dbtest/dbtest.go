// Package dbtest provides an in-memory FreeRADIUS database for tests.
package dbtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/config"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/db/schema"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/db/session"
)

// Config returns a sqlite in-memory database config. The session keeps a
// single connection, so the database lives as long as the session.
func Config() config.Database {
	return config.Database{
		Driver:         "sqlite",
		Database:       ":memory:",
		ConnectTimeout: 5,
		TestTimeout:    5,
		QueryTimeout:   5,
	}
}

// NewManager connects a manager to a fresh in-memory database with every
// table created, or only the tables named in only, which lets tests run
// against a partial schema.
func NewManager(t *testing.T, only ...string) *session.Manager {
	t.Helper()

	ctx := context.Background()
	m := session.NewManager()
	require.NoError(t, m.Connect(ctx, Config()))

	t.Cleanup(func() {
		_ = m.Disconnect()
	})

	s, _ := m.Current()

	if len(only) == 0 {
		_, err := schema.Ensure(ctx, s)
		require.NoError(t, err)

		return m
	}

	require.NoError(t, schema.Create(ctx, s, only...))

	return m
}

// Count returns the number of rows in table matching where.
func Count(t *testing.T, m *session.Manager, table, where string, args ...any) int64 {
	t.Helper()

	s, ok := m.Current()
	require.True(t, ok)

	db, cancel := s.Conn(context.Background())
	defer cancel()

	var n int64
	require.NoError(t, db.Table(table).Where(where, args...).Count(&n).Error)

	return n
}

// Exec runs a raw statement, used to seed legacy rows.
func Exec(t *testing.T, m *session.Manager, sql string, args ...any) {
	t.Helper()

	s, ok := m.Current()
	require.True(t, ok)

	db, cancel := s.Conn(context.Background())
	defer cancel()

	require.NoError(t, db.Exec(sql, args...).Error)
}

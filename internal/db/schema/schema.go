// Package schema creates the FreeRADIUS tables a database is missing.
//
// Existing tables are never altered: FreeRADIUS ships its own schema files
// and the server may rely on columns this tool does not model.
package schema

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/rs/zerolog/log"

	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/db/models"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/db/session"
)

// ErrUnknownTable is returned by Create for a name outside models.Tables.
var ErrUnknownTable = errors.New("unknown table")

// Ensure creates every table in models.Tables that does not exist yet,
// refreshes the session's table probe and returns the created table names.
func Ensure(ctx context.Context, s *session.Session) ([]string, error) {
	return create(ctx, s, models.Tables)
}

// Create creates the named tables if they are missing.
func Create(ctx context.Context, s *session.Session, names ...string) error {
	for _, name := range names {
		if !slices.Contains(models.Tables, name) {
			return fmt.Errorf("%w: %s", ErrUnknownTable, name)
		}
	}

	_, err := create(ctx, s, names)

	return err
}

func create(ctx context.Context, s *session.Session, names []string) ([]string, error) {
	db, cancel := s.Conn(ctx)
	defer cancel()

	var created []string

	for i, model := range models.All() {
		name := models.Tables[i]
		if !slices.Contains(names, name) || db.Migrator().HasTable(name) {
			continue
		}

		if err := db.Migrator().CreateTable(model); err != nil {
			log.Error().Err(err).Str("table", name).Msg("create table failed")
			return created, session.Wrap("create table "+name, err)
		}

		log.Info().Str("table", name).Msg("table created")

		created = append(created, name)
	}

	s.Probe(ctx)

	return created, nil
}

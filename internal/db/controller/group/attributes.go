package group

import (
	"context"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/db/controller/attribute"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/db/session"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/radius"
)

// AddAttribute adds one attribute row to the group. Group attributes may be
// defined before the group has members, so existence is not checked.
func (s *Service) AddAttribute(ctx context.Context, name string, kind radius.Kind, a radius.Attribute) error {
	db, tbl, cancel, err := s.attributeTable(ctx, name, kind, a)
	defer cancel()

	if err != nil {
		return err
	}

	found, err := attribute.Exists(db, tbl, name, a)
	if err != nil {
		return fail("add group attribute", err)
	}

	if found {
		return radius.ErrAttributeExists
	}

	if err = attribute.Add(db, tbl, name, a); err != nil {
		return fail("add group attribute", err)
	}

	log.Info().Str("group", name).Str("kind", string(kind)).Stringer("attribute", a).Msg("group attribute added")

	return nil
}

// DeleteAttribute removes the rows equal to a.
func (s *Service) DeleteAttribute(ctx context.Context, name string, kind radius.Kind, a radius.Attribute) error {
	db, tbl, cancel, err := s.attributeTable(ctx, name, kind, a)
	defer cancel()

	if err != nil {
		return err
	}

	n, err := attribute.Delete(db, tbl, name, a)
	if err != nil {
		return fail("delete group attribute", err)
	}

	if n == 0 {
		return radius.ErrAttributeNotFound
	}

	log.Info().Str("group", name).Str("kind", string(kind)).Stringer("attribute", a).Msg("group attribute deleted")

	return nil
}

// UpdateAttribute replaces old with updated in one transaction.
func (s *Service) UpdateAttribute(ctx context.Context, name string, kind radius.Kind, old, updated radius.Attribute) error {
	db, tbl, cancel, err := s.attributeTable(ctx, name, kind, updated)
	defer cancel()

	if err != nil {
		return err
	}

	if err = attribute.Update(db, tbl, name, old, updated); err != nil {
		return fail("update group attribute", err)
	}

	log.Info().Str("group", name).Str("kind", string(kind)).
		Stringer("old", old).Stringer("new", updated).Msg("group attribute updated")

	return nil
}

// attributeTable validates a, resolves the group table for kind and acquires
// the session. The returned cancel func is never nil.
func (s *Service) attributeTable(
	ctx context.Context, name string, kind radius.Kind, a radius.Attribute,
) (*gorm.DB, attribute.Table, context.CancelFunc, error) {
	noop := func() {}

	tbl, err := attribute.ForGroup(kind)
	if err != nil {
		return nil, tbl, noop, err
	}

	if err = radius.Validate(struct {
		Group string `validate:"required,max=64,radiusname"`
	}{name}); err != nil {
		return nil, tbl, noop, err
	}

	if err = radius.ValidateAttribute(a); err != nil {
		return nil, tbl, noop, err
	}

	sess, db, cancel, err := session.Acquire(ctx, s.sessions)
	if err != nil {
		return nil, tbl, cancel, err
	}

	if err = session.RequireTable(sess, tbl.Name); err != nil {
		return nil, tbl, cancel, err
	}

	return db, tbl, cancel, nil
}

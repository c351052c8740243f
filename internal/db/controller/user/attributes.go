package user

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/db/controller/attribute"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/db/session"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/radius"
)

// Attributes returns the user's check and reply attributes ordered by name.
// The credential row is not part of the check list.
func (s *Service) Attributes(ctx context.Context, username string) (check, reply []radius.Attribute, err error) {
	check, reply = []radius.Attribute{}, []radius.Attribute{}

	sess, db, cancel, err := session.Acquire(ctx, s.sessions)
	defer cancel()

	if err != nil {
		return check, reply, nil
	}

	if sess.HasTable(attribute.UserCheck.Name) {
		if check, err = attribute.List(db, attribute.UserCheck, username, radius.AttrPassword); err != nil {
			return []radius.Attribute{}, reply, fail("list check attributes", err)
		}
	}

	if sess.HasTable(attribute.UserReply.Name) {
		if reply, err = attribute.List(db, attribute.UserReply, username); err != nil {
			return check, []radius.Attribute{}, fail("list reply attributes", err)
		}
	}

	return check, reply, nil
}

// AddAttribute adds one attribute row for an existing user. Adding a row
// that is already present returns radius.ErrAttributeExists.
func (s *Service) AddAttribute(ctx context.Context, username string, kind radius.Kind, a radius.Attribute) error {
	tbl, err := checkAttribute(kind, a)
	if err != nil {
		return err
	}

	sess, db, cancel, err := s.existing(ctx, username)
	defer cancel()

	if err != nil {
		return err
	}

	if err = session.RequireTable(sess, tbl.Name); err != nil {
		return err
	}

	found, err := attribute.Exists(db, tbl, username, a)
	if err != nil {
		return fail("add attribute", err)
	}

	if found {
		return radius.ErrAttributeExists
	}

	if err = attribute.Add(db, tbl, username, a); err != nil {
		return fail("add attribute", err)
	}

	log.Info().Str("username", username).Str("kind", string(kind)).Stringer("attribute", a).Msg("attribute added")

	return nil
}

// DeleteAttribute removes the rows equal to a.
func (s *Service) DeleteAttribute(ctx context.Context, username string, kind radius.Kind, a radius.Attribute) error {
	tbl, err := checkAttribute(kind, a)
	if err != nil {
		return err
	}

	sess, db, cancel, err := session.Acquire(ctx, s.sessions)
	defer cancel()

	if err != nil {
		return err
	}

	if err = session.RequireTable(sess, tbl.Name); err != nil {
		return err
	}

	n, err := attribute.Delete(db, tbl, username, a)
	if err != nil {
		return fail("delete attribute", err)
	}

	if n == 0 {
		return radius.ErrAttributeNotFound
	}

	log.Info().Str("username", username).Str("kind", string(kind)).Stringer("attribute", a).Msg("attribute deleted")

	return nil
}

// UpdateAttribute replaces old with updated atomically.
func (s *Service) UpdateAttribute(ctx context.Context, username string, kind radius.Kind, old, updated radius.Attribute) error {
	tbl, err := checkAttribute(kind, updated)
	if err != nil {
		return err
	}

	if strings.EqualFold(old.Name, radius.AttrPassword) && kind == radius.KindCheck {
		return radius.ErrCredentialAttribute
	}

	sess, db, cancel, err := session.Acquire(ctx, s.sessions)
	defer cancel()

	if err != nil {
		return err
	}

	if err = session.RequireTable(sess, tbl.Name); err != nil {
		return err
	}

	if sameAttribute(old, updated) {
		found, err := attribute.Exists(db, tbl, username, old)
		if err != nil {
			return fail("update attribute", err)
		}

		if !found {
			return radius.ErrAttributeNotFound
		}

		return nil
	}

	if err = attribute.Update(db, tbl, username, old, updated); err != nil {
		return fail("update attribute", err)
	}

	log.Info().Str("username", username).Str("kind", string(kind)).
		Stringer("old", old).Stringer("new", updated).Msg("attribute updated")

	return nil
}

// checkAttribute validates a and resolves the user table for kind. The
// credential row can only be changed through SetPassword.
func checkAttribute(kind radius.Kind, a radius.Attribute) (attribute.Table, error) {
	tbl, err := attribute.ForUser(kind)
	if err != nil {
		return tbl, err
	}

	if err = radius.ValidateAttribute(a); err != nil {
		return tbl, err
	}

	if kind == radius.KindCheck && strings.EqualFold(a.Name, radius.AttrPassword) {
		return tbl, radius.ErrCredentialAttribute
	}

	return tbl, nil
}

func sameAttribute(a, b radius.Attribute) bool {
	return a.Name == b.Name && a.Operator == b.Operator && a.Value == b.Value
}

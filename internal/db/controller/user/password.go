package user

import (
	"context"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/db/controller/attribute"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/db/models"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/db/session"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/radius"
)

// SetPassword replaces every *Password check row of username with a single
// Cleartext-Password row, in one transaction.
func (s *Service) SetPassword(ctx context.Context, username, password string) error {
	if password == "" {
		return radius.ErrEmptyPassword
	}

	_, db, cancel, err := s.existing(ctx, username)
	defer cancel()

	if err != nil {
		return err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("username = ? AND attribute LIKE ?", username, "%Password").Delete(&models.RadCheck{}).Error
		if err != nil {
			return err
		}

		return attribute.Add(tx, attribute.UserCheck, username,
			radius.Attribute{Name: radius.AttrPassword, Operator: radius.OpSet, Value: password})
	})
	if err != nil {
		return fail("set password", err)
	}

	log.Info().Str("username", username).Msg("password changed")

	return nil
}

// SetBlocked adds the Login-Time := Never marker if it is absent, or removes
// every marker row. Blocking twice leaves a single marker.
func (s *Service) SetBlocked(ctx context.Context, username string, blocked bool) error {
	_, db, cancel, err := s.existing(ctx, username)
	defer cancel()

	if err != nil {
		return err
	}

	marker := radius.BlockMarker()

	if blocked {
		var found bool

		found, err = attribute.Exists(db, attribute.UserCheck, username, marker)
		if err == nil && !found {
			err = attribute.Add(db, attribute.UserCheck, username, marker)
		}
	} else {
		err = db.Where(credentialQuery+" AND value = ?", username, marker.Name, marker.Value).
			Delete(&models.RadCheck{}).Error
	}

	if err != nil {
		return fail("set blocked", err)
	}

	log.Info().Str("username", username).Bool("blocked", blocked).Msg("block status changed")

	return nil
}

// SetGroup replaces the user's memberships with one row for group, using the
// group's priority when it is known.
func (s *Service) SetGroup(ctx context.Context, username, group string) error {
	if err := radius.Validate(struct {
		Group string `validate:"required,max=64,radiusname"`
	}{group}); err != nil {
		return err
	}

	sess, db, cancel, err := s.existing(ctx, username)
	defer cancel()

	if err != nil {
		return err
	}

	if err = session.RequireTable(sess, models.TableRadUserGroup); err != nil {
		return err
	}

	priority := groupPriority(db, sess, group)

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("username = ?", username).Delete(&models.RadUserGroup{}).Error; err != nil {
			return err
		}

		return tx.Create(&models.RadUserGroup{Username: username, Groupname: group, Priority: priority}).Error
	})
	if err != nil {
		return fail("set group", err)
	}

	log.Info().Str("username", username).Str("group", group).Msg("group changed")

	return nil
}

// existing acquires the session and checks that username exists.
func (s *Service) existing(ctx context.Context, username string) (*session.Session, *gorm.DB, context.CancelFunc, error) {
	sess, db, cancel, err := session.Acquire(ctx, s.sessions)
	if err != nil {
		return nil, nil, cancel, err
	}

	if err = session.RequireTable(sess, models.TableRadCheck); err != nil {
		return nil, nil, cancel, err
	}

	found, err := exists(db, username)
	if err != nil {
		return nil, nil, cancel, fail("user exists", err)
	}

	if !found {
		return nil, nil, cancel, radius.ErrUserNotFound
	}

	return sess, db, cancel, nil
}

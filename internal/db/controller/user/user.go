// Package user implements the record access operations on RADIUS users.
//
// A user exists iff it has a Cleartext-Password row in radcheck. Listing
// functions return an empty result while disconnected; mutating functions
// return session.ErrNotConnected.
package user

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/db/controller/attribute"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/db/models"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/db/session"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/radius"
)

const (
	credentialQuery = "username = ? AND attribute = ?"
	lastLoginFormat = "2006-01-02 15:04"
)

// Service implements the user operations on the live session.
type Service struct {
	sessions session.Provider
}

// New returns a Service using the sessions handed out by p.
func New(p session.Provider) *Service {
	return &Service{sessions: p}
}

type listRow struct {
	Username  string         `gorm:"column:username"`
	Groupname sql.NullString `gorm:"column:groupname"`
	LastLogin sql.NullString `gorm:"column:last_login"`
	Blocked   int64          `gorm:"column:blocked"`
}

// List returns every user once, ordered by username, with group, status and
// last login derived in a single query. Membership and accounting are only
// joined when their tables exist.
func (s *Service) List(ctx context.Context) ([]radius.User, error) {
	sess, db, cancel, err := session.Acquire(ctx, s.sessions)
	defer cancel()

	if err != nil || !sess.HasTable(models.TableRadCheck) {
		return []radius.User{}, nil
	}

	cols := []string{"rc.username AS username"}
	q := db.Table(models.TableRadCheck+" AS rc").Where("rc.attribute = ?", radius.AttrPassword)

	if sess.HasTable(models.TableRadUserGroup) {
		q = q.Joins("LEFT JOIN radusergroup AS rug ON rug.username = rc.username")
		cols = append(cols, "MIN(rug.groupname) AS groupname")
	}

	if sess.HasTable(models.TableRadAcct) {
		q = q.Joins("LEFT JOIN (SELECT username, MAX(acctstarttime) AS started FROM radacct GROUP BY username) AS ra" +
			" ON ra.username = rc.username")
		cols = append(cols, "MAX(ra.started) AS last_login")
	}

	q = q.Joins("LEFT JOIN radcheck AS blk ON blk.username = rc.username AND blk.attribute = ? AND blk.value = ?",
		radius.AttrLoginTime, radius.BlockedValue)
	cols = append(cols, "COUNT(blk.attribute) AS blocked")

	var rows []listRow

	err = q.Select(strings.Join(cols, ", ")).Group("rc.username").Order("rc.username").Scan(&rows).Error
	if err != nil {
		return []radius.User{}, fail("list users", err)
	}

	users := make([]radius.User, 0, len(rows))

	for _, r := range rows {
		u := radius.User{
			Username:  r.Username,
			Group:     radius.DefaultGroup,
			Status:    radius.StatusActive,
			LastLogin: FormatLastLogin(r.LastLogin),
		}

		if r.Groupname.Valid && r.Groupname.String != "" {
			u.Group = r.Groupname.String
		}

		if r.Blocked > 0 {
			u.Status = radius.StatusBlocked
		}

		users = append(users, u)
	}

	return users, nil
}

var lastLoginLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
}

// FormatLastLogin renders an accounting start time as "2006-01-02 15:04", or
// "never" when there is none. Drivers return either time.Time or text, so
// the column is scanned as a string and parsed here.
func FormatLastLogin(v sql.NullString) string {
	if !v.Valid || strings.TrimSpace(v.String) == "" {
		return radius.NeverLoggedIn
	}

	for _, layout := range lastLoginLayouts {
		if t, err := time.Parse(layout, v.String); err == nil {
			return t.Format(lastLoginFormat)
		}
	}

	if len(v.String) > len(lastLoginFormat) {
		return v.String[:len(lastLoginFormat)]
	}

	return v.String
}

// Exists reports whether username has a credential row.
func (s *Service) Exists(ctx context.Context, username string) (bool, error) {
	sess, db, cancel, err := session.Acquire(ctx, s.sessions)
	defer cancel()

	if err != nil || !sess.HasTable(models.TableRadCheck) {
		return false, nil
	}

	ok, err := exists(db, username)
	if err != nil {
		return false, fail("user exists", err)
	}

	return ok, nil
}

func exists(db *gorm.DB, username string) (bool, error) {
	var n int64

	err := db.Model(&models.RadCheck{}).Where(credentialQuery, username, radius.AttrPassword).Count(&n).Error

	return n > 0, err
}

// Create validates u and writes credential, membership, optional check and
// reply rows and the extra attributes in one transaction. Extras without a
// kind are reply attributes.
func (s *Service) Create(ctx context.Context, u radius.User, extra []radius.Attribute) error {
	if u.Group == "" {
		u.Group = radius.DefaultGroup
	}

	if err := radius.ValidateUser(u); err != nil {
		return err
	}

	checks := u.CheckRows()
	replies := u.ReplyRows()

	for _, a := range extra {
		if err := radius.ValidateAttribute(a); err != nil {
			return err
		}

		if strings.EqualFold(a.Name, radius.AttrPassword) {
			return radius.ErrCredentialAttribute
		}

		if a.Kind == radius.KindCheck {
			checks = append(checks, a)
		} else {
			replies = append(replies, a)
		}
	}

	sess, db, cancel, err := session.Acquire(ctx, s.sessions)
	defer cancel()

	if err != nil {
		return err
	}

	if err = session.RequireTable(sess, models.TableRadCheck); err != nil {
		return err
	}

	if len(replies) > 0 {
		if err = session.RequireTable(sess, models.TableRadReply); err != nil {
			return err
		}
	}

	found, err := exists(db, u.Username)
	if err != nil {
		return fail("create user", err)
	}

	if found {
		return radius.ErrUserExists
	}

	priority := groupPriority(db, sess, u.Group)
	withGroup := sess.HasTable(models.TableRadUserGroup)

	if !withGroup {
		log.Warn().Str("username", u.Username).Msg("radusergroup missing, user created without group")
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		for _, a := range checks {
			if err := attribute.Add(tx, attribute.UserCheck, u.Username, a); err != nil {
				return err
			}
		}

		if withGroup {
			membership := models.RadUserGroup{Username: u.Username, Groupname: u.Group, Priority: priority}
			if err := tx.Create(&membership).Error; err != nil {
				return err
			}
		}

		for _, a := range replies {
			if err := attribute.Add(tx, attribute.UserReply, u.Username, a); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return fail("create user", err)
	}

	log.Info().Str("username", u.Username).Str("group", u.Group).Msg("user created")

	return nil
}

// groupPriority returns the group's priority from radgroups, or the default.
func groupPriority(db *gorm.DB, sess *session.Session, group string) int {
	if !sess.HasTable(models.TableRadGroups) {
		return radius.DefaultPriority
	}

	var priorities []int

	err := db.Model(&models.RadGroup{}).Where("groupname = ?", group).Pluck("priority", &priorities).Error
	if err != nil {
		log.Warn().Err(err).Str("group", group).Msg("group priority lookup failed, using default")
		return radius.DefaultPriority
	}

	if len(priorities) == 0 || priorities[0] < radius.MinPriority {
		return radius.DefaultPriority
	}

	return priorities[0]
}

// Delete removes the user's rows from radcheck, radreply, radusergroup and
// radacct. Each table is handled on its own: absent tables are skipped and a
// failing table does not stop the others. Accounting history is deleted too.
func (s *Service) Delete(ctx context.Context, username string) error {
	sess, db, cancel, err := session.Acquire(ctx, s.sessions)
	defer cancel()

	if err != nil {
		return err
	}

	steps := []struct {
		table string
		model any
	}{
		{models.TableRadCheck, &models.RadCheck{}},
		{models.TableRadReply, &models.RadReply{}},
		{models.TableRadUserGroup, &models.RadUserGroup{}},
		{models.TableRadAcct, &models.RadAcct{}},
	}

	var (
		removed int64
		errs    []error
	)

	for _, step := range steps {
		if !sess.HasTable(step.table) {
			log.Warn().Str("table", step.table).Str("username", username).Msg("table missing, skipped on delete")
			continue
		}

		res := db.Where("username = ?", username).Delete(step.model)
		if res.Error != nil {
			log.Error().Err(res.Error).Str("table", step.table).Str("username", username).Msg("delete failed")
			errs = append(errs, session.Wrap(step.table, res.Error))

			continue
		}

		removed += res.RowsAffected
	}

	if len(errs) > 0 {
		return session.Wrap("delete user", errors.Join(errs...))
	}

	if removed == 0 {
		return radius.ErrUserNotFound
	}

	log.Info().Str("username", username).Int64("rows", removed).Msg("user deleted")

	return nil
}

// fail logs database errors and wraps them as *session.Error. Domain errors
// are returned unchanged.
func fail(op string, err error) error {
	if radius.IsDomainError(err) || errors.Is(err, session.ErrNotConnected) {
		return err
	}

	log.Error().Err(err).Str("op", op).Msg("database operation failed")

	return session.Wrap(op, err)
}

// Package group implements the record access operations on RADIUS groups.
//
// A group exists when it has a radgroups row or any membership row. Legacy
// placeholder memberships ("_group_<name>") keep their group visible but are
// never counted or listed as members.
package group

import (
	"context"
	"errors"
	"sort"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/db/controller/attribute"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/db/models"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/db/session"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/radius"
)

const (
	groupQuery = "groupname = ?"
	// realMember excludes placeholder rows; '!' escapes the LIKE wildcard '_'.
	realMember = "username NOT LIKE ? ESCAPE '!'"
)

var placeholderPattern = "!_group!_%"

// Service implements the group operations on the live session.
type Service struct {
	sessions session.Provider
}

// New returns a Service using the sessions handed out by p.
func New(p session.Provider) *Service {
	return &Service{sessions: p}
}

type aggregateRow struct {
	Groupname string `gorm:"column:groupname"`
	UserCount int    `gorm:"column:user_count"`
	Priority  int    `gorm:"column:priority"`
}

// List returns every group ordered by name: the radgroups rows merged with
// the groups found in radusergroup.
func (s *Service) List(ctx context.Context) ([]radius.Group, error) {
	sess, db, cancel, err := session.Acquire(ctx, s.sessions)
	defer cancel()

	if err != nil {
		return []radius.Group{}, nil
	}

	groups := map[string]*radius.Group{}

	if sess.HasTable(models.TableRadGroups) {
		var rows []models.RadGroup
		if err = db.Order("groupname").Find(&rows).Error; err != nil {
			return []radius.Group{}, fail("list groups", err)
		}

		for _, r := range rows {
			groups[r.Groupname] = &radius.Group{Name: r.Groupname, DefaultPriority: r.Priority}
		}
	}

	if sess.HasTable(models.TableRadUserGroup) {
		var rows []aggregateRow

		err = db.Model(&models.RadUserGroup{}).
			Select("groupname, "+
				"COUNT(DISTINCT CASE WHEN username NOT LIKE ? ESCAPE '!' THEN username END) AS user_count, "+
				"MIN(priority) AS priority", placeholderPattern).
			Group("groupname").
			Scan(&rows).Error
		if err != nil {
			return []radius.Group{}, fail("list groups", err)
		}

		for _, r := range rows {
			g, ok := groups[r.Groupname]
			if !ok {
				g = &radius.Group{Name: r.Groupname, DefaultPriority: r.Priority}
				groups[r.Groupname] = g
			}

			g.UserCount = r.UserCount
		}
	}

	out := make([]radius.Group, 0, len(groups))

	for _, g := range groups {
		if g.DefaultPriority < radius.MinPriority {
			g.DefaultPriority = radius.DefaultPriority
		}

		out = append(out, *g)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})

	return out, nil
}

// Exists reports whether name is a known group.
func (s *Service) Exists(ctx context.Context, name string) (bool, error) {
	sess, db, cancel, err := session.Acquire(ctx, s.sessions)
	defer cancel()

	if err != nil {
		return false, nil
	}

	ok, err := exists(db, sess, name)
	if err != nil {
		return false, fail("group exists", err)
	}

	return ok, nil
}

func exists(db *gorm.DB, sess *session.Session, name string) (bool, error) {
	for _, model := range []any{&models.RadGroup{}, &models.RadUserGroup{}} {
		if !hasModelTable(sess, model) {
			continue
		}

		var n int64
		if err := db.Model(model).Where(groupQuery, name).Count(&n).Error; err != nil {
			return false, err
		}

		if n > 0 {
			return true, nil
		}
	}

	return false, nil
}

func hasModelTable(sess *session.Session, model any) bool {
	switch model.(type) {
	case *models.RadGroup:
		return sess.HasTable(models.TableRadGroups)
	case *models.RadUserGroup:
		return sess.HasTable(models.TableRadUserGroup)
	default:
		return false
	}
}

// Create records a new group in radgroups. Without that table a legacy
// placeholder membership is written instead.
func (s *Service) Create(ctx context.Context, g radius.Group) error {
	if g.DefaultPriority == 0 {
		g.DefaultPriority = radius.DefaultPriority
	}

	if err := radius.ValidateGroup(g); err != nil {
		return err
	}

	sess, db, cancel, err := session.Acquire(ctx, s.sessions)
	defer cancel()

	if err != nil {
		return err
	}

	found, err := exists(db, sess, g.Name)
	if err != nil {
		return fail("create group", err)
	}

	if found {
		return radius.ErrGroupExists
	}

	switch {
	case sess.HasTable(models.TableRadGroups):
		err = db.Create(&models.RadGroup{Groupname: g.Name, Priority: g.DefaultPriority}).Error
	case sess.HasTable(models.TableRadUserGroup):
		log.Warn().Str("group", g.Name).Msg("radgroups missing, writing placeholder membership")

		err = db.Create(&models.RadUserGroup{
			Username:  radius.Placeholder(g.Name),
			Groupname: g.Name,
			Priority:  g.DefaultPriority,
		}).Error
	default:
		return session.RequireTable(sess, models.TableRadGroups)
	}

	if err != nil {
		return fail("create group", err)
	}

	log.Info().Str("group", g.Name).Int("priority", g.DefaultPriority).Msg("group created")

	return nil
}

// Delete removes the group's memberships, its check and reply attributes and
// its radgroups row. The statements run one after the other without a
// transaction; a failing table is logged and reported after the rest ran.
// Members are left without a group.
func (s *Service) Delete(ctx context.Context, name string) error {
	if radius.IsSystemGroup(name) {
		return radius.ErrSystemGroup
	}

	sess, db, cancel, err := session.Acquire(ctx, s.sessions)
	defer cancel()

	if err != nil {
		return err
	}

	found, err := exists(db, sess, name)
	if err != nil {
		return fail("delete group", err)
	}

	if !found {
		return radius.ErrGroupNotFound
	}

	deleteWhere := func(model any) func(*gorm.DB) error {
		return func(db *gorm.DB) error {
			return db.Where(groupQuery, name).Delete(model).Error
		}
	}

	deleteAttributes := func(tbl attribute.Table) func(*gorm.DB) error {
		return func(db *gorm.DB) error {
			_, err := attribute.DeleteOwner(db, tbl, name)
			return err
		}
	}

	steps := []struct {
		table string
		run   func(*gorm.DB) error
	}{
		{models.TableRadUserGroup, deleteWhere(&models.RadUserGroup{})},
		{attribute.GroupCheck.Name, deleteAttributes(attribute.GroupCheck)},
		{attribute.GroupReply.Name, deleteAttributes(attribute.GroupReply)},
		{models.TableRadGroups, deleteWhere(&models.RadGroup{})},
	}

	var errs []error

	for _, step := range steps {
		if !sess.HasTable(step.table) {
			continue
		}

		if err = step.run(db); err != nil {
			log.Error().Err(err).Str("table", step.table).Str("group", name).Msg("delete failed")
			errs = append(errs, session.Wrap(step.table, err))
		}
	}

	if len(errs) > 0 {
		return session.Wrap("delete group", errors.Join(errs...))
	}

	log.Info().Str("group", name).Msg("group deleted")

	return nil
}

// Members returns the usernames in the group, placeholders excluded.
func (s *Service) Members(ctx context.Context, name string) ([]string, error) {
	sess, db, cancel, err := session.Acquire(ctx, s.sessions)
	defer cancel()

	if err != nil || !sess.HasTable(models.TableRadUserGroup) {
		return []string{}, nil
	}

	members := []string{}

	err = db.Model(&models.RadUserGroup{}).
		Where(groupQuery, name).
		Where(realMember, placeholderPattern).
		Distinct("username").
		Order("username").
		Pluck("username", &members).Error
	if err != nil {
		return []string{}, fail("list members", err)
	}

	return members, nil
}

// Attributes returns the group's check and reply attributes ordered by name.
func (s *Service) Attributes(ctx context.Context, name string) (check, reply []radius.Attribute, err error) {
	check, reply = []radius.Attribute{}, []radius.Attribute{}

	sess, db, cancel, err := session.Acquire(ctx, s.sessions)
	defer cancel()

	if err != nil {
		return check, reply, nil
	}

	if sess.HasTable(attribute.GroupCheck.Name) {
		if check, err = attribute.List(db, attribute.GroupCheck, name); err != nil {
			return []radius.Attribute{}, reply, fail("list group check attributes", err)
		}
	}

	if sess.HasTable(attribute.GroupReply.Name) {
		if reply, err = attribute.List(db, attribute.GroupReply, name); err != nil {
			return check, []radius.Attribute{}, fail("list group reply attributes", err)
		}
	}

	return check, reply, nil
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

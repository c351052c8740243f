package user

import (
	"context"
	"database/sql"
	"strings"

	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/db/models"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/db/session"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/radius"
)

type credentialRow struct {
	Username   string         `gorm:"column:username"`
	Password   string         `gorm:"column:password"`
	Groupname  sql.NullString `gorm:"column:groupname"`
	Expiration sql.NullString `gorm:"column:expiration"`
}

// Credentials returns username, cleartext password, group and expiration of
// every user, ordered by username. The result holds plaintext secrets.
func (s *Service) Credentials(ctx context.Context) ([]radius.User, error) {
	sess, db, cancel, err := session.Acquire(ctx, s.sessions)
	defer cancel()

	if err != nil {
		return nil, err
	}

	if err = session.RequireTable(sess, models.TableRadCheck); err != nil {
		return nil, err
	}

	cols := []string{"rc.username AS username", "MIN(rc.value) AS password"}
	q := db.Table(models.TableRadCheck+" AS rc").Where("rc.attribute = ?", radius.AttrPassword)

	if sess.HasTable(models.TableRadUserGroup) {
		q = q.Joins("LEFT JOIN radusergroup AS rug ON rug.username = rc.username")
		cols = append(cols, "MIN(rug.groupname) AS groupname")
	}

	q = q.Joins("LEFT JOIN radcheck AS ex ON ex.username = rc.username AND ex.attribute = ?", radius.AttrExpiration)
	cols = append(cols, "MAX(ex.value) AS expiration")

	var rows []credentialRow

	err = q.Select(strings.Join(cols, ", ")).Group("rc.username").Order("rc.username").Scan(&rows).Error
	if err != nil {
		return nil, fail("export users", err)
	}

	users := make([]radius.User, 0, len(rows))

	for _, r := range rows {
		u := radius.User{Username: r.Username, Password: r.Password, Group: radius.DefaultGroup}

		if r.Groupname.Valid && r.Groupname.String != "" {
			u.Group = r.Groupname.String
		}

		if r.Expiration.Valid {
			u.Expiration = r.Expiration.String
		}

		users = append(users, u)
	}

	return users, nil
}

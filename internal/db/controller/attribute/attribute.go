// Package attribute provides CRUD over the four FreeRADIUS attribute tables.
// Rows carry no usable key, so they are addressed by owner, attribute, op and value.
package attribute

import (
	"errors"

	"gorm.io/gorm"

	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/db/models"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/radius"
)

// ErrDBNil is returned when the database handle is nil.
var ErrDBNil = errors.New("database connection is nil")

// Table is one attribute table and the column holding its owner.
type Table struct {
	Name  string
	Owner string
	row   func(owner string, a radius.Attribute) any
}

var (
	// UserCheck is radcheck.
	UserCheck = Table{Name: models.TableRadCheck, Owner: "username", row: func(o string, a radius.Attribute) any {
		return &models.RadCheck{Username: o, Attribute: a.Name, Op: string(a.Operator), Value: a.Value}
	}}
	// UserReply is radreply.
	UserReply = Table{Name: models.TableRadReply, Owner: "username", row: func(o string, a radius.Attribute) any {
		return &models.RadReply{Username: o, Attribute: a.Name, Op: string(a.Operator), Value: a.Value}
	}}
	// GroupCheck is radgroupcheck.
	GroupCheck = Table{Name: models.TableRadGroupCheck, Owner: "groupname", row: func(o string, a radius.Attribute) any {
		return &models.RadGroupCheck{Groupname: o, Attribute: a.Name, Op: string(a.Operator), Value: a.Value}
	}}
	// GroupReply is radgroupreply.
	GroupReply = Table{Name: models.TableRadGroupReply, Owner: "groupname", row: func(o string, a radius.Attribute) any {
		return &models.RadGroupReply{Groupname: o, Attribute: a.Name, Op: string(a.Operator), Value: a.Value}
	}}
)

// ForUser returns radcheck or radreply.
func ForUser(kind radius.Kind) (Table, error) {
	switch kind {
	case radius.KindCheck:
		return UserCheck, nil
	case radius.KindReply:
		return UserReply, nil
	default:
		return Table{}, radius.ErrInvalidKind
	}
}

// ForGroup returns radgroupcheck or radgroupreply.
func ForGroup(kind radius.Kind) (Table, error) {
	switch kind {
	case radius.KindCheck:
		return GroupCheck, nil
	case radius.KindReply:
		return GroupReply, nil
	default:
		return Table{}, radius.ErrInvalidKind
	}
}

func (t Table) match() string {
	return t.Owner + " = ? AND attribute = ? AND op = ? AND value = ?"
}

type row struct {
	Attribute string `gorm:"column:attribute"`
	Op        string `gorm:"column:op"`
	Value     string `gorm:"column:value"`
}

// List returns the owner's attributes ordered by name. Attributes named in
// exclude are left out.
func List(db *gorm.DB, t Table, owner string, exclude ...string) ([]radius.Attribute, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	q := db.Table(t.Name).Select("attribute, op, value").Where(t.Owner+" = ?", owner)
	if len(exclude) > 0 {
		q = q.Where("attribute NOT IN ?", exclude)
	}

	var rows []row
	if err := q.Order("attribute, op, value").Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]radius.Attribute, 0, len(rows))
	for _, r := range rows {
		out = append(out, radius.Attribute{Name: r.Attribute, Operator: radius.Operator(r.Op), Value: r.Value})
	}

	return out, nil
}

// Exists reports whether the exact row is present.
func Exists(db *gorm.DB, t Table, owner string, a radius.Attribute) (bool, error) {
	if db == nil {
		return false, ErrDBNil
	}

	var n int64
	if err := db.Table(t.Name).Where(t.match(), owner, a.Name, string(a.Operator), a.Value).Count(&n).Error; err != nil {
		return false, err
	}

	return n > 0, nil
}

// Add inserts one row.
func Add(db *gorm.DB, t Table, owner string, a radius.Attribute) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Create(t.row(owner, a)).Error
}

// Delete removes every row equal to a and returns how many were removed.
func Delete(db *gorm.DB, t Table, owner string, a radius.Attribute) (int64, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	res := db.Where(t.match(), owner, a.Name, string(a.Operator), a.Value).Delete(t.row("", radius.Attribute{}))

	return res.RowsAffected, res.Error
}

// Update replaces old with updated in one transaction. Nothing changes when
// old is not present or when updated is already a row of the owner.
func Update(db *gorm.DB, t Table, owner string, old, updated radius.Attribute) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		n, err := Delete(tx, t, owner, old)
		if err != nil {
			return err
		}

		if n == 0 {
			return radius.ErrAttributeNotFound
		}

		found, err := Exists(tx, t, owner, updated)
		if err != nil {
			return err
		}

		if found {
			return radius.ErrAttributeExists
		}

		return Add(tx, t, owner, updated)
	})
}

// DeleteOwner removes all of the owner's rows.
func DeleteOwner(db *gorm.DB, t Table, owner string) (int64, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	res := db.Where(t.Owner+" = ?", owner).Delete(t.row("", radius.Attribute{}))

	return res.RowsAffected, res.Error
}

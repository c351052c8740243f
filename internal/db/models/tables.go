// Package models contains the gorm models of the FreeRADIUS SQL schema.
package models

// Table names.
const (
	TableRadCheck      = "radcheck"
	TableRadReply      = "radreply"
	TableRadUserGroup  = "radusergroup"
	TableRadAcct       = "radacct"
	TableRadGroupCheck = "radgroupcheck"
	TableRadGroupReply = "radgroupreply"
	TableRadGroups     = "radgroups"
)

// Tables lists every table the tool knows, standard FreeRADIUS tables first.
var Tables = []string{
	TableRadCheck,
	TableRadReply,
	TableRadUserGroup,
	TableRadAcct,
	TableRadGroupCheck,
	TableRadGroupReply,
	TableRadGroups,
}

// All returns one zero value per table, in Tables order, for schema creation.
func All() []any {
	return []any{
		&RadCheck{},
		&RadReply{},
		&RadUserGroup{},
		&RadAcct{},
		&RadGroupCheck{},
		&RadGroupReply{},
		&RadGroup{},
	}
}

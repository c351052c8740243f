package models

// RadUserGroup maps a user to a group. FreeRADIUS processes groups in
// ascending priority order. Older schemas have no id column, so the model has
// no primary key and rows are addressed by username and groupname.
type RadUserGroup struct {
	Username  string `gorm:"column:username;size:64;not null;index:radusergroup_username"`
	Groupname string `gorm:"column:groupname;size:64;not null"`
	Priority  int    `gorm:"column:priority;not null;default:1"`
}

// TableName returns the FreeRADIUS table name.
func (RadUserGroup) TableName() string {
	return TableRadUserGroup
}

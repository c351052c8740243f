package models

import "time"

// RadGroupCheck is a check attribute applied to every member of a group.
type RadGroupCheck struct {
	ID        uint64 `gorm:"primaryKey;column:id"`
	Groupname string `gorm:"column:groupname;size:64;not null;index:radgroupcheck_groupname"`
	Attribute string `gorm:"column:attribute;size:64;not null"`
	Op        string `gorm:"column:op;size:2;not null"`
	Value     string `gorm:"column:value;size:253;not null"`
}

// TableName returns the FreeRADIUS table name.
func (RadGroupCheck) TableName() string {
	return TableRadGroupCheck
}

// RadGroupReply is a reply attribute applied to every member of a group.
type RadGroupReply struct {
	ID        uint64 `gorm:"primaryKey;column:id"`
	Groupname string `gorm:"column:groupname;size:64;not null;index:radgroupreply_groupname"`
	Attribute string `gorm:"column:attribute;size:64;not null"`
	Op        string `gorm:"column:op;size:2;not null"`
	Value     string `gorm:"column:value;size:253;not null"`
}

// TableName returns the FreeRADIUS table name.
func (RadGroupReply) TableName() string {
	return TableRadGroupReply
}

// RadGroup records that a group exists independently of its members.
// FreeRADIUS does not read this table; it is owned by this tool.
type RadGroup struct {
	// Groupname is the group's unique name.
	Groupname string `gorm:"primaryKey;column:groupname;size:64"`
	// Priority is used for new memberships in this group.
	Priority int `gorm:"column:priority;not null;default:10"`
	// CreatedAt is set by gorm on insert.
	CreatedAt time.Time `gorm:"column:created_at"`
}

// TableName returns the table name.
func (RadGroup) TableName() string {
	return TableRadGroups
}

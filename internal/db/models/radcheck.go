package models

// RadCheck is a per-user check attribute. FreeRADIUS compares these against the
// request during authorization; the Cleartext-Password row doubles as the
// marker that the user exists.
type RadCheck struct {
	// ID is the surrogate key. The record access layer never relies on it.
	ID uint64 `gorm:"primaryKey;column:id"`
	// Username owns the row.
	Username string `gorm:"column:username;size:64;not null;index:radcheck_username"`
	// Attribute is the RADIUS attribute name.
	Attribute string `gorm:"column:attribute;size:64;not null"`
	// Op is one of the FreeRADIUS operators.
	Op string `gorm:"column:op;size:2;not null"`
	// Value is the attribute value as text.
	Value string `gorm:"column:value;size:253;not null"`
}

// TableName returns the FreeRADIUS table name.
func (RadCheck) TableName() string {
	return TableRadCheck
}

// RadReply is a per-user reply attribute returned in the Access-Accept.
type RadReply struct {
	ID        uint64 `gorm:"primaryKey;column:id"`
	Username  string `gorm:"column:username;size:64;not null;index:radreply_username"`
	Attribute string `gorm:"column:attribute;size:64;not null"`
	Op        string `gorm:"column:op;size:2;not null"`
	Value     string `gorm:"column:value;size:253;not null"`
}

// TableName returns the FreeRADIUS table name.
func (RadReply) TableName() string {
	return TableRadReply
}

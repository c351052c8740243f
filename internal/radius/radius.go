// Package radius holds the domain types of the FreeRADIUS SQL schema: users,
// groups and the check/reply attribute-value pairs attached to them.
package radius

import (
	"strconv"
	"strings"
)

// Well-known attribute names and values written by the record access layer.
const (
	AttrPassword        = "Cleartext-Password"
	AttrExpiration      = "Expiration"
	AttrSimultaneousUse = "Simultaneous-Use"
	AttrSessionTimeout  = "Session-Timeout"
	AttrIdleTimeout     = "Idle-Timeout"
	AttrLoginTime       = "Login-Time"

	// BlockedValue is the Login-Time value that denies every login.
	BlockedValue = "Never"
)

const (
	// DefaultGroup is assigned to users created without an explicit group.
	DefaultGroup = "default"

	// DefaultPriority is the radusergroup priority used when the group has none.
	DefaultPriority = 10

	// DefaultSessionTimeout and DefaultIdleTimeout are not written to radreply.
	DefaultSessionTimeout = 3600
	DefaultIdleTimeout    = 0

	// PlaceholderPrefix marks the fake membership rows older tooling used to
	// make an empty group visible.
	PlaceholderPrefix = "_group_"

	// NeverLoggedIn is the LastLogin value for users without accounting rows.
	NeverLoggedIn = "never"

	MaxNameLength  = 64
	MaxValueLength = 253
	MinPriority    = 1
	MaxPriority    = 99
)

// Status of a user, derived from the presence of the Login-Time block marker.
type Status string

const (
	StatusActive  Status = "active"
	StatusBlocked Status = "blocked"
)

// Kind tells whether an attribute is checked during authorization or sent
// back in the Access-Accept.
type Kind string

const (
	KindCheck Kind = "check"
	KindReply Kind = "reply"
)

// ParseKind parses "check" or "reply", case-insensitive.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindCheck:
		return KindCheck, nil
	case KindReply:
		return KindReply, nil
	default:
		return "", ErrInvalidKind
	}
}

// Operator is a FreeRADIUS attribute operator.
type Operator string

const (
	OpEqual   Operator = "=="
	OpSet     Operator = ":="
	OpAssign  Operator = "="
	OpAdd     Operator = "+="
	OpRemove  Operator = "-="
	OpPrepend Operator = "^="
)

// Operators lists every supported operator in display order.
var Operators = []Operator{OpEqual, OpSet, OpAssign, OpAdd, OpRemove, OpPrepend}

// Valid reports whether o is one of Operators.
func (o Operator) Valid() bool {
	for _, op := range Operators {
		if op == o {
			return true
		}
	}

	return false
}

// Attribute is one attribute-value pair. Rows are identified by
// (owner, Name, Operator, Value); there is no surrogate key.
type Attribute struct {
	Name     string   `json:"attribute" validate:"required,max=64"`
	Operator Operator `json:"op"        validate:"required,radiusop"`
	Value    string   `json:"value"     validate:"required,max=253"`
	// Kind is only meaningful for extra attributes passed to user creation;
	// an empty Kind is treated as reply.
	Kind Kind `json:"kind,omitempty" validate:"omitempty,oneof=check reply"`
}

// String renders the attribute the way FreeRADIUS users files do.
func (a Attribute) String() string {
	return a.Name + " " + string(a.Operator) + " " + a.Value
}

// User is the aggregate view of a RADIUS user.
type User struct {
	Username string `json:"username" validate:"required,max=64,radiusname,notplaceholder"`
	Group    string `json:"group"    validate:"omitempty,max=64,radiusname"`

	// Derived on listing.
	Status    Status `json:"status,omitempty"`
	LastLogin string `json:"last_login,omitempty"`

	// Write-only fields, used on creation.
	Password        string `json:"password,omitempty"         validate:"required,max=253"`
	Expiration      string `json:"expiration,omitempty"       validate:"max=253"`
	SimultaneousUse int    `json:"simultaneous_use,omitempty" validate:"gte=0"`
	SessionTimeout  int    `json:"session_timeout,omitempty"  validate:"gte=0"`
	IdleTimeout     int    `json:"idle_timeout,omitempty"     validate:"gte=0"`
}

// NewUser returns a user with the default group and timeouts set.
func NewUser(username, password string) User {
	return User{
		Username:        username,
		Password:        password,
		Group:           DefaultGroup,
		SimultaneousUse: 1,
		SessionTimeout:  DefaultSessionTimeout,
		IdleTimeout:     DefaultIdleTimeout,
	}
}

// Blocked reports whether the user carries the block marker.
func (u User) Blocked() bool {
	return u.Status == StatusBlocked
}

// CheckRows returns the radcheck rows written for u on creation, in insert order.
func (u User) CheckRows() []Attribute {
	rows := []Attribute{{Name: AttrPassword, Operator: OpSet, Value: u.Password}}

	if u.Expiration != "" {
		rows = append(rows, Attribute{Name: AttrExpiration, Operator: OpSet, Value: u.Expiration})
	}

	if u.SimultaneousUse > 1 {
		rows = append(rows, Attribute{
			Name:     AttrSimultaneousUse,
			Operator: OpSet,
			Value:    strconv.Itoa(u.SimultaneousUse),
		})
	}

	return rows
}

// ReplyRows returns the radreply rows written for u on creation. Timeouts equal
// to their defaults are left out.
func (u User) ReplyRows() []Attribute {
	var rows []Attribute

	if u.SessionTimeout != 0 && u.SessionTimeout != DefaultSessionTimeout {
		rows = append(rows, Attribute{
			Name:     AttrSessionTimeout,
			Operator: OpAssign,
			Value:    strconv.Itoa(u.SessionTimeout),
		})
	}

	if u.IdleTimeout != DefaultIdleTimeout {
		rows = append(rows, Attribute{
			Name:     AttrIdleTimeout,
			Operator: OpAssign,
			Value:    strconv.Itoa(u.IdleTimeout),
		})
	}

	return rows
}

// BlockMarker is the radcheck row that denies login.
func BlockMarker() Attribute {
	return Attribute{Name: AttrLoginTime, Operator: OpSet, Value: BlockedValue}
}

// Group is a RADIUS group.
type Group struct {
	Name            string `json:"name"             validate:"required,max=64,radiusname"`
	UserCount       int    `json:"user_count"`
	DefaultPriority int    `json:"default_priority" validate:"min=1,max=99"`
}

// NewGroup returns a group with the default priority.
func NewGroup(name string) Group {
	return Group{Name: name, DefaultPriority: DefaultPriority}
}

// SystemGroups may not be deleted.
var SystemGroups = []string{DefaultGroup, "users"}

// IsSystemGroup reports whether name is one of SystemGroups.
func IsSystemGroup(name string) bool {
	for _, g := range SystemGroups {
		if strings.EqualFold(g, name) {
			return true
		}
	}

	return false
}

// IsPlaceholder reports whether username is a legacy empty-group marker row.
// The prefix is matched case-insensitively.
func IsPlaceholder(username string) bool {
	return strings.HasPrefix(strings.ToLower(username), PlaceholderPrefix)
}

// Placeholder returns the legacy marker username for group.
func Placeholder(group string) string {
	return PlaceholderPrefix + group
}

package radius

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidName(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "plain", input: "alice", want: true},
		{name: "dotted with digits", input: "john.doe-42_x", want: true},
		{name: "email like", input: "alice@example.com", want: false},
		{name: "empty", input: "", want: false},
		{name: "space", input: "al ice", want: false},
		{name: "tab", input: "al\tice", want: false},
		{name: "quote", input: "o'brien", want: false},
		{name: "semicolon", input: "a;b", want: false},
		{name: "control", input: "a\x01b", want: false},
		{name: "max length", input: strings.Repeat("a", 64), want: true},
		{name: "too long", input: strings.Repeat("a", 65), want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ValidName(tc.input))
		})
	}
}

func TestValidateUser(t *testing.T) {
	require.NoError(t, ValidateUser(NewUser("alice", "s3cret")))

	err := ValidateUser(NewUser("bad user", ""))
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 2)
	assert.Contains(t, err.Error(), "Username contains invalid characters")
	assert.Contains(t, err.Error(), "Password is required")

	err = ValidateUser(NewUser(Placeholder("staff"), "s3cret"))
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "notplaceholder", verr.Fields[0].Tag)
	assert.Contains(t, err.Error(), "Username must not start with _group_")
}

func TestValidateAttribute(t *testing.T) {
	testCases := []struct {
		name    string
		attr    Attribute
		wantErr bool
	}{
		{name: "reply", attr: Attribute{Name: "Framed-IP-Address", Operator: OpAssign, Value: "10.0.0.5"}},
		{name: "prepend", attr: Attribute{Name: "Class", Operator: OpPrepend, Value: "x"}},
		{name: "unknown operator", attr: Attribute{Name: "Class", Operator: "!=", Value: "x"}, wantErr: true},
		{name: "empty value", attr: Attribute{Name: "Class", Operator: OpSet}, wantErr: true},
		{name: "long value", attr: Attribute{Name: "Class", Operator: OpSet, Value: strings.Repeat("v", 254)}, wantErr: true},
		{name: "bad kind", attr: Attribute{Name: "Class", Operator: OpSet, Value: "x", Kind: "other"}, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateAttribute(tc.attr)
			if tc.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
		})
	}
}

func TestValidateGroup(t *testing.T) {
	require.NoError(t, ValidateGroup(NewGroup("staff")))
	require.Error(t, ValidateGroup(Group{Name: "staff", DefaultPriority: 0}))
	require.Error(t, ValidateGroup(Group{Name: "staff", DefaultPriority: 100}))
	require.Error(t, ValidateGroup(Group{Name: "st aff", DefaultPriority: 5}))
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind(" Check ")
	require.NoError(t, err)
	assert.Equal(t, KindCheck, k)

	k, err = ParseKind("reply")
	require.NoError(t, err)
	assert.Equal(t, KindReply, k)

	_, err = ParseKind("both")
	require.ErrorIs(t, err, ErrInvalidKind)
}

func TestUserRows(t *testing.T) {
	u := NewUser("alice", "s3cret")
	assert.Equal(t, []Attribute{{Name: AttrPassword, Operator: OpSet, Value: "s3cret"}}, u.CheckRows())
	assert.Empty(t, u.ReplyRows())

	u.Expiration = "01 Jan 2030"
	u.SimultaneousUse = 2
	u.SessionTimeout = 7200
	u.IdleTimeout = 300

	assert.Equal(t, []Attribute{
		{Name: AttrPassword, Operator: OpSet, Value: "s3cret"},
		{Name: AttrExpiration, Operator: OpSet, Value: "01 Jan 2030"},
		{Name: AttrSimultaneousUse, Operator: OpSet, Value: "2"},
	}, u.CheckRows())
	assert.Equal(t, []Attribute{
		{Name: AttrSessionTimeout, Operator: OpAssign, Value: "7200"},
		{Name: AttrIdleTimeout, Operator: OpAssign, Value: "300"},
	}, u.ReplyRows())
}

func TestGroupHelpers(t *testing.T) {
	assert.True(t, IsSystemGroup("default"))
	assert.True(t, IsSystemGroup("Users"))
	assert.False(t, IsSystemGroup("staff"))

	assert.Equal(t, "_group_staff", Placeholder("staff"))
	assert.True(t, IsPlaceholder(Placeholder("staff")))
	assert.False(t, IsPlaceholder("alice"))
	assert.True(t, IsPlaceholder("_Group_staff"))
	assert.False(t, IsPlaceholder("xgroupxstaff"))
}

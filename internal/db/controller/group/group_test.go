package group

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/db/controller/user"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/db/dbtest"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/db/models"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/db/session"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/radius"
)

func setupTestService(t *testing.T, only ...string) (*Service, *session.Manager) {
	t.Helper()

	m := dbtest.NewManager(t, only...)

	return New(m), m
}

func TestCreateEmptyGroupIsListed(t *testing.T) {
	ctx := context.Background()
	svc, m := setupTestService(t)

	require.NoError(t, svc.Create(ctx, radius.NewGroup("g")))

	groups, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, radius.Group{Name: "g", UserCount: 0, DefaultPriority: radius.DefaultPriority}, groups[0])

	assert.Zero(t, dbtest.Count(t, m, models.TableRadUserGroup, "1 = 1"), "no placeholder row is written")

	ok, err := svc.Exists(ctx, "g")
	require.NoError(t, err)
	assert.True(t, ok)

	require.ErrorIs(t, svc.Create(ctx, radius.NewGroup("g")), radius.ErrGroupExists)
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupTestService(t)

	testCases := []struct {
		name  string
		group radius.Group
	}{
		{name: "empty name", group: radius.Group{DefaultPriority: 10}},
		{name: "forbidden character", group: radius.Group{Name: "a;b", DefaultPriority: 10}},
		{name: "priority too high", group: radius.Group{Name: "g", DefaultPriority: 100}},
		{name: "priority negative", group: radius.Group{Name: "g", DefaultPriority: -1}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var verr *radius.ValidationError
			require.ErrorAs(t, svc.Create(ctx, tc.group), &verr)
		})
	}

	groups, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestListCountsMembers(t *testing.T) {
	ctx := context.Background()
	svc, m := setupTestService(t)
	users := user.New(m)

	require.NoError(t, svc.Create(ctx, radius.Group{Name: "staff", DefaultPriority: 5}))

	for _, name := range []string{"alice", "bob"} {
		u := radius.NewUser(name, "pw")
		u.Group = "staff"
		require.NoError(t, users.Create(ctx, u, nil))
	}

	require.NoError(t, users.Create(ctx, radius.NewUser("carol", "pw"), nil))

	groups, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []radius.Group{
		{Name: "default", UserCount: 1, DefaultPriority: radius.DefaultPriority},
		{Name: "staff", UserCount: 2, DefaultPriority: 5},
	}, groups)

	members, err := svc.Members(ctx, "staff")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, members)
}

func TestLegacyPlaceholder(t *testing.T) {
	ctx := context.Background()
	svc, m := setupTestService(t)

	dbtest.Exec(t, m, "INSERT INTO radusergroup (username, groupname, priority) VALUES (?, ?, ?)",
		radius.Placeholder("legacy"), "legacy", 7)
	dbtest.Exec(t, m, "INSERT INTO radusergroup (username, groupname, priority) VALUES (?, ?, ?)",
		"dave", "legacy", 7)
	// '_' is a LIKE wildcard; this name must still count as a real member.
	dbtest.Exec(t, m, "INSERT INTO radusergroup (username, groupname, priority) VALUES (?, ?, ?)",
		"xgroupxeve", "legacy", 7)

	groups, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, radius.Group{Name: "legacy", UserCount: 2, DefaultPriority: 7}, groups[0])

	members, err := svc.Members(ctx, "legacy")
	require.NoError(t, err)
	assert.Equal(t, []string{"dave", "xgroupxeve"}, members)

	ok, err := svc.Exists(ctx, "legacy")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCreateWithoutGroupTable(t *testing.T) {
	ctx := context.Background()
	svc, m := setupTestService(t, models.TableRadCheck, models.TableRadUserGroup)

	require.NoError(t, svc.Create(ctx, radius.NewGroup("g")))
	assert.Equal(t, int64(1), dbtest.Count(t, m, models.TableRadUserGroup,
		"username = ? AND groupname = ?", radius.Placeholder("g"), "g"))

	groups, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, 0, groups[0].UserCount)

	members, err := svc.Members(ctx, "g")
	require.NoError(t, err)
	assert.Empty(t, members)

	require.NoError(t, svc.Delete(ctx, "g"))

	groups, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	svc, m := setupTestService(t)
	users := user.New(m)

	require.NoError(t, svc.Create(ctx, radius.NewGroup("staff")))

	u := radius.NewUser("alice", "pw")
	u.Group = "staff"
	require.NoError(t, users.Create(ctx, u, nil))

	attr := radius.Attribute{Name: "Framed-Protocol", Operator: radius.OpSet, Value: "PPP"}
	require.NoError(t, svc.AddAttribute(ctx, "staff", radius.KindReply, attr))
	require.NoError(t, svc.AddAttribute(ctx, "staff", radius.KindCheck,
		radius.Attribute{Name: "Auth-Type", Operator: radius.OpSet, Value: "Accept"}))

	require.NoError(t, svc.Delete(ctx, "staff"))

	for _, table := range []string{models.TableRadUserGroup, models.TableRadGroupCheck, models.TableRadGroupReply, models.TableRadGroups} {
		assert.Zero(t, dbtest.Count(t, m, table, "groupname = ?", "staff"), table)
	}

	ok, err := users.Exists(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, ok, "members are orphaned, not deleted")

	require.ErrorIs(t, svc.Delete(ctx, "staff"), radius.ErrGroupNotFound)
}

func TestDeleteSystemGroup(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupTestService(t)

	for _, name := range []string{"default", "users", "Default"} {
		t.Run(name, func(t *testing.T) {
			require.ErrorIs(t, svc.Delete(ctx, name), radius.ErrSystemGroup)
		})
	}
}

func TestAttributeRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, m := setupTestService(t)

	require.NoError(t, svc.Create(ctx, radius.NewGroup("staff")))

	a := radius.Attribute{Name: "Session-Timeout", Operator: radius.OpSet, Value: "7200"}
	require.NoError(t, svc.AddAttribute(ctx, "staff", radius.KindReply, a))
	require.ErrorIs(t, svc.AddAttribute(ctx, "staff", radius.KindReply, a), radius.ErrAttributeExists)

	check, reply, err := svc.Attributes(ctx, "staff")
	require.NoError(t, err)
	assert.Empty(t, check)
	assert.Equal(t, []radius.Attribute{a}, reply)

	updated := radius.Attribute{Name: "Session-Timeout", Operator: radius.OpSet, Value: "600"}
	require.NoError(t, svc.UpdateAttribute(ctx, "staff", radius.KindReply, a, updated))
	require.ErrorIs(t, svc.UpdateAttribute(ctx, "staff", radius.KindReply, a, updated), radius.ErrAttributeNotFound)

	_, reply, err = svc.Attributes(ctx, "staff")
	require.NoError(t, err)
	assert.Equal(t, []radius.Attribute{updated}, reply)

	require.NoError(t, svc.DeleteAttribute(ctx, "staff", radius.KindReply, updated))
	require.ErrorIs(t, svc.DeleteAttribute(ctx, "staff", radius.KindReply, updated), radius.ErrAttributeNotFound)
	assert.Zero(t, dbtest.Count(t, m, models.TableRadGroupReply, "groupname = ?", "staff"))

	other := radius.Attribute{Name: "Session-Timeout", Operator: radius.OpSet, Value: "900"}
	require.NoError(t, svc.AddAttribute(ctx, "staff", radius.KindReply, a))
	require.NoError(t, svc.AddAttribute(ctx, "staff", radius.KindReply, other))
	require.ErrorIs(t, svc.UpdateAttribute(ctx, "staff", radius.KindReply, a, other), radius.ErrAttributeExists)
	assert.Equal(t, int64(2), dbtest.Count(t, m, models.TableRadGroupReply, "groupname = ?", "staff"))

	require.ErrorIs(t, svc.AddAttribute(ctx, "staff", radius.Kind("other"), a), radius.ErrInvalidKind)

	var verr *radius.ValidationError
	require.ErrorAs(t, svc.AddAttribute(ctx, "staff", radius.KindCheck,
		radius.Attribute{Name: "X", Operator: "<>", Value: "1"}), &verr)
}

func TestDisconnected(t *testing.T) {
	ctx := context.Background()
	svc := New(session.NewManager())

	groups, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, groups)

	members, err := svc.Members(ctx, "g")
	require.NoError(t, err)
	assert.Empty(t, members)

	require.ErrorIs(t, svc.Create(ctx, radius.NewGroup("g")), session.ErrNotConnected)
	require.ErrorIs(t, svc.Delete(ctx, "g"), session.ErrNotConnected)
}

func TestMissingGroupTables(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupTestService(t, models.TableRadCheck)

	groups, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, groups)

	require.ErrorIs(t, svc.Create(ctx, radius.NewGroup("g")), session.ErrTableMissing)
	require.ErrorIs(t, svc.AddAttribute(ctx, "g", radius.KindReply,
		radius.Attribute{Name: "Idle-Timeout", Operator: radius.OpSet, Value: "60"}), session.ErrTableMissing)
}

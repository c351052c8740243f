package user

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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

func TestCreateListDelete(t *testing.T) {
	ctx := context.Background()
	svc, m := setupTestService(t)

	alice := radius.NewUser("alice", "s3cret")
	alice.Group = "staff"
	require.NoError(t, svc.Create(ctx, alice, nil))

	ok, err := svc.Exists(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, ok)

	users, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, radius.User{
		Username:  "alice",
		Group:     "staff",
		Status:    radius.StatusActive,
		LastLogin: radius.NeverLoggedIn,
	}, users[0])

	assert.Equal(t, int64(1), dbtest.Count(t, m, models.TableRadUserGroup, "username = ? AND priority = ?", "alice", 10))
	assert.Zero(t, dbtest.Count(t, m, models.TableRadReply, "username = ?", "alice"), "default timeouts are not written")

	require.NoError(t, svc.Delete(ctx, "alice"))

	ok, err = svc.Exists(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, ok)

	for _, table := range []string{models.TableRadCheck, models.TableRadReply, models.TableRadUserGroup, models.TableRadAcct} {
		assert.Zero(t, dbtest.Count(t, m, table, "username = ?", "alice"), table)
	}

	require.ErrorIs(t, svc.Delete(ctx, "alice"), radius.ErrUserNotFound)
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	svc, m := setupTestService(t)

	testCases := []struct {
		name    string
		user    radius.User
		extra   []radius.Attribute
		wantErr error
	}{
		{name: "empty password", user: radius.NewUser("bob", "")},
		{name: "forbidden character", user: radius.NewUser("bob smith", "pw")},
		{name: "too long", user: radius.NewUser(strings.Repeat("b", 65), "pw")},
		{name: "reserved placeholder prefix", user: radius.NewUser(radius.Placeholder("staff"), "pw")},
		{
			name:  "bad extra operator",
			user:  radius.NewUser("bob", "pw"),
			extra: []radius.Attribute{{Name: "Class", Operator: "!=", Value: "x"}},
		},
		{
			name:    "password as extra",
			user:    radius.NewUser("bob", "pw"),
			extra:   []radius.Attribute{{Name: radius.AttrPassword, Operator: radius.OpSet, Value: "x", Kind: radius.KindCheck}},
			wantErr: radius.ErrCredentialAttribute,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.Create(ctx, tc.user, tc.extra)
			require.Error(t, err)

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
			} else {
				var verr *radius.ValidationError
				require.ErrorAs(t, err, &verr)
			}

			assert.Zero(t, dbtest.Count(t, m, models.TableRadCheck, "1 = 1"))
		})
	}
}

func TestCreateDuplicate(t *testing.T) {
	ctx := context.Background()
	svc, m := setupTestService(t)

	require.NoError(t, svc.Create(ctx, radius.NewUser("bob", "pw1"), nil))
	require.ErrorIs(t, svc.Create(ctx, radius.NewUser("bob", "pw2"), nil), radius.ErrUserExists)

	assert.Equal(t, int64(1), dbtest.Count(t, m, models.TableRadCheck, "username = ?", "bob"))
}

func TestCreateOptionalRows(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupTestService(t)

	u := radius.NewUser("carol", "pw")
	u.Expiration = "31 Dec 2030"
	u.SimultaneousUse = 2
	u.SessionTimeout = 7200
	u.IdleTimeout = 600

	extra := []radius.Attribute{
		{Name: "Framed-IP-Address", Operator: radius.OpAssign, Value: "10.0.0.7"},
		{Name: "Calling-Station-Id", Operator: radius.OpEqual, Value: "00-11-22-33-44-55", Kind: radius.KindCheck},
	}
	require.NoError(t, svc.Create(ctx, u, extra))

	check, reply, err := svc.Attributes(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, []radius.Attribute{
		{Name: "Calling-Station-Id", Operator: radius.OpEqual, Value: "00-11-22-33-44-55"},
		{Name: radius.AttrExpiration, Operator: radius.OpSet, Value: "31 Dec 2030"},
		{Name: radius.AttrSimultaneousUse, Operator: radius.OpSet, Value: "2"},
	}, check)
	assert.Equal(t, []radius.Attribute{
		{Name: "Framed-IP-Address", Operator: radius.OpAssign, Value: "10.0.0.7"},
		{Name: radius.AttrIdleTimeout, Operator: radius.OpAssign, Value: "600"},
		{Name: radius.AttrSessionTimeout, Operator: radius.OpAssign, Value: "7200"},
	}, reply)
}

func TestCreateRollsBack(t *testing.T) {
	ctx := context.Background()
	svc, m := setupTestService(t)

	// make the membership insert fail after the credential row was written
	dbtest.Exec(t, m, "DROP TABLE radusergroup")
	dbtest.Exec(t, m, "CREATE TABLE radusergroup (username TEXT NOT NULL CHECK (username <> 'dave'), groupname TEXT, priority INTEGER)")

	err := svc.Create(ctx, radius.NewUser("dave", "pw"), nil)
	require.Error(t, err)

	var se *session.Error
	require.ErrorAs(t, err, &se)
	assert.Zero(t, dbtest.Count(t, m, models.TableRadCheck, "username = ?", "dave"))
}

func TestCreateUsesGroupPriority(t *testing.T) {
	ctx := context.Background()
	svc, m := setupTestService(t)

	dbtest.Exec(t, m, "INSERT INTO radgroups (groupname, priority, created_at) VALUES (?, ?, ?)", "vip", 3, time.Now())

	u := radius.NewUser("erin", "pw")
	u.Group = "vip"
	require.NoError(t, svc.Create(ctx, u, nil))

	assert.Equal(t, int64(1), dbtest.Count(t, m, models.TableRadUserGroup, "username = ? AND priority = ?", "erin", 3))
}

func TestSetPasswordTwice(t *testing.T) {
	ctx := context.Background()
	svc, m := setupTestService(t)

	require.NoError(t, svc.Create(ctx, radius.NewUser("alice", "first"), nil))
	dbtest.Exec(t, m, "INSERT INTO radcheck (username, attribute, op, value) VALUES (?, ?, ?, ?)",
		"alice", "NT-Password", ":=", "ABCDEF")

	require.NoError(t, svc.SetPassword(ctx, "alice", "second"))
	require.NoError(t, svc.SetPassword(ctx, "alice", "third"))

	assert.Equal(t, int64(1), dbtest.Count(t, m, models.TableRadCheck, "username = ? AND attribute LIKE ?", "alice", "%Password"))
	assert.Equal(t, int64(1), dbtest.Count(t, m, models.TableRadCheck, "username = ? AND attribute = ? AND value = ?",
		"alice", radius.AttrPassword, "third"))

	require.ErrorIs(t, svc.SetPassword(ctx, "alice", ""), radius.ErrEmptyPassword)
	require.ErrorIs(t, svc.SetPassword(ctx, "nobody", "x"), radius.ErrUserNotFound)
}

func TestSetBlockedTwice(t *testing.T) {
	ctx := context.Background()
	svc, m := setupTestService(t)

	require.NoError(t, svc.Create(ctx, radius.NewUser("alice", "pw"), nil))

	require.NoError(t, svc.SetBlocked(ctx, "alice", true))
	require.NoError(t, svc.SetBlocked(ctx, "alice", true))

	users, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, radius.StatusBlocked, users[0].Status)
	assert.Equal(t, int64(1), dbtest.Count(t, m, models.TableRadCheck, "username = ? AND attribute = ?", "alice", radius.AttrLoginTime))

	// the marker shows up in the check list
	check, _, err := svc.Attributes(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []radius.Attribute{radius.BlockMarker()}, check)

	require.NoError(t, svc.SetBlocked(ctx, "alice", false))

	users, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, radius.StatusActive, users[0].Status)
	assert.Zero(t, dbtest.Count(t, m, models.TableRadCheck, "username = ? AND attribute = ?", "alice", radius.AttrLoginTime))

	require.ErrorIs(t, svc.SetBlocked(ctx, "ghost", true), radius.ErrUserNotFound)
}

func TestSetGroup(t *testing.T) {
	ctx := context.Background()
	svc, m := setupTestService(t)

	require.NoError(t, svc.Create(ctx, radius.NewUser("alice", "pw"), nil))
	dbtest.Exec(t, m, "INSERT INTO radusergroup (username, groupname, priority) VALUES (?, ?, ?)", "alice", "extra", 20)

	require.NoError(t, svc.SetGroup(ctx, "alice", "staff"))

	assert.Equal(t, int64(1), dbtest.Count(t, m, models.TableRadUserGroup, "username = ?", "alice"))

	users, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "staff", users[0].Group)

	var verr *radius.ValidationError
	require.ErrorAs(t, svc.SetGroup(ctx, "alice", "bad group"), &verr)
}

func TestListLastLogin(t *testing.T) {
	ctx := context.Background()
	svc, m := setupTestService(t)

	require.NoError(t, svc.Create(ctx, radius.NewUser("alice", "pw"), nil))
	require.NoError(t, svc.Create(ctx, radius.NewUser("bob", "pw"), nil))

	s, _ := m.Current()
	db, cancel := s.Conn(ctx)
	defer cancel()

	older := time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC)
	newer := time.Date(2024, 3, 2, 17, 45, 10, 0, time.UTC)

	for i, start := range []time.Time{older, newer} {
		require.NoError(t, db.Create(&models.RadAcct{
			AcctSessionID: "s" + string(rune('a'+i)),
			AcctUniqueID:  "u" + string(rune('a'+i)),
			Username:      "alice",
			NASIPAddress:  "10.0.0.1",
			AcctStartTime: &start,
		}).Error)
	}

	users, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "2024-03-02 17:45", users[0].LastLogin)
	assert.Equal(t, radius.NeverLoggedIn, users[1].LastLogin)
}

func TestListDuplicateCredentialRows(t *testing.T) {
	ctx := context.Background()
	svc, m := setupTestService(t)

	require.NoError(t, svc.Create(ctx, radius.NewUser("alice", "pw"), nil))
	dbtest.Exec(t, m, "INSERT INTO radcheck (username, attribute, op, value) VALUES (?, ?, ?, ?)",
		"alice", radius.AttrPassword, ":=", "other")

	users, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestAttributeRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupTestService(t)

	require.NoError(t, svc.Create(ctx, radius.NewUser("alice", "pw"), nil))

	a := radius.Attribute{Name: "Framed-IP-Address", Operator: radius.OpAssign, Value: "10.0.0.5"}

	for _, kind := range []radius.Kind{radius.KindCheck, radius.KindReply} {
		t.Run(string(kind), func(t *testing.T) {
			require.NoError(t, svc.AddAttribute(ctx, "alice", kind, a))
			require.ErrorIs(t, svc.AddAttribute(ctx, "alice", kind, a), radius.ErrAttributeExists)

			check, reply, err := svc.Attributes(ctx, "alice")
			require.NoError(t, err)

			got := reply
			if kind == radius.KindCheck {
				got = check
			}

			assert.Equal(t, []radius.Attribute{a}, got)

			updated := a
			updated.Value = "10.0.0.6"
			require.NoError(t, svc.UpdateAttribute(ctx, "alice", kind, a, updated))
			require.NoError(t, svc.UpdateAttribute(ctx, "alice", kind, updated, updated))
			require.ErrorIs(t, svc.UpdateAttribute(ctx, "alice", kind, a, updated), radius.ErrAttributeNotFound)

			require.NoError(t, svc.DeleteAttribute(ctx, "alice", kind, updated))
			require.ErrorIs(t, svc.DeleteAttribute(ctx, "alice", kind, updated), radius.ErrAttributeNotFound)

			check, reply, err = svc.Attributes(ctx, "alice")
			require.NoError(t, err)
			assert.Empty(t, check)
			assert.Empty(t, reply)
		})
	}

	require.ErrorIs(t, svc.AddAttribute(ctx, "alice", "both", a), radius.ErrInvalidKind)
	require.ErrorIs(t, svc.AddAttribute(ctx, "nobody", radius.KindReply, a), radius.ErrUserNotFound)
	require.ErrorIs(t, svc.AddAttribute(ctx, "alice", radius.KindCheck,
		radius.Attribute{Name: radius.AttrPassword, Operator: radius.OpSet, Value: "x"}), radius.ErrCredentialAttribute)
}

func TestUpdateAttributeToExistingRow(t *testing.T) {
	ctx := context.Background()
	svc, m := setupTestService(t)

	require.NoError(t, svc.Create(ctx, radius.NewUser("alice", "pw"), nil))

	a := radius.Attribute{Name: "Framed-IP-Address", Operator: radius.OpAssign, Value: "10.0.0.5"}
	b := radius.Attribute{Name: "Framed-IP-Address", Operator: radius.OpAssign, Value: "10.0.0.6"}

	require.NoError(t, svc.AddAttribute(ctx, "alice", radius.KindReply, a))
	require.NoError(t, svc.AddAttribute(ctx, "alice", radius.KindReply, b))

	require.ErrorIs(t, svc.UpdateAttribute(ctx, "alice", radius.KindReply, a, b), radius.ErrAttributeExists)

	_, reply, err := svc.Attributes(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []radius.Attribute{a, b}, reply, "rolled back, old row kept")
	assert.Equal(t, int64(1), dbtest.Count(t, m, models.TableRadReply, "username = ? AND value = ?", "alice", b.Value))
}

func TestAliceScenario(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupTestService(t)

	require.NoError(t, svc.Create(ctx, radius.NewUser("alice", "s3cret"), nil))
	require.NoError(t, svc.SetBlocked(ctx, "alice", true))

	users, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, radius.DefaultGroup, users[0].Group)
	assert.Equal(t, radius.StatusBlocked, users[0].Status)
	assert.Equal(t, radius.NeverLoggedIn, users[0].LastLogin)
}

func TestDisconnected(t *testing.T) {
	ctx := context.Background()
	svc := New(session.NewManager())

	users, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
	assert.NotNil(t, users)

	check, reply, err := svc.Attributes(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, check)
	assert.Empty(t, reply)

	ok, err := svc.Exists(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, ok)

	require.ErrorIs(t, svc.Create(ctx, radius.NewUser("alice", "pw"), nil), session.ErrNotConnected)
	require.ErrorIs(t, svc.SetPassword(ctx, "alice", "pw"), session.ErrNotConnected)
	require.ErrorIs(t, svc.SetBlocked(ctx, "alice", true), session.ErrNotConnected)
	require.ErrorIs(t, svc.Delete(ctx, "alice"), session.ErrNotConnected)
}

func TestPartialSchema(t *testing.T) {
	ctx := context.Background()

	t.Run("no radcheck", func(t *testing.T) {
		svc, _ := setupTestService(t, models.TableRadReply)

		users, err := svc.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, users)

		require.ErrorIs(t, svc.Create(ctx, radius.NewUser("alice", "pw"), nil), session.ErrTableMissing)
	})

	t.Run("only radcheck", func(t *testing.T) {
		svc, _ := setupTestService(t, models.TableRadCheck)

		require.NoError(t, svc.Create(ctx, radius.NewUser("alice", "pw"), nil))

		users, err := svc.List(ctx)
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, radius.DefaultGroup, users[0].Group)
		assert.Equal(t, radius.NeverLoggedIn, users[0].LastLogin)

		// delete skips the absent tables
		require.NoError(t, svc.Delete(ctx, "alice"))

		u := radius.NewUser("bob", "pw")
		u.SessionTimeout = 60
		require.ErrorIs(t, svc.Create(ctx, u, nil), session.ErrTableMissing)
	})
}

func TestFormatLastLogin(t *testing.T) {
	testCases := []struct {
		in   sql.NullString
		want string
	}{
		{in: sql.NullString{}, want: "never"},
		{in: sql.NullString{Valid: true, String: ""}, want: "never"},
		{in: sql.NullString{Valid: true, String: "2024-03-02T17:45:10Z"}, want: "2024-03-02 17:45"},
		{in: sql.NullString{Valid: true, String: "2024-03-02 17:45:10.123+00:00"}, want: "2024-03-02 17:45"},
		{in: sql.NullString{Valid: true, String: "2024-03-02 17:45:10"}, want: "2024-03-02 17:45"},
		{in: sql.NullString{Valid: true, String: "2024-03-02 17:45:10 +0000 UTC"}, want: "2024-03-02 17:45"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.want, FormatLastLogin(tc.in), tc.in.String)
	}
}

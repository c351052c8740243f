package schema_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/db/dbtest"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/db/models"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/db/schema"
	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/db/session"
)

func TestEnsure(t *testing.T) {
	ctx := context.Background()

	m := session.NewManager()
	require.NoError(t, m.Connect(ctx, dbtest.Config()))
	t.Cleanup(func() { _ = m.Disconnect() })

	s, ok := m.Current()
	require.True(t, ok)
	assert.ElementsMatch(t, models.Tables, s.Missing())

	created, err := schema.Ensure(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, models.Tables, created)
	assert.Empty(t, s.Missing())

	for _, table := range models.Tables {
		assert.True(t, s.HasTable(table), table)
	}

	// second run is a no-op
	created, err = schema.Ensure(ctx, s)
	require.NoError(t, err)
	assert.Empty(t, created)
}

func TestCreatePartial(t *testing.T) {
	m := dbtest.NewManager(t, models.TableRadCheck, models.TableRadReply)

	s, _ := m.Current()
	assert.True(t, s.HasTable(models.TableRadCheck))
	assert.True(t, s.HasTable(models.TableRadReply))
	assert.False(t, s.HasTable(models.TableRadUserGroup))
	assert.False(t, s.HasTable(models.TableRadGroups))

	require.ErrorIs(t, schema.Create(context.Background(), s, "nas"), schema.ErrUnknownTable)
}

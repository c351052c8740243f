package gorm_test

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/logger"
	adapter "github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/logger/adapter/gorm"
)

func initLogger(t *testing.T) {
	t.Helper()

	require.NoError(t, logger.Init(logger.Log{LogLevel: "info", AppName: "test", ServiceName: "test"}))
	logger.Recent().Reset()
}

func TestWriterFlattensLines(t *testing.T) {
	initLogger(t)

	adapter.Writer{Level: zerolog.WarnLevel}.Printf("%s\n[%.3fms] %s", "file.go:12", 1.5, "SELECT 1")

	lines := logger.Recent().Lines(0)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "file.go:12 [1.500ms] SELECT 1")
	assert.Contains(t, lines[0], "component=gorm")
}

func TestStatementErrorsAreLogged(t *testing.T) {
	initLogger(t)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: adapter.New(time.Second)})
	require.NoError(t, err)

	var n int
	require.Error(t, db.Raw("SELECT value FROM missing_table").Scan(&n).Error)

	lines := logger.Recent().Lines(0)
	require.NotEmpty(t, lines)
	assert.Contains(t, lines[len(lines)-1], "missing_table")
}

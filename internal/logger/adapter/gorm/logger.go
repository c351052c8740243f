// Package gorm routes gorm's statement logger into zerolog.
package gorm

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	gormlogger "gorm.io/gorm/logger"
)

// Writer implements gorm's logger.Writer on top of the global zerolog logger.
type Writer struct {
	// Level used for every line gorm prints.
	Level zerolog.Level
}

// Printf logs one gorm message on a single line.
func (w Writer) Printf(format string, args ...any) {
	msg := strings.Join(strings.Fields(fmt.Sprintf(format, args...)), " ")

	log.WithLevel(w.Level).Str("component", "gorm").Msg(msg)
}

// New returns a gorm logger that reports slow statements and errors.
// Missing records are not errors for the record access layer.
func New(slow time.Duration) gormlogger.Interface {
	return gormlogger.New(Writer{Level: zerolog.WarnLevel}, gormlogger.Config{
		SlowThreshold:             slow,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

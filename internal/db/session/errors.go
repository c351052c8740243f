package session

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotConnected is returned by mutating operations while no session is open.
	ErrNotConnected = errors.New("not connected to database")
	// ErrTableMissing is returned when an operation needs a table the database lacks.
	ErrTableMissing = errors.New("table missing")
)

// RequireTable returns ErrTableMissing unless s has table.
func RequireTable(s *Session, table string) error {
	if s.HasTable(table) {
		return nil
	}

	return fmt.Errorf("%w: %s", ErrTableMissing, table)
}

// Error is a database error. Its message is the driver text on one line.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return e.Op + ": " + Sanitize(e.Err.Error())
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap returns err as *Error, or nil for a nil err. Errors that already are
// an *Error keep their original operation.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}

	var se *Error
	if errors.As(err, &se) {
		return err
	}

	return &Error{Op: op, Err: err}
}

var newlines = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// Sanitize flattens a driver message to a single line.
func Sanitize(msg string) string {
	return strings.TrimSpace(newlines.Replace(msg))
}

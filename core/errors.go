package core

import (
	"database/sql"
	"database/sql/driver"
	"strings"

	"github.com/pkg/errors"
)

// dbClosedMsg is what database/sql reports once the pool was closed. The error itself is not exported.
const dbClosedMsg = "sql: database is closed"

// FieldError reports a rejected value of a single request field.
type FieldError struct {
	Field string
	Error string
}

// ValidationError is a user input error. Fields, when set, are rendered as a field to message map.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	if len(err.Fields) == 0 {
		return err.Err.Error()
	}
	msgs := make([]string, 0, len(err.Fields))
	for _, fld := range err.Fields {
		msgs = append(msgs, fld.Field+": "+fld.Error)
	}
	return err.Err.Error() + " (" + strings.Join(msgs, "; ") + ")"
}

func (err ValidationError) Unwrap() error {
	return err.Err
}

// shutdown is returned when the service cannot keep serving, e.g. its database went away.
type shutdown struct {
	message string
	cause   error
}

func NewShutdownError(msg string, cause error) error {
	return &shutdown{message: msg, cause: cause}
}

func (s shutdown) Error() string {
	if s.cause == nil {
		return s.message
	}
	return s.message + ": " + s.cause.Error()
}

func (s shutdown) Unwrap() error {
	return s.cause
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}

// isDBGone reports whether err means the database connection pool can no longer be used.
func isDBGone(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, driver.ErrBadConn) {
		return true
	}
	return strings.Contains(err.Error(), dbClosedMsg)
}

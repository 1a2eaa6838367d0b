package sqlrunner

import (
	"errors"
	"fmt"

	"github.com/roshangit23/ReadyTestAPI/internal/logging"
)

var (
	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("sql: executor is closed")
	// ErrNotOpen is returned when no connection was ever opened.
	ErrNotOpen = errors.New("sql: no database connection")
)

// Error wraps a failed statement or connection operation.
type Error struct {
	Op        string
	Statement string
	Err       error
}

func (e *Error) Error() string {
	if e.Statement == "" {
		return fmt.Sprintf("sql %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("sql %s %q: %v", e.Op, e.Statement, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// fail logs err and wraps it. Sentinel state errors pass through unwrapped.
func fail(op, statement string, err error) error {
	if errors.Is(err, ErrClosed) || errors.Is(err, ErrNotOpen) {
		logging.Error("sql", err, "%s", op)
		return err
	}
	logging.Error("sql", err, "error executing %s: %s", op, statement)
	return &Error{Op: op, Statement: statement, Err: err}
}

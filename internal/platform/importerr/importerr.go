package importerr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	// KindSchema covers a malformed header (fatal) or a malformed row (skipped).
	KindSchema Kind = "schema_error"
	// KindConnectivity covers bad credentials or an unreachable store. Fatal, pre-flight.
	KindConnectivity Kind = "connectivity_error"
	// KindStore covers any query failure once rows are being processed. Fatal.
	KindStore  Kind = "store_error"
	KindConfig Kind = "config_error"
)

type Error struct {
	Kind Kind
	Op   string
	// Line is the 1-based input line for row-scoped errors, 0 otherwise.
	Line int
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	prefix := string(e.Kind)
	if e.Op != "" {
		prefix = fmt.Sprintf("%s (op=%s)", prefix, e.Op)
	}
	if e.Line > 0 {
		prefix = fmt.Sprintf("%s line %d", prefix, e.Line)
	}
	if e.Err != nil {
		return prefix + ": " + e.Err.Error()
	}
	return prefix
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func AtLine(kind Kind, op string, line int, err error) *Error {
	return &Error{Kind: kind, Op: op, Line: line, Err: err}
}

func Errorf(kind Kind, op string, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of the outermost *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// RowScoped reports whether err describes a single bad input row that the
// run may skip.
func RowScoped(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindSchema && e.Line > 0
}

// LineOf returns the input line recorded on err, or 0.
func LineOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Line
	}
	return 0
}

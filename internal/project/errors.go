package project

import (
	"errors"
	"fmt"
)

var (
	ErrParse           = errors.New("malformed project file")
	ErrValidation      = errors.New("invalid input")
	ErrAlreadyTracking = errors.New("already tracking")
	ErrNotTracking     = errors.New("not tracking")
	ErrIO              = errors.New("storage failure")
)

// Error describes a failed store operation. Kind is one of the sentinel
// errors above; Err is the underlying cause, if any.
type Error struct {
	Op   string
	Name string
	Kind error
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	s := e.Op
	if e.Name != "" {
		s += fmt.Sprintf(" %q", e.Name)
	}
	s += ": " + e.Kind.Error()
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func invalidf(op, name, format string, args ...any) error {
	return &Error{Op: op, Name: name, Kind: ErrValidation, Msg: fmt.Sprintf(format, args...)}
}

func ioError(op, name string, err error) error {
	return &Error{Op: op, Name: name, Kind: ErrIO, Err: err}
}

func parseError(op string, err error) error {
	return &Error{Op: op, Kind: ErrParse, Err: err}
}

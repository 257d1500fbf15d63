package model

import (
	"errors"
	"fmt"
)

// Error kinds, matched with errors.Is.
var (
	ErrRequest         = errors.New("model request failed")
	ErrInvalidResponse = errors.New("model response invalid")
	ErrMissingAPIKey   = errors.New("model API key missing")
	ErrInvalidImage    = errors.New("invalid chart image")
)

// Error is returned by every Analyzer call that fails. Msg is safe to show
// to a user.
type Error struct {
	Op   string // "analyze", "forecast", "weekly", "load"
	Kind error
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("model %s: %s: %v", e.Op, e.Msg, e.Err)
	}
	return fmt.Sprintf("model %s: %s", e.Op, e.Msg)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(op string, kind error, msg string, err error) *Error {
	return &Error{Op: op, Kind: kind, Msg: msg, Err: err}
}

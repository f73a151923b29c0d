package core

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindStoreConnection
	KindStoreQuery
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindStoreConnection:
		return "store connection"
	case KindStoreQuery:
		return "store query"
	default:
		return "unknown"
	}
}

var (
	ErrNoFile           = errors.New("no file uploaded")
	ErrNoFilename       = errors.New("no file selected")
	ErrTooLarge         = errors.New("file too large")
	ErrFormatNotAllowed = errors.New("file format not allowed")
)

// Error classifies a failed upload so callers can pick a response without inspecting causes.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s error: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err, or zero when err is not an *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// ValidationError wraps err as a KindValidation error.
func ValidationError(op string, err error) error {
	return &Error{Kind: KindValidation, Op: op, Err: err}
}

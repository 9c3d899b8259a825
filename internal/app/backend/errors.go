package backend

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport wraps network failures; no response was received.
	ErrTransport = errors.New("backend transport failure")
	// ErrStatus marks a non-2xx response. The body is not inspected.
	ErrStatus = errors.New("backend returned non-2xx status")
	// ErrDecode marks a 2xx response whose body is not the expected envelope.
	ErrDecode = errors.New("backend response could not be decoded")
	// ErrRejected marks a 2xx envelope carrying success=false.
	ErrRejected = errors.New("backend rejected the request")
	// ErrEmptyData marks a create response without a record in data[0].
	ErrEmptyData = errors.New("backend response carried no data")
	// ErrNotFound is returned by Get when the record is not among the active records.
	ErrNotFound = errors.New("record not found")
)

// Error describes one failed backend call.
type Error struct {
	Op     string
	Method string
	Path   string
	Status int
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s %s", e.Op, e.Method, e.Path)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	return msg + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

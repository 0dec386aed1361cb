package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// ErrorKind classifies failures surfaced by the client.
type ErrorKind string

const (
	KindTimeout  ErrorKind = "timeout"
	KindNetwork  ErrorKind = "network"
	KindStatus   ErrorKind = "status"
	KindCanceled ErrorKind = "canceled"
	KindRequest  ErrorKind = "request"
)

// ErrTimeout matches any *Error of kind timeout via errors.Is.
var ErrTimeout = errors.New("httpclient: timeout")

// Error is the single error type produced by the transport layer.
type Error struct {
	Kind       ErrorKind
	Method     string
	Path       string
	StatusCode int
	Header     http.Header
	Body       []byte
	Err        error

	msg string
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports timeout errors as ErrTimeout.
func (e *Error) Is(target error) bool {
	return target == ErrTimeout && e != nil && e.Kind == KindTimeout
}

// Timeout satisfies the net.Error-style timeout check.
func (e *Error) Timeout() bool { return e != nil && e.Kind == KindTimeout }

func newTimeoutError(req Request, timeout time.Duration, cause error) *Error {
	return &Error{
		Kind:   KindTimeout,
		Method: req.Method,
		Path:   req.Path,
		Err:    cause,
		msg:    fmt.Sprintf("timeout of %dms exceeded", timeout.Milliseconds()),
	}
}

func newCanceledError(req Request, reason, cause error) *Error {
	msg := "canceled"
	if errors.Is(reason, context.DeadlineExceeded) {
		msg = "canceled: caller deadline exceeded"
	}
	return &Error{Kind: KindCanceled, Method: req.Method, Path: req.Path, Err: cause, msg: msg}
}

func newStatusError(req Request, resp Response) *Error {
	return &Error{
		Kind:       KindStatus,
		Method:     req.Method,
		Path:       req.Path,
		StatusCode: resp.StatusCode(),
		Header:     resp.Header(),
		Body:       resp.Body(),
		msg:        fmt.Sprintf("request failed with status code %d", resp.StatusCode()),
	}
}

func newRequestError(req Request, format string, args ...any) *Error {
	return &Error{
		Kind:   KindRequest,
		Method: req.Method,
		Path:   req.Path,
		msg:    fmt.Sprintf(format, args...),
	}
}

// classifyTransportError maps a raw transport failure onto an *Error.
func classifyTransportError(ctx context.Context, req Request, timeout time.Duration, err error) *Error {
	var ce *Error
	if errors.As(err, &ce) {
		return ce
	}

	// A done caller context wins over the client timeout; the configured
	// timeout was not what stopped the call.
	if ctx != nil && ctx.Err() != nil {
		return newCanceledError(req, ctx.Err(), err)
	}

	var netErr net.Error
	switch {
	case errors.As(err, &netErr) && netErr.Timeout(),
		errors.Is(err, context.DeadlineExceeded):
		return newTimeoutError(req, timeout, err)
	case errors.Is(err, context.Canceled):
		return newCanceledError(req, context.Canceled, err)
	default:
		return &Error{Kind: KindNetwork, Method: req.Method, Path: req.Path, Err: err, msg: err.Error()}
	}
}

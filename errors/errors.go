// Package errors provides the standardized error taxonomy for the stream
// session SDK. It defines a closed set of error kinds, helper constructors,
// and classification functions used for retry and failure-surfacing
// decisions across the module.
package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a stream session failure for handling purposes.
type Kind int

const (
	// KindUnknown is the zero value for errors that have not been classified.
	KindUnknown Kind = iota
	// KindInvalidResourceLocator indicates a malformed or unrecognized
	// resource locator. Never retried.
	KindInvalidResourceLocator
	// KindTransportConnection indicates a transport-layer open failure.
	// Retried per the connection policy before being surfaced.
	KindTransportConnection
	// KindStreamRequestFailed indicates the server rejected a protocol
	// request. Not retried within the same attempt.
	KindStreamRequestFailed
	// KindFrameRenderTimeout indicates no frame arrived within the load
	// timeout.
	KindFrameRenderTimeout
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindInvalidResourceLocator:
		return "invalid-resource-locator"
	case KindTransportConnection:
		return "transport-connection"
	case KindStreamRequestFailed:
		return "stream-request-failed"
	case KindFrameRenderTimeout:
		return "frame-render-timeout"
	default:
		return "unknown"
	}
}

// Standard error variables for common conditions.
var (
	// Session lifecycle errors
	ErrAlreadyConnected = errors.New("session already connected")
	ErrNotConnected     = errors.New("session not connected")
	ErrDisposed         = errors.New("connection disposed")

	// Transport errors
	ErrConnectionLost    = errors.New("connection lost")
	ErrConnectionTimeout = errors.New("connection timeout")
	ErrConnectionClosed  = errors.New("connection closed")

	// Protocol errors
	ErrRequestRejected = errors.New("request rejected by server")
	ErrNoResponse      = errors.New("no response received")
	ErrFrameTimeout    = errors.New("timed out waiting for first frame")
)

// Error is a classified stream session error. It wraps an underlying cause
// with a Kind and a human-readable message suitable for surfacing to users.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		if e.Err != nil {
			return fmt.Sprintf("%s: %v", e.Message, e.Err)
		}
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target matches this error by kind. Two *Error values
// match when their kinds are equal, which lets callers test against a bare
// kind sentinel without caring about message or cause.
func (e *Error) Is(target error) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == te.Kind
}

// NewInvalidResourceLocator creates an invalid-locator error.
func NewInvalidResourceLocator(message string, cause error) *Error {
	return &Error{Kind: KindInvalidResourceLocator, Message: message, Err: cause}
}

// NewTransportConnection creates a transport-layer connection error.
func NewTransportConnection(message string, cause error) *Error {
	return &Error{Kind: KindTransportConnection, Message: message, Err: cause}
}

// NewStreamRequestFailed creates a protocol request rejection error.
func NewStreamRequestFailed(message string, cause error) *Error {
	return &Error{Kind: KindStreamRequestFailed, Message: message, Err: cause}
}

// NewFrameRenderTimeout creates a first-frame timeout error.
func NewFrameRenderTimeout(message string, cause error) *Error {
	return &Error{Kind: KindFrameRenderTimeout, Message: message, Err: cause}
}

// KindOf returns the Kind of err, unwrapping as needed. Unclassified errors
// report KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// MessageOf returns the human-readable diagnostic carried by err, falling
// back to err.Error() for unclassified errors and "" for nil.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return err.Error()
}

// IsRetryable reports whether err warrants another connection attempt. Only
// transport-layer open failures retry; locator, protocol, and frame-timeout
// failures are surfaced immediately.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	switch KindOf(err) {
	case KindTransportConnection:
		return true
	case KindInvalidResourceLocator, KindStreamRequestFailed, KindFrameRenderTimeout:
		return false
	}
	return errors.Is(err, ErrConnectionLost) ||
		errors.Is(err, ErrConnectionTimeout) ||
		errors.Is(err, ErrConnectionClosed)
}

// Wrap creates a standardized error with context following the pattern:
// "component.method: action failed: %w"
func Wrap(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s.%s: %s failed: %w", component, method, action, err)
}

// Classify wraps err with the given kind while preserving an existing
// classification: if err already carries a Kind, it is returned unchanged.
func Classify(err error, kind Kind, message string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: kind, Message: message, Err: err}
}

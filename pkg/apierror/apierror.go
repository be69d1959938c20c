// Package apierror defines the error taxonomy surfaced by every sitekit client.
//
// Callers classify failures with errors.Is against the sentinel values and use
// errors.As to reach the status code, envelope code or fault details:
//
//	var apiErr *apierror.Error
//	if errors.Is(err, apierror.ErrAuthorizationRequired) {
//		// re-authenticate
//	} else if errors.As(err, &apiErr) && apiErr.Kind == apierror.KindHTTP {
//		log.Printf("status %d: %s", apiErr.StatusCode, apiErr.Message)
//	}
//
// Transport-level failures (DNS, TLS, connection resets, context cancellation)
// are never wrapped in an Error; they reach the caller unchanged.
package apierror

import (
	"fmt"
	"strings"
)

// Kind is the category of a classified client failure.
type Kind int

const (
	// KindAuthorizationRequired is returned for 401 and 403 responses.
	KindAuthorizationRequired Kind = iota + 1

	// KindHTTP is returned for any other non-2xx response.
	KindHTTP

	// KindDecodingFailure is returned when a payload is malformed or does not
	// have the expected shape, including unknown enum values.
	KindDecodingFailure

	// KindServerFault is returned when the backend reports a structured fault,
	// such as an XML-RPC <fault>.
	KindServerFault
)

func (k Kind) String() string {
	switch k {
	case KindAuthorizationRequired:
		return "authorization_required"
	case KindHTTP:
		return "http_error"
	case KindDecodingFailure:
		return "decoding_failure"
	case KindServerFault:
		return "server_fault"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is a classified client failure.
type Error struct {
	Kind Kind

	// StatusCode is the HTTP status of the response, if one was received.
	StatusCode int

	// Code is the backend's error code from a REST error envelope, e.g.
	// "authorization_required" or "rest_forbidden".
	Code string

	// FaultCode is the numeric XML-RPC fault code.
	FaultCode int

	// Message is the backend's human readable message, when available.
	Message string

	// Err is the underlying cause, for decoding failures.
	Err error
}

// Sentinels for use with errors.Is. Matching is by Kind only.
var (
	ErrAuthorizationRequired = &Error{Kind: KindAuthorizationRequired}
	ErrHTTP                  = &Error{Kind: KindHTTP}
	ErrDecodingFailure       = &Error{Kind: KindDecodingFailure}
	ErrServerFault           = &Error{Kind: KindServerFault}
)

func (e *Error) Error() string {
	if e == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(e.Kind.String())

	switch e.Kind {
	case KindHTTP, KindAuthorizationRequired:
		if e.StatusCode != 0 {
			fmt.Fprintf(&b, " (status %d)", e.StatusCode)
		}
	case KindServerFault:
		fmt.Fprintf(&b, " (fault %d)", e.FaultCode)
	}
	if e.Code != "" {
		fmt.Fprintf(&b, ": %s", e.Code)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}

	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t == nil {
		return false
	}
	return e.Kind == t.Kind
}

// AuthorizationRequired returns a KindAuthorizationRequired error.
func AuthorizationRequired(status int, code, message string) *Error {
	return &Error{
		Kind:       KindAuthorizationRequired,
		StatusCode: status,
		Code:       code,
		Message:    message,
	}
}

// HTTPError returns a KindHTTP error carrying the backend's envelope, if any.
func HTTPError(status int, code, message string) *Error {
	return &Error{
		Kind:       KindHTTP,
		StatusCode: status,
		Code:       code,
		Message:    message,
	}
}

// DecodingFailure wraps err as a KindDecodingFailure error.
func DecodingFailure(err error) *Error {
	return &Error{Kind: KindDecodingFailure, Err: err}
}

// DecodingFailuref formats a KindDecodingFailure error.
func DecodingFailuref(format string, args ...any) *Error {
	return DecodingFailure(fmt.Errorf(format, args...))
}

// ServerFault returns a KindServerFault error.
func ServerFault(code int, message string) *Error {
	return &Error{
		Kind:      KindServerFault,
		FaultCode: code,
		Message:   message,
	}
}

package adapter

import (
	"errors"
	"net/http"

	"sfmcp/internal/config"
	"sfmcp/internal/salesforce"
)

// ErrorKind classifies a failed operation.
type ErrorKind int

const (
	// KindConfiguration means required settings were missing at startup.
	KindConfiguration ErrorKind = iota + 1
	// KindAuthentication means the service rejected the credentials or session.
	KindAuthentication
	// KindInvalidRequest means the arguments or the query were rejected.
	KindInvalidRequest
	// KindTransport means the service could not be reached or answered unusably.
	KindTransport
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfiguration:
		return "ConfigurationError"
	case KindAuthentication:
		return "AuthenticationError"
	case KindInvalidRequest:
		return "InvalidRequestError"
	case KindTransport:
		return "TransportError"
	default:
		return "UnknownError"
	}
}

// Error is the single error type returned by Adapter operations.
type Error struct {
	Kind ErrorKind
	// Message is human readable. For errors reported by Salesforce it is the
	// service's diagnostic, unmodified.
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewConfigurationError wraps a startup configuration failure.
func NewConfigurationError(err error) *Error {
	return &Error{Kind: KindConfiguration, Message: err.Error(), Err: err}
}

func invalidRequest(msg string) *Error {
	return &Error{Kind: KindInvalidRequest, Message: msg}
}

// classify converts any client error into an *Error.
func classify(err error) *Error {
	var adapterErr *Error
	if errors.As(err, &adapterErr) {
		return adapterErr
	}

	if errors.Is(err, config.ErrMissingCredentials) {
		return NewConfigurationError(err)
	}

	var loginErr *salesforce.LoginError
	if errors.As(err, &loginErr) {
		return &Error{Kind: KindAuthentication, Message: loginErr.Error(), Err: err}
	}

	var apiErr *salesforce.APIError
	if errors.As(err, &apiErr) {
		kind := KindInvalidRequest
		switch {
		case apiErr.StatusCode == http.StatusUnauthorized:
			kind = KindAuthentication
		case apiErr.StatusCode >= http.StatusInternalServerError:
			kind = KindTransport
		}
		return &Error{Kind: kind, Message: apiErr.Message, Err: err}
	}

	return &Error{Kind: KindTransport, Message: err.Error(), Err: err}
}

// KindOf returns the kind of err, or 0 if err is not an *Error.
func KindOf(err error) ErrorKind {
	var adapterErr *Error
	if errors.As(err, &adapterErr) {
		return adapterErr.Kind
	}
	return 0
}

// Package apperr defines the single error shape surfaced to users.
package apperr

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies where an error came from
type Kind string

const (
	KindValidation Kind = "validation"
	KindNetwork    Kind = "network"
	KindHTTP       Kind = "http"
	KindDecode     Kind = "decode"
	KindCancelled  Kind = "cancelled"
)

// Error carries a message safe to show to guests and admins plus the
// technical detail that goes to the logs.
type Error struct {
	Kind            Kind
	UserMessage     string
	TechnicalDetail string
	Status          int
	Raw             error
}

// Error implements error interface
func (e *Error) Error() string {
	msg := e.UserMessage
	if msg == "" {
		msg = e.TechnicalDetail
	}
	if e.Raw != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, msg, e.Raw)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, msg)
}

func (e *Error) Unwrap() error {
	return e.Raw
}

// Is matches validation errors by their user message so sentinel values
// can be compared with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.UserMessage == t.UserMessage
}

// Validation builds a validation error
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, UserMessage: message}
}

// Network wraps a transport failure
func Network(err error) *Error {
	kind := KindNetwork
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		kind = KindCancelled
	}
	return &Error{
		Kind:            kind,
		UserMessage:     "Connection problem, please try again",
		TechnicalDetail: err.Error(),
		Raw:             err,
	}
}

// HTTP builds an error for a non-2xx response
func HTTP(status int, userMessage, detail string) *Error {
	if userMessage == "" {
		userMessage = fmt.Sprintf("Request failed (%d)", status)
	}
	return &Error{
		Kind:            KindHTTP,
		UserMessage:     userMessage,
		TechnicalDetail: detail,
		Status:          status,
	}
}

// Decode wraps a response body that could not be parsed
func Decode(err error) *Error {
	return &Error{
		Kind:            KindDecode,
		UserMessage:     "Unexpected response from server",
		TechnicalDetail: err.Error(),
		Raw:             err,
	}
}

// As extracts an *Error from err
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// UserMessage returns the text to show inline for any error
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if e, ok := As(err); ok {
		if e.UserMessage != "" {
			return e.UserMessage
		}
		if e.TechnicalDetail != "" {
			return e.TechnicalDetail
		}
	}
	return err.Error()
}

// IsKind reports whether err is an *Error of the given kind
func IsKind(err error, kind Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == kind
}

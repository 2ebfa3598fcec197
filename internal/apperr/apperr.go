// Package apperr defines the closed set of error kinds surfaced at the HTTP
// boundary.
package apperr

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
)

type Kind int

const (
	Unknown Kind = iota
	Validation
	NotFound
	Upstream
	Filesystem
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case NotFound:
		return "not_found"
	case Upstream:
		return "upstream"
	case Filesystem:
		return "filesystem"
	default:
		return "unknown"
	}
}

// StatusCode is the HTTP status reported for errors of kind k.
func (k Kind) StatusCode() int {
	switch k {
	case Validation:
		return fiber.StatusBadRequest
	case NotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// Error carries a kind and a user-visible message. Cause, when set, is the
// underlying error and is kept out of the message.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil && e.Cause.Error() != e.Message {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

func New(kind Kind, message string) error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies cause as kind. The message shown to clients is the cause's
// own message, so upstream and filesystem errors surface verbatim.
func Wrap(kind Kind, cause error) error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: kind, Message: cause.Error(), Cause: cause}
}

// KindOf returns the kind of the first *Error in err's chain, or Unknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// Message returns the client-facing message for err, falling back when err
// carries no message of its own.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return fallback
}

func IsNotFound(err error) bool   { return KindOf(err) == NotFound }
func IsValidation(err error) bool { return KindOf(err) == Validation }

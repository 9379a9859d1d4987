package posts

import (
	"errors"
	"fmt"
)

// Sentinel errors for common post operations
var (
	// ErrNotFound is returned when a post is not found in the local store
	ErrNotFound = errors.New("post not found")

	// ErrUpstreamUnavailable is returned by the upstream client when a resource
	// could not be obtained: transport failure, non-200 status or open circuit.
	// Callers must not distinguish between those causes.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrMalformedPayload is returned when the upstream answered 200 with a body
	// that could not be turned into a post
	ErrMalformedPayload = errors.New("malformed upstream payload")
)

// Kind classifies errors returned by the post service
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidArgument
	KindNotFound
	KindUpstreamNotFound
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "InvalidArgument"
	case KindNotFound:
		return "NotFound"
	case KindUpstreamNotFound:
		return "UpstreamNotFound"
	default:
		return "Unknown"
	}
}

// ErrorKind returns the kind of err. Anything unrecognised is KindUnknown.
func ErrorKind(err error) Kind {
	switch {
	case err == nil, IsUnknown(err):
		return KindUnknown
	case IsValidationError(err):
		return KindInvalidArgument
	case IsUpstreamNotFound(err):
		return KindUpstreamNotFound
	case IsNotFound(err):
		return KindNotFound
	default:
		return KindUnknown
	}
}

// ValidationError represents a validation error with field context
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) error {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// IsValidationError checks if error is a validation error
func IsValidationError(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr)
}

// NotFoundError represents a resource missing from the local store
type NotFoundError struct {
	Resource string // e.g., "post"
	ID       int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id=%d not found", capitalize(e.Resource), e.ID)
}

// Is makes errors.Is(err, ErrNotFound) hold for post lookups
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound && e.Resource == "post"
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource string, id int64) error {
	return &NotFoundError{
		Resource: resource,
		ID:       id,
	}
}

// IsNotFound checks if error is a local not found error
func IsNotFound(err error) bool {
	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr) || errors.Is(err, ErrNotFound)
}

// UpstreamError is returned when the fallback source could not supply a resource.
// It maps to a 404 like NotFoundError but stays distinguishable in logs.
type UpstreamError struct {
	Cause    error
	Resource string // "post" or "user"
	ID       int64
}

func (e *UpstreamError) Error() string {
	if e.Resource == "user" {
		return fmt.Sprintf("User with id=%d not found", e.ID)
	}
	return fmt.Sprintf("The request to the external API failed, check if a %s with id=%d exists", e.Resource, e.ID)
}

func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

// NewUpstreamError creates a new upstream not found error
func NewUpstreamError(resource string, id int64, cause error) error {
	return &UpstreamError{
		Resource: resource,
		ID:       id,
		Cause:    cause,
	}
}

// IsUpstreamNotFound checks if error is an upstream not found error
func IsUpstreamNotFound(err error) bool {
	var upErr *UpstreamError
	return errors.As(err, &upErr)
}

// IsUserNotFound reports whether err is an upstream miss for a user
func IsUserNotFound(err error) bool {
	var upErr *UpstreamError
	return errors.As(err, &upErr) && upErr.Resource == "user"
}

// UnknownError wraps an unexpected failure. The cause is kept for logging and
// must never be written to a client.
type UnknownError struct {
	Err error
	Op  string
}

func (e *UnknownError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UnknownError) Unwrap() error {
	return e.Err
}

// NewUnknownError wraps err as an unknown error raised by op
func NewUnknownError(op string, err error) error {
	return &UnknownError{
		Op:  op,
		Err: err,
	}
}

// IsUnknown checks if error is an explicit unknown error
func IsUnknown(err error) bool {
	var unknownErr *UnknownError
	return errors.As(err, &unknownErr)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-'a'+'A') + s[1:]
	}
	return s
}

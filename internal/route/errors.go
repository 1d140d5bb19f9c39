package route

import (
	"errors"
	"fmt"
)

// Kind classifies why a matcher rejected a request path.
type Kind int

const (
	// NotFound means the path does not belong to this route; the next route
	// may still match.
	NotFound Kind = iota + 1
	// BadRequest means the path is structurally disallowed, e.g. it tries to
	// traverse out of a served directory. No other route should be tried.
	BadRequest
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not found"
	case BadRequest:
		return "bad request"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is returned by matchers that reject the current path.
type Error struct {
	Kind    Kind
	Segment string
}

func (e *Error) Error() string {
	if e.Segment == "" {
		return "route: " + e.Kind.String()
	}

	return fmt.Sprintf("route: %s: %q", e.Kind, e.Segment)
}

// Is matches any *Error of the same Kind.
func (e *Error) Is(target error) bool {
	// nolint: errorlint // implementing type equality for errors.Is
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	// ErrNotFound can be used with errors.Is to detect a NotFound rejection.
	ErrNotFound = &Error{Kind: NotFound}
	// ErrBadRequest can be used with errors.Is to detect a BadRequest rejection.
	ErrBadRequest = &Error{Kind: BadRequest}
)

func notFound(segment string) error {
	return &Error{Kind: NotFound, Segment: segment}
}

func badRequest(segment string) error {
	return &Error{Kind: BadRequest, Segment: segment}
}

// KindOf returns the Kind carried by err, or 0 if err is not a route error.
func KindOf(err error) Kind {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr.Kind
	}

	return 0
}

// IsNotFound reports whether err is a NotFound rejection.
func IsNotFound(err error) bool {
	return KindOf(err) == NotFound
}

// IsBadRequest reports whether err is a BadRequest rejection.
func IsBadRequest(err error) bool {
	return KindOf(err) == BadRequest
}

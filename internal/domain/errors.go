package domain

import "fmt"

// NotFoundError represents a missing resource.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is enables errors.Is matching on NotFoundError.
func (e NotFoundError) Is(target error) bool {
	_, ok := target.(NotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*NotFoundError)
	return ok
}

// ErrNotFound is the sentinel error for missing resources.
var ErrNotFound = NotFoundError{}

// BadRequestError represents missing or malformed caller input.
type BadRequestError struct {
	Code string
	Hint string
}

func (e BadRequestError) Error() string {
	if e.Code == "" {
		return "bad request"
	}
	return e.Code
}

func (e BadRequestError) Is(target error) bool {
	_, ok := target.(BadRequestError)
	if ok {
		return true
	}
	_, ok = target.(*BadRequestError)
	return ok
}

var ErrBadRequest = BadRequestError{}

// UnauthenticatedError represents a missing or invalid credential.
type UnauthenticatedError struct {
	Code string
}

func (e UnauthenticatedError) Error() string {
	if e.Code == "" {
		return "unauthenticated"
	}
	return e.Code
}

func (e UnauthenticatedError) Is(target error) bool {
	_, ok := target.(UnauthenticatedError)
	if ok {
		return true
	}
	_, ok = target.(*UnauthenticatedError)
	return ok
}

var ErrUnauthenticated = UnauthenticatedError{}

// ForbiddenError represents an authenticated caller with insufficient role
// or karma. The code stays generic so deny reasons never enumerate other
// agents' roles.
type ForbiddenError struct {
	Code string
	Hint string
}

func (e ForbiddenError) Error() string {
	if e.Code == "" {
		return "forbidden"
	}
	return e.Code
}

func (e ForbiddenError) Is(target error) bool {
	_, ok := target.(ForbiddenError)
	if ok {
		return true
	}
	_, ok = target.(*ForbiddenError)
	return ok
}

var ErrForbidden = ForbiddenError{}

// ConflictError represents a uniqueness violation.
type ConflictError struct {
	Code string
	Hint string
}

func (e ConflictError) Error() string {
	if e.Code == "" {
		return "conflict"
	}
	return e.Code
}

func (e ConflictError) Is(target error) bool {
	_, ok := target.(ConflictError)
	if ok {
		return true
	}
	_, ok = target.(*ConflictError)
	return ok
}

var ErrConflict = ConflictError{}

// UpstreamError represents an unreachable or misbehaving identity oracle.
// An upstream timeout is indistinguishable from any other upstream failure.
type UpstreamError struct {
	Code string
	Err  error
}

func (e UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.code(), e.Err)
	}
	return e.code()
}

func (e UpstreamError) code() string {
	if e.Code == "" {
		return "upstream error"
	}
	return e.Code
}

func (e UpstreamError) Unwrap() error { return e.Err }

func (e UpstreamError) Is(target error) bool {
	_, ok := target.(UpstreamError)
	if ok {
		return true
	}
	_, ok = target.(*UpstreamError)
	return ok
}

var ErrUpstream = UpstreamError{}

// MisconfiguredError represents a server-side configuration problem, such as
// a missing or rejected application key. Caller credentials may be fine.
type MisconfiguredError struct {
	Code string
	Hint string
}

func (e MisconfiguredError) Error() string {
	if e.Code == "" {
		return "misconfigured"
	}
	return e.Code
}

func (e MisconfiguredError) Is(target error) bool {
	_, ok := target.(MisconfiguredError)
	if ok {
		return true
	}
	_, ok = target.(*MisconfiguredError)
	return ok
}

var ErrMisconfigured = MisconfiguredError{}

// StorageError represents a persistence failure. It aborts the enclosing
// operation; partial commits are never surfaced as success.
type StorageError struct {
	Err error
}

func (e StorageError) Error() string {
	if e.Err == nil {
		return "storage error"
	}
	return fmt.Sprintf("storage error: %v", e.Err)
}

func (e StorageError) Unwrap() error { return e.Err }

func (e StorageError) Is(target error) bool {
	_, ok := target.(StorageError)
	if ok {
		return true
	}
	_, ok = target.(*StorageError)
	return ok
}

var ErrStorage = StorageError{}

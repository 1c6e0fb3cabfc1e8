package domain

import "errors"

var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")
var ErrConcurrentModification = errors.New("user was modified concurrently")
var ErrUserLocked = errors.New("user is being modified by another request")
var ErrForbidden = errors.New("access forbidden")

// ErrIdentitySync marks a failed identity-provider call. The local write that
// preceded it has already been committed.
var ErrIdentitySync = errors.New("identity provider synchronization failed")

// ErrBusinessRule is matched by every BusinessRuleError via errors.Is.
var ErrBusinessRule = errors.New("business rule violation")

const (
	ReasonUserNotFound     = "User not found"
	ReasonUserNotDeletable = "User can not be deleted"
)

// BusinessRuleError reports a violated precondition of a governed operation.
type BusinessRuleError struct {
	Reason string
}

func NewBusinessRuleError(reason string) *BusinessRuleError {
	return &BusinessRuleError{Reason: reason}
}

func (e *BusinessRuleError) Error() string {
	return e.Reason
}

func (e *BusinessRuleError) Is(target error) bool {
	return target == ErrBusinessRule
}

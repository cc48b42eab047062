// Package apperr defines the error taxonomy shared by the authorization and
// approval-workflow core. Callers branch on the kind with errors.Is; handlers
// map each kind to one HTTP status.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated covers bad/expired/missing tokens and inactive
	// accounts. Token failures always collapse to this single value so no
	// signing detail leaks to the caller.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrPermissionDenied means the caller is authenticated but lacks the
	// rank or ownership the operation requires.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrValidation means the transition input itself is malformed.
	ErrValidation = errors.New("validation error")

	// ErrNotFound means a referenced record does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrBusinessRule is the base of all state-machine precondition
	// failures. Use RuleError to carry the specific reason.
	ErrBusinessRule = errors.New("business rule violation")
)

// RuleReason distinguishes why a workflow transition was refused.
type RuleReason string

const (
	ReasonWrongState       RuleReason = "wrong_state"
	ReasonWrongRank        RuleReason = "wrong_approver_rank"
	ReasonAlreadyDecided   RuleReason = "already_decided"
	ReasonDuplicatePending RuleReason = "duplicate_pending_approval"
)

// RuleError is a business-rule violation carrying its reason. It matches
// ErrBusinessRule under errors.Is.
type RuleError struct {
	Reason RuleReason
	Msg    string
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", e.Reason, e.Msg)
}

func (e *RuleError) Is(target error) bool {
	return target == ErrBusinessRule
}

// Rule builds a RuleError with a formatted message.
func Rule(reason RuleReason, format string, args ...interface{}) error {
	return &RuleError{Reason: reason, Msg: fmt.Sprintf(format, args...)}
}

// ReasonOf extracts the rule reason from err, if err is a business-rule
// violation.
func ReasonOf(err error) (RuleReason, bool) {
	var re *RuleError
	if errors.As(err, &re) {
		return re.Reason, true
	}
	return "", false
}

// Unauthenticatedf wraps ErrUnauthenticated with context for logs. The
// message must not contain token internals.
func Unauthenticatedf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrUnauthenticated)...)
}

// PermissionDeniedf wraps ErrPermissionDenied with context.
func PermissionDeniedf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrPermissionDenied)...)
}

// Validationf wraps ErrValidation with context.
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrValidation)...)
}

// NotFoundf wraps ErrNotFound with context.
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

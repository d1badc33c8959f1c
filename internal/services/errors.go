package services

import (
	"errors"
	"sort"
	"strings"
)

// Error is a business failure with a stable code the handlers put on the wire.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

func newError(code, msg string) *Error { return &Error{Code: code, Message: msg} }

var (
	ErrInvalidToken       = newError("INVALID_TOKEN", "invalid or expired token")
	ErrInvalidCredentials = newError("INVALID_CREDENTIALS", "invalid email or password")
	ErrAccountDisabled    = newError("ACCOUNT_DISABLED", "account is disabled")
	ErrEmailTaken         = newError("EMAIL_TAKEN", "email is already registered")
	ErrEONotApproved      = newError("EO_NOT_APPROVED", "EO application is not approved")

	ErrForbidden = newError("FORBIDDEN", "not allowed")
	// ErrNotFound also covers resources outside the caller's scope.
	ErrNotFound = newError("NOT_FOUND", "resource not found")

	ErrNotApplied      = newError("NOT_APPLIED", "no EO application found")
	ErrAlreadyPending  = newError("ALREADY_PENDING", "an EO application is already pending")
	ErrAlreadyApproved = newError("ALREADY_APPROVED", "EO application is already approved")
	ErrAlreadyRejected = newError("ALREADY_REJECTED", "EO application is already rejected")
	ErrNotPending      = newError("NOT_PENDING", "EO application is not pending")
	ErrNotEditable     = newError("NOT_EDITABLE", "only a rejected application can be edited")
	ErrNikDuplicate    = newError("NIK_DUPLICATE", "NIK is already registered")
	ErrReasonRequired  = newError("REASON_REQUIRED", "a rejection reason is required")

	ErrMemberExists   = newError("MEMBER_EXISTS", "user is already a team member")
	ErrOwnerImmutable = newError("OWNER_IMMUTABLE", "the EO owner cannot be changed or removed")
	ErrOtherEO        = newError("MEMBER_OF_OTHER_EO", "user already belongs to another EO")

	ErrTicketNotFound = newError("TICKET_NOT_FOUND", "ticket not found")
	ErrWrongEvent     = newError("WRONG_EVENT", "ticket belongs to another event")

	ErrTicketTypeInUse = newError("TICKET_TYPE_IN_USE", "tickets of this type already exist")
)

// ValidationError carries field level messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "validation failed: " + strings.Join(keys, ", ")
}

func invalid(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// Code returns the wire code of err, or INTERNAL for anything unexpected.
func Code(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return "VALIDATION_ERROR"
	}
	var be *Error
	if errors.As(err, &be) {
		return be.Code
	}
	return "INTERNAL"
}

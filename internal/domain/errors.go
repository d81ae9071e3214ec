package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Error categories. Typed errors below unwrap to one of these so callers
// can classify with errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// ValidationError is malformed input or a broken business rule.
type ValidationError struct {
	Message string
	Details map[string]any
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrValidation }

// ErrorDetails exposes structured context for API responses.
func (e *ValidationError) ErrorDetails() map[string]any { return e.Details }

// TransitionError is returned when a lead status change is not in the table.
type TransitionError struct {
	Current   Status
	Requested Status
	Allowed   []Status
}

func (e *TransitionError) Error() string {
	allowed := make([]string, len(e.Allowed))
	for i, s := range e.Allowed {
		allowed[i] = string(s)
	}
	list := "none"
	if len(allowed) > 0 {
		list = strings.Join(allowed, ", ")
	}
	return fmt.Sprintf("invalid status transition from %q to %q; allowed: %s", e.Current, e.Requested, list)
}

func (e *TransitionError) Unwrap() error { return ErrValidation }

func (e *TransitionError) ErrorDetails() map[string]any {
	return map[string]any{
		"currentStatus":      e.Current,
		"requestedStatus":    e.Requested,
		"allowedTransitions": e.Allowed,
	}
}

// NotFoundError names the missing resource.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s with identifier '%s' not found", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// AssignmentConflictError is returned when a lead already belongs to another ISP.
type AssignmentConflictError struct {
	LeadID         string
	CurrentISPID   string
	RequestedISPID string
}

func (e *AssignmentConflictError) Error() string {
	return fmt.Sprintf("lead %s is already assigned to ISP %s", e.LeadID, e.CurrentISPID)
}

func (e *AssignmentConflictError) Unwrap() error { return ErrConflict }

func (e *AssignmentConflictError) ErrorDetails() map[string]any {
	return map[string]any{
		"currentIspId": e.CurrentISPID,
		"newIspId":     e.RequestedISPID,
	}
}

// VersionConflictError is returned when a lead changed since it was read.
type VersionConflictError struct {
	LeadID   string
	Expected int
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("lead %s was modified concurrently (expected version %d)", e.LeadID, e.Expected)
}

func (e *VersionConflictError) Unwrap() error { return ErrConflict }

func (e *VersionConflictError) ErrorDetails() map[string]any {
	return map[string]any{"leadId": e.LeadID, "expectedVersion": e.Expected}
}

// DuplicateError is returned when a unique attribute is already taken.
type DuplicateError struct {
	Resource string
	Field    string
	Value    string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s with %s %q already exists", e.Resource, e.Field, e.Value)
}

func (e *DuplicateError) Unwrap() error { return ErrConflict }

// UnauthorizedError means the caller is not authenticated.
type UnauthorizedError struct {
	Message string
}

func (e *UnauthorizedError) Error() string {
	if e.Message == "" {
		return "Authentication required"
	}
	return e.Message
}

func (e *UnauthorizedError) Unwrap() error { return ErrUnauthorized }

// ForbiddenError means the caller is authenticated but not allowed.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string {
	if e.Message == "" {
		return "Access denied"
	}
	return e.Message
}

func (e *ForbiddenError) Unwrap() error { return ErrForbidden }

// IntegrityError reports inconsistent stored data, such as a tariff whose
// ISP does not exist. It is never the caller's fault.
type IntegrityError struct {
	Message string
}

func (e *IntegrityError) Error() string { return "data integrity: " + e.Message }

// Package server provides the HTTP REST API for the HireWire recruiting
// backend.
package server

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

// ErrEmailAlreadyExists indicates email is already registered
type ErrEmailAlreadyExists struct {
	Email string
}

func (e *ErrEmailAlreadyExists) Error() string {
	return fmt.Sprintf("email already registered: %s", e.Email)
}

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid email or password"
}

// ErrUserNotFound indicates user was not found
type ErrUserNotFound struct {
	UserID uuid.UUID
}

func (e *ErrUserNotFound) Error() string {
	return fmt.Sprintf("user not found: %s", e.UserID)
}

// ErrPasswordMismatch indicates current password is incorrect
type ErrPasswordMismatch struct{}

func (e *ErrPasswordMismatch) Error() string {
	return "current password is incorrect"
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrNotFound indicates a resource does not exist
type ErrNotFound struct {
	Resource string
	ID       uuid.UUID
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrForbidden indicates the caller does not own the resource or lacks the
// required role
type ErrForbidden struct {
	Reason string
}

func (e *ErrForbidden) Error() string {
	return e.Reason
}

// ErrPlanLimit indicates the subscription plan's monthly quota is exhausted
type ErrPlanLimit struct {
	Resource string
}

func (e *ErrPlanLimit) Error() string {
	return fmt.Sprintf("plan limit reached for %s, upgrade to continue", e.Resource)
}

// ErrDuplicate indicates a uniqueness conflict (e.g. applying twice)
type ErrDuplicate struct {
	Resource string
}

func (e *ErrDuplicate) Error() string {
	return fmt.Sprintf("%s already exists", e.Resource)
}

// ErrInvalidTransition indicates a status change the state machine forbids
type ErrInvalidTransition struct {
	From string
	To   string
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("invalid status transition: %s to %s", e.From, e.To)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	switch err.(type) {
	case *ErrEmailAlreadyExists, *ErrDuplicate, *ErrInvalidTransition:
		return http.StatusConflict
	case *ErrInvalidCredentials, *ErrPasswordMismatch:
		return http.StatusUnauthorized
	case *ErrPlanLimit:
		return http.StatusPaymentRequired
	case *ErrForbidden:
		return http.StatusForbidden
	case *ErrUserNotFound, *ErrNotFound:
		return http.StatusNotFound
	case *ErrValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

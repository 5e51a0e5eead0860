package server

import (
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"duplicate email", &ErrEmailAlreadyExists{Email: "a@b.com"}, http.StatusConflict},
		{"duplicate application", &ErrDuplicate{Resource: "application"}, http.StatusConflict},
		{"bad transition", &ErrInvalidTransition{From: "completed", To: "in_progress"}, http.StatusConflict},
		{"bad credentials", &ErrInvalidCredentials{}, http.StatusUnauthorized},
		{"password mismatch", &ErrPasswordMismatch{}, http.StatusUnauthorized},
		{"plan limit", &ErrPlanLimit{Resource: "job postings"}, http.StatusPaymentRequired},
		{"forbidden", &ErrForbidden{Reason: "not yours"}, http.StatusForbidden},
		{"user missing", &ErrUserNotFound{UserID: uuid.New()}, http.StatusNotFound},
		{"resource missing", &ErrNotFound{Resource: "job", ID: uuid.New()}, http.StatusNotFound},
		{"validation", &ErrValidation{Field: "email", Message: "bad"}, http.StatusBadRequest},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

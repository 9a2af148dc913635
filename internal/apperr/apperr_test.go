package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindToStatusMapping(t *testing.T) {
	tests := []struct {
		err  *Error
		want int
	}{
		{Validation("bad_request", "invalid"), http.StatusBadRequest},
		{Unauthenticated("no_token", "missing token"), http.StatusUnauthorized},
		{Forbidden("denied", "no access"), http.StatusForbidden},
		{NotFound("missing", "not found"), http.StatusNotFound},
		{Conflict("dup", "already exists"), http.StatusConflict},
		{PreconditionFailed("stale", "version mismatch"), http.StatusPreconditionFailed},
		{Unprocessable("bad_state", "cannot process"), http.StatusUnprocessableEntity},
		{Upstream("face_service_down", errors.New("timeout")), http.StatusBadGateway},
		{Internal("db_error", errors.New("boom")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.err.Kind), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Status())
			assert.Equal(t, tt.want, StatusOf(tt.err))
		})
	}
}

func TestStatusOfUnkindedErrorDefaultsToInternal(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, StatusOf(errors.New("plain error")))
}

func TestCodeOfReturnsConstructorCode(t *testing.T) {
	err := NotFound("employee_not_found", "employee does not exist")
	assert.Equal(t, "employee_not_found", CodeOf(err))
}

func TestCodeOfUnkindedErrorDefaultsToInternalError(t *testing.T) {
	assert.Equal(t, "internal_error", CodeOf(errors.New("plain error")))
}

func TestCodeOfFallsBackToKindWhenCodeEmpty(t *testing.T) {
	err := &Error{Kind: KindConflict, Message: "conflict"}
	assert.Equal(t, "conflict", CodeOf(err))
}

func TestErrorUnwrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal("db_error", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestStatusOfFindsWrappedError(t *testing.T) {
	inner := Forbidden("no_access", "denied")
	wrapped := fmt.Errorf("handling request: %w", inner)

	assert.Equal(t, http.StatusForbidden, StatusOf(wrapped))
	assert.Equal(t, "no_access", CodeOf(wrapped))
}

func TestErrorMessageIncludesCauseWhenPresent(t *testing.T) {
	cause := errors.New("pool exhausted")
	err := Internal("db_error", cause)
	assert.Contains(t, err.Error(), "pool exhausted")
}

func TestErrorMessageWithoutCause(t *testing.T) {
	err := Validation("bad_input", "field is required")
	assert.Equal(t, "field is required", err.Error())
}

package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{ErrHandleTaken, http.StatusBadRequest},
		{ErrInvalidCredentials, http.StatusBadRequest},
		{ErrAccountLocked, http.StatusForbidden},
		{ErrNotAllowed, http.StatusForbidden},
		{ErrPostNotFound, http.StatusNotFound},
		{ErrConversationNotFound, http.StatusNotFound},
		{ErrStoreUnavailable, http.StatusInternalServerError},
		{errors.New("something else"), 0},
	}
	for _, tc := range cases {
		if got := Status(tc.err); got != tc.want {
			t.Errorf("Status(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestStatusMatchesWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("%w (2 attempts remaining)", ErrInvalidCredentials)
	if got := Status(wrapped); got != http.StatusBadRequest {
		t.Errorf("Status(wrapped) = %d, want 400", got)
	}
}

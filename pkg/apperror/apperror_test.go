package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMapErrorToStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{ErrNotFound, http.StatusNotFound},
		{ErrNotUnlocked, http.StatusNotFound},
		{ErrUnauthorized, http.StatusUnauthorized},
		{ErrForbidden, http.StatusForbidden},
		{ErrAlreadyCompleted, http.StatusConflict},
		{ErrNotCompleted, http.StatusConflict},
		{ErrInsufficientFunds, http.StatusBadRequest},
		{ErrInvalidChoice, http.StatusBadRequest},
		{ErrInvalidInput, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
		// Wrapped sentinels keep their status.
		{fmt.Errorf("task: %w", ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("unlock: %w", ErrInsufficientFunds), http.StatusBadRequest},
	}

	for _, tc := range cases {
		if got := MapErrorToStatus(tc.err); got != tc.want {
			t.Errorf("MapErrorToStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestAppErrorOverridesStatus(t *testing.T) {
	err := New(http.StatusTeapot, "teapot", ErrNotFound)
	if got := MapErrorToStatus(err); got != http.StatusTeapot {
		t.Errorf("explicit code = %d, want %d", got, http.StatusTeapot)
	}
}

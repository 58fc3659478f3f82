package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestFetchError_Error(t *testing.T) {
	tests := []struct {
		name    string
		message string
		err     error
		want    string
	}{
		{"message wins", "network unreachable", errors.New("exit status 1"), "network unreachable"},
		{"error only", "", errors.New("exit status 1"), "exit status 1"},
		{"empty", "", nil, "fetch failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fe := NewFetchError("https://example.com", tt.message, tt.err)
			if got := fe.Error(); got != tt.want {
				t.Errorf("Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFetchError_Unwrap(t *testing.T) {
	underlying := errors.New("exit status 1")
	fe := NewFetchError("u", "boom", underlying)
	if !errors.Is(fe, underlying) {
		t.Error("errors.Is should find the underlying error")
	}

	bare := NewFetchError("u", "boom", nil)
	if !errors.Is(bare, ErrFetchFailed) {
		t.Error("errors.Is should match ErrFetchFailed when no cause is set")
	}
}

func TestIsFetchError(t *testing.T) {
	wrapped := fmt.Errorf("extract info: %w", NewFetchError("u", "unsupported URL", nil))
	if !IsFetchError(wrapped) {
		t.Error("IsFetchError() should see through wrapping")
	}
	if IsFetchError(ErrNotFound) {
		t.Error("IsFetchError(ErrNotFound) should be false")
	}
}

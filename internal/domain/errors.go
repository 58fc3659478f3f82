package domain

import (
	"errors"
)

// Common domain errors
var (
	ErrNotFound        = errors.New("download not found")
	ErrNotReady        = errors.New("download not complete")
	ErrInvalidInput    = errors.New("invalid input")
	ErrURLRequired     = errors.New("URL is required")
	ErrArtifactMissing = errors.New("file not found")
	ErrFetchFailed     = errors.New("fetch failed")
	ErrNoArtifact      = errors.New("download completed but file not found")
	ErrNoSpace         = errors.New("insufficient disk space")
)

// FetchError describes a failure reported by the external fetcher.
// Error returns the fetcher's own message so it can be shown verbatim.
type FetchError struct {
	URL     string
	Message string
	Err     error
}

// Error returns the error message
func (e *FetchError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return ErrFetchFailed.Error()
}

// Unwrap returns the underlying error
func (e *FetchError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrFetchFailed
}

// NewFetchError creates a new fetch error
func NewFetchError(url, message string, err error) *FetchError {
	return &FetchError{URL: url, Message: message, Err: err}
}

// IsFetchError returns true if the error came from the fetcher
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

package auth

import "errors"

var (
	// ErrNotAuthenticated is returned by operations that require a signed-in
	// identity when the synchronizer is anonymous.
	ErrNotAuthenticated = errors.New("auth: not authenticated")
)

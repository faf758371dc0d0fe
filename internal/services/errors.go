// internal/services/errors.go
package services

import "errors"

var (
	// ErrQuotaExceeded: the caller's free analysis allowance is used up.
	ErrQuotaExceeded = errors.New("analysis quota exceeded")
	// ErrPermissionDenied: a valid credential without sufficient privilege.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrSignatureMismatch: a payment callback failed CheckMacValue
	// verification. Never followed by a state mutation.
	ErrSignatureMismatch = errors.New("CheckMacValue mismatch")
	// ErrInvalidCredentials: login failed.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUserExists: registration with an already-registered email.
	ErrUserExists = errors.New("user with this email already exists")
)

package model

import "errors"

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint is violated.
	ErrDuplicate = errors.New("record already exists")
	// ErrInvalidCredentials is returned on a failed username/password check.
	// It deliberately does not distinguish an unknown user from a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserDisabled is returned when a user logs in before verifying their email.
	ErrUserDisabled = errors.New("user is not enabled")
	// ErrInvalidOTP covers wrong, expired and already-consumed codes alike.
	ErrInvalidOTP = errors.New("invalid or expired otp")
	// ErrMalformedBody is returned when a request body cannot be decoded.
	ErrMalformedBody = errors.New("malformed request body")
)

package auth

import "errors"

var (
	// ErrInvalidCredentials is returned for any login failure. The message is
	// deliberately uniform so responses cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")

	// ErrInvalidToken indicates a malformed, mis-signed, or already-consumed token.
	ErrInvalidToken = errors.New("auth: invalid token")

	// ErrTokenExpired indicates a structurally valid token past its expiry.
	ErrTokenExpired = errors.New("auth: token expired")

	ErrIdentityNotFound = errors.New("auth: identity not found")

	// ErrNotAuthenticated is returned when no identity is attached to the context.
	ErrNotAuthenticated = errors.New("auth: not authenticated")

	// ErrNotAuthorized is returned when a role check fails.
	ErrNotAuthorized = errors.New("auth: not authorized")

	// ErrOperationNotPermitted is returned when a policy predicate rejects a mutation.
	ErrOperationNotPermitted = errors.New("auth: operation not permitted")

	ErrAlreadyExists = errors.New("auth: already exists")
	ErrInvalidInput  = errors.New("auth: invalid input")

	// ErrResetDispatch wraps notification failures during the forgot-password
	// flow. The reset token is already persisted when this is returned, so a
	// retry by the user is safe.
	ErrResetDispatch = errors.New("auth: reset notification dispatch failed")
)

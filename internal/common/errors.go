// Package common defines shared constants, helpers and sentinel errors used
// across the Memoir server layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Access errors, in the order they are checked.
	ErrorUnauthenticated = errors.New("authentication required")
	ErrorForbidden       = errors.New("forbidden")

	// Category-specific errors.
	ErrorDefaultCategory = errors.New("default categories cannot be modified")

	// Admin-specific errors.
	ErrorSelfAction = errors.New("administrators cannot perform this action on their own account")

	// Validation errors; wrapped with a field-level message.
	ErrorValidation = errors.New("validation error")

	// Auth errors.
	ErrorInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken         = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)

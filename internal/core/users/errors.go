package users

import (
	"errors"
)

// Sentinel errors for common user operations
var (
	// ErrUserNotFound is returned when a user lookup finds no matching record
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidUserID is returned for ids that are not positive integers
	ErrInvalidUserID = errors.New("user id must be positive integer")
)

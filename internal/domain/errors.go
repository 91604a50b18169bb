package domain

import "errors"

// Key registry errors
var (
	ErrKeyNotFound = errors.New("verification key not found")
	ErrKeyExpired  = errors.New("verification key expired")
	ErrKeyConsumed = errors.New("verification key already used")
)

// Relay errors
var (
	ErrSinkNotConfigured = errors.New("notification sink not configured")
	ErrRelayFailed       = errors.New("failed to deliver notification")
)

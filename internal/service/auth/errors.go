package auth

import "errors"

// Errors returned by the JWT service.
var (
	// ErrInvalidToken indicates the token is malformed, has a bad
	// signature, or otherwise fails validation.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken indicates the token's expiry has passed.
	ErrExpiredToken = errors.New("token expired")
)

package auth

import "errors"

var (
	// ErrInvalidToken covers missing, malformed, expired, and badly signed tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrUserNotFound means the token verified but its subject no longer exists.
	ErrUserNotFound = errors.New("user not found")
	// ErrForbidden means the caller is authenticated but lacks the required role.
	ErrForbidden = errors.New("forbidden")
	// ErrPasswordTooLong means the password does not fit in bcrypt's input.
	ErrPasswordTooLong = errors.New("password exceeds 72 bytes")
)

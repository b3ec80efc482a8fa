package domain

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailNotAuthorized = errors.New("email is not authorized to access the system")
	ErrAccountLocked      = errors.New("account locked after too many failed attempts")
	ErrSessionInvalid     = errors.New("session is invalid or expired")
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrUserNotFound       = errors.New("no account found with that email")
	ErrAnswerIncorrect    = errors.New("incorrect security answer")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrNameRequired       = errors.New("full name is required")
	ErrAnswerRequired     = errors.New("security answer is required")
	ErrAdminOnly          = errors.New("admin privileges required")
)

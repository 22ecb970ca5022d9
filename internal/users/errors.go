package users

import "errors"

var (
	// ErrNotFound indicates no user matches the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrInvalidInput indicates bad caller input.
	ErrInvalidInput = errors.New("invalid input")
	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("a user with this email already exists")
	// ErrUsernameTaken indicates the username is already registered.
	ErrUsernameTaken = errors.New("a user with this username already exists")
	// ErrInvalidCredentials indicates a failed username/password check.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotVerified indicates the account exists but the email is unverified.
	ErrNotVerified = errors.New("email verification required")
	// ErrAlreadyVerified indicates a redundant verification attempt.
	ErrAlreadyVerified = errors.New("email is already verified")
	// ErrOTPInvalid indicates a wrong, used, or expired verification code.
	ErrOTPInvalid = errors.New("invalid or expired OTP")
)

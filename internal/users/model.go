package users

import "time"

// User is a registered account. Guests never get a row here.
type User struct {
	ID              string
	Username        string
	Email           string
	PasswordHash    string
	IsEmailVerified bool
	IsAdmin         bool
	CreatedAt       time.Time
}

// OTPVerification is one emailed verification code.
type OTPVerification struct {
	ID        string
	UserID    string
	Code      string
	OTPType   string
	IsUsed    bool
	CreatedAt time.Time
	ExpiresAt time.Time
}

// OTPTypeEmail is the only OTP channel currently in use.
const OTPTypeEmail = "email"

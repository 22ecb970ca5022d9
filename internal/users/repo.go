package users

import "context"

// Repo defines persistence operations for users and OTP codes.
type Repo interface {
	CreateUser(ctx context.Context, user User) error
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
	SetEmailVerified(ctx context.Context, userID string) error
	ListUsers(ctx context.Context, limit, offset int) ([]User, error)

	CreateOTP(ctx context.Context, otp OTPVerification) error
	LatestActiveOTP(ctx context.Context, userID, otpType string) (OTPVerification, error)
	MarkOTPUsed(ctx context.Context, otpID string) error
	ExpireActiveOTPs(ctx context.Context, userID, otpType string) error
}

package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"plagiarism-backend/internal/shared/auth"
	"plagiarism-backend/internal/shared/telemetry"
)

// Service contains business logic for accounts and email verification.
type Service struct {
	Repo      Repo
	Mailer    Mailer
	OTPExpiry time.Duration

	now func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repo, mailer Mailer, otpExpiry time.Duration) *Service {
	if otpExpiry <= 0 {
		otpExpiry = 15 * time.Minute
	}
	return &Service{
		Repo:      repo,
		Mailer:    mailer,
		OTPExpiry: otpExpiry,
		now:       time.Now,
	}
}

// Register creates an unverified account and emails a verification code.
func (s *Service) Register(ctx context.Context, username, email, password string) (User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if username == "" {
		return User{}, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	if email == "" || !strings.Contains(email, "@") {
		return User{}, fmt.Errorf("%w: a valid email is required", ErrInvalidInput)
	}
	if len(password) < 8 {
		return User{}, fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidInput)
	}

	if _, err := s.Repo.GetByUsername(ctx, username); err == nil {
		return User{}, ErrUsernameTaken
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}
	if _, err := s.Repo.GetByEmail(ctx, email); err == nil {
		return User{}, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	user := User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		return User{}, err
	}

	if err := s.sendOTP(ctx, user); err != nil {
		telemetry.Error("failed to send verification otp", map[string]any{
			"user_id": user.ID,
			"err":     err.Error(),
		})
	}

	telemetry.Info("user registered", map[string]any{"user_id": user.ID})
	return user, nil
}

// VerifyOTP consumes a verification code, marks the account verified, and
// returns a signed token.
func (s *Service) VerifyOTP(ctx context.Context, email, code string) (User, string, error) {
	email = strings.TrimSpace(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return User{}, "", fmt.Errorf("%w: email and otp are required", ErrInvalidInput)
	}

	user, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		return User{}, "", err
	}

	otp, err := s.Repo.LatestActiveOTP(ctx, user.ID, OTPTypeEmail)
	if err != nil {
		return User{}, "", err
	}
	if otp.Code != code {
		return User{}, "", ErrOTPInvalid
	}

	if err := s.Repo.MarkOTPUsed(ctx, otp.ID); err != nil {
		return User{}, "", err
	}
	if err := s.Repo.SetEmailVerified(ctx, user.ID); err != nil {
		return User{}, "", err
	}
	user.IsEmailVerified = true

	token, err := s.signToken(user)
	if err != nil {
		return User{}, "", err
	}

	telemetry.Info("email verified", map[string]any{"user_id": user.ID})
	return user, token, nil
}

// ResendOTP invalidates outstanding codes and emails a fresh one.
func (s *Service) ResendOTP(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidInput)
	}

	user, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.IsEmailVerified {
		return ErrAlreadyVerified
	}

	if err := s.Repo.ExpireActiveOTPs(ctx, user.ID, OTPTypeEmail); err != nil {
		return err
	}
	return s.sendOTP(ctx, user)
}

// Login checks credentials. Unverified accounts get a fresh OTP and
// ErrNotVerified so the caller can route to the verification flow.
func (s *Service) Login(ctx context.Context, username, password string) (User, string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return User{}, "", fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	}

	user, err := s.Repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, "", ErrInvalidCredentials
		}
		return User{}, "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return User{}, "", ErrInvalidCredentials
	}

	if !user.IsEmailVerified {
		if err := s.Repo.ExpireActiveOTPs(ctx, user.ID, OTPTypeEmail); err == nil {
			if err := s.sendOTP(ctx, user); err != nil {
				telemetry.Error("failed to send login otp", map[string]any{
					"user_id": user.ID,
					"err":     err.Error(),
				})
			}
		}
		return user, "", ErrNotVerified
	}

	token, err := s.signToken(user)
	if err != nil {
		return User{}, "", err
	}
	return user, token, nil
}

// EmailByUsername resolves a username to its email for the verification flow.
func (s *Service) EmailByUsername(ctx context.Context, username string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	user, err := s.Repo.GetByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	return user.Email, nil
}

// GetByID returns a user by ID.
func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	if strings.TrimSpace(userID) == "" {
		return User{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	return s.Repo.GetByID(ctx, userID)
}

// List returns users for the admin view.
func (s *Service) List(ctx context.Context, limit, offset int) ([]User, error) {
	return s.Repo.ListUsers(ctx, limit, offset)
}

// ProvisionOAuth finds or creates a verified account for an OAuth identity.
// OAuth users get a random unusable password.
func (s *Service) ProvisionOAuth(ctx context.Context, email, name string) (User, string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return User{}, "", fmt.Errorf("%w: email is required", ErrInvalidInput)
	}

	user, err := s.Repo.GetByEmail(ctx, email)
	if err == nil {
		if !user.IsEmailVerified {
			// The provider already verified this address.
			if err := s.Repo.SetEmailVerified(ctx, user.ID); err != nil {
				return User{}, "", err
			}
			user.IsEmailVerified = true
		}
		token, err := s.signToken(user)
		return user, token, err
	}
	if !errors.Is(err, ErrNotFound) {
		return User{}, "", err
	}

	username := oauthUsername(email, name)
	if _, err := s.Repo.GetByUsername(ctx, username); err == nil {
		username = username + "_" + uuid.NewString()[:8]
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		return User{}, "", err
	}

	user = User{
		ID:              uuid.NewString(),
		Username:        username,
		Email:           email,
		PasswordHash:    string(hash),
		IsEmailVerified: true,
		CreatedAt:       s.now().UTC(),
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		return User{}, "", err
	}

	telemetry.Info("oauth user provisioned", map[string]any{"user_id": user.ID})
	token, err := s.signToken(user)
	return user, token, err
}

func (s *Service) sendOTP(ctx context.Context, user User) error {
	code, err := generateOTPCode()
	if err != nil {
		return err
	}

	expiryMinutes := int(s.OTPExpiry / time.Minute)
	otp := OTPVerification{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Code:      code,
		OTPType:   OTPTypeEmail,
		CreatedAt: s.now().UTC(),
		ExpiresAt: s.now().UTC().Add(s.OTPExpiry),
	}
	if err := s.Repo.CreateOTP(ctx, otp); err != nil {
		return err
	}

	return s.Mailer.Send(ctx, user.Email, otpEmailSubject(), otpEmailBody(user.Username, code, expiryMinutes))
}

func (s *Service) signToken(user User) (string, error) {
	return auth.SignJWT(auth.Claims{
		Sub:      user.ID,
		Username: user.Username,
		Email:    user.Email,
		Admin:    user.IsAdmin,
	})
}

func oauthUsername(email, name string) string {
	name = strings.TrimSpace(name)
	if name != "" {
		return strings.ToLower(strings.ReplaceAll(name, " ", "_"))
	}
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}

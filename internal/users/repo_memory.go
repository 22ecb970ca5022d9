package users

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu    sync.RWMutex
	users map[string]User // id -> user
	otps  []OTPVerification
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{users: make(map[string]User)}
}

// CreateUser stores a user.
func (r *MemoryRepo) CreateUser(ctx context.Context, user User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

// GetByID returns a user by ID.
func (r *MemoryRepo) GetByID(ctx context.Context, id string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

// GetByEmail returns a user by email, case-insensitive.
func (r *MemoryRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return User{}, ErrNotFound
}

// GetByUsername returns a user by username.
func (r *MemoryRepo) GetByUsername(ctx context.Context, username string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if user.Username == username {
			return user, nil
		}
	}
	return User{}, ErrNotFound
}

// SetEmailVerified marks a user's email as verified.
func (r *MemoryRepo) SetEmailVerified(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return ErrNotFound
	}
	user.IsEmailVerified = true
	r.users[userID] = user
	return nil
}

// ListUsers lists users newest-first.
func (r *MemoryRepo) ListUsers(ctx context.Context, limit, offset int) ([]User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	r.mu.RLock()
	list := make([]User, 0, len(r.users))
	for _, user := range r.users {
		list = append(list, user)
	}
	r.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})

	if offset >= len(list) {
		return []User{}, nil
	}
	end := len(list)
	if offset+limit < end {
		end = offset + limit
	}
	return list[offset:end], nil
}

// CreateOTP stores an OTP record.
func (r *MemoryRepo) CreateOTP(ctx context.Context, otp OTPVerification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.otps = append(r.otps, otp)
	return nil
}

// LatestActiveOTP returns the most recent unused, unexpired OTP for a user.
func (r *MemoryRepo) LatestActiveOTP(ctx context.Context, userID, otpType string) (OTPVerification, error) {
	if err := ctx.Err(); err != nil {
		return OTPVerification{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	now := time.Now()
	var latest *OTPVerification
	for i := range r.otps {
		otp := r.otps[i]
		if otp.UserID != userID || otp.OTPType != otpType || otp.IsUsed || !otp.ExpiresAt.After(now) {
			continue
		}
		if latest == nil || otp.CreatedAt.After(latest.CreatedAt) {
			latest = &r.otps[i]
		}
	}
	if latest == nil {
		return OTPVerification{}, ErrOTPInvalid
	}
	return *latest, nil
}

// MarkOTPUsed flags an OTP as consumed.
func (r *MemoryRepo) MarkOTPUsed(ctx context.Context, otpID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.otps {
		if r.otps[i].ID == otpID {
			r.otps[i].IsUsed = true
			return nil
		}
	}
	return ErrOTPInvalid
}

// ExpireActiveOTPs invalidates all outstanding OTPs for a user.
func (r *MemoryRepo) ExpireActiveOTPs(ctx context.Context, userID, otpType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for i := range r.otps {
		if r.otps[i].UserID == userID && r.otps[i].OTPType == otpType && !r.otps[i].IsUsed && r.otps[i].ExpiresAt.After(now) {
			r.otps[i].ExpiresAt = now
		}
	}
	return nil
}

var _ Repo = (*MemoryRepo)(nil)

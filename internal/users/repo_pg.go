package users

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const userColumns = `id, username, email, password_hash, is_email_verified, is_admin, created_at`

// CreateUser inserts a new user.
func (r *PGRepo) CreateUser(ctx context.Context, user User) error {
	const query = `
INSERT INTO users (id, username, email, password_hash, is_email_verified, is_admin, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.DB.ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.IsEmailVerified,
		user.IsAdmin,
		user.CreatedAt,
	)
	return err
}

// GetByID fetches a user by ID.
func (r *PGRepo) GetByID(ctx context.Context, id string) (User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1 LIMIT 1`
	return r.getOne(ctx, query, id)
}

// GetByEmail fetches a user by email.
func (r *PGRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1) LIMIT 1`
	return r.getOne(ctx, query, email)
}

// GetByUsername fetches a user by username.
func (r *PGRepo) GetByUsername(ctx context.Context, username string) (User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE username = $1 LIMIT 1`
	return r.getOne(ctx, query, username)
}

// SetEmailVerified marks a user's email as verified.
func (r *PGRepo) SetEmailVerified(ctx context.Context, userID string) error {
	const query = `UPDATE users SET is_email_verified = TRUE WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, userID)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListUsers lists users newest-first for the admin view.
func (r *PGRepo) ListUsers(ctx context.Context, limit, offset int) ([]User, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT ` + userColumns + `
FROM users
ORDER BY created_at DESC
LIMIT $1 OFFSET $2`

	rows, err := r.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var user User
		if err := rows.Scan(
			&user.ID,
			&user.Username,
			&user.Email,
			&user.PasswordHash,
			&user.IsEmailVerified,
			&user.IsAdmin,
			&user.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, user)
	}
	return out, rows.Err()
}

// CreateOTP inserts a new OTP record.
func (r *PGRepo) CreateOTP(ctx context.Context, otp OTPVerification) error {
	const query = `
INSERT INTO otp_verifications (id, user_id, code, otp_type, is_used, created_at, expires_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.DB.ExecContext(ctx, query,
		otp.ID,
		otp.UserID,
		otp.Code,
		otp.OTPType,
		otp.IsUsed,
		otp.CreatedAt,
		otp.ExpiresAt,
	)
	return err
}

// LatestActiveOTP returns the most recent unused, unexpired OTP for a user.
func (r *PGRepo) LatestActiveOTP(ctx context.Context, userID, otpType string) (OTPVerification, error) {
	const query = `
SELECT id, user_id, code, otp_type, is_used, created_at, expires_at
FROM otp_verifications
WHERE user_id = $1 AND otp_type = $2 AND is_used = FALSE AND expires_at > now()
ORDER BY created_at DESC
LIMIT 1`
	var otp OTPVerification
	err := r.DB.QueryRowContext(ctx, query, userID, otpType).Scan(
		&otp.ID,
		&otp.UserID,
		&otp.Code,
		&otp.OTPType,
		&otp.IsUsed,
		&otp.CreatedAt,
		&otp.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return OTPVerification{}, ErrOTPInvalid
		}
		return OTPVerification{}, err
	}
	return otp, nil
}

// MarkOTPUsed flags an OTP as consumed.
func (r *PGRepo) MarkOTPUsed(ctx context.Context, otpID string) error {
	const query = `UPDATE otp_verifications SET is_used = TRUE WHERE id = $1`
	_, err := r.DB.ExecContext(ctx, query, otpID)
	return err
}

// ExpireActiveOTPs invalidates all outstanding OTPs for a user before issuing
// a new one.
func (r *PGRepo) ExpireActiveOTPs(ctx context.Context, userID, otpType string) error {
	const query = `
UPDATE otp_verifications
SET expires_at = now()
WHERE user_id = $1 AND otp_type = $2 AND is_used = FALSE AND expires_at > now()`
	_, err := r.DB.ExecContext(ctx, query, userID, otpType)
	return err
}

func (r *PGRepo) getOne(ctx context.Context, query string, arg any) (User, error) {
	var user User
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.IsEmailVerified,
		&user.IsAdmin,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}

var _ Repo = (*PGRepo)(nil)

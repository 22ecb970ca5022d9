package users

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// generateOTPCode returns a random 6-digit code.
func generateOTPCode() (string, error) {
	max := big.NewInt(1000000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func otpEmailSubject() string {
	return "Verify Your Email - Your OTP Code"
}

func otpEmailBody(username, code string, expiryMinutes int) string {
	return fmt.Sprintf(`Hello %s,

Thank you for registering with Plagiarism Checker. To complete your registration, please use the following verification code:

%s

This code will expire in %d minutes.

If you did not request this code, please ignore this email.

Best regards,
The Plagiarism Checker Team
`, username, code, expiryMinutes)
}

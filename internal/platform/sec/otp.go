// Copyright (c) 2026 Hunt360. All rights reserved.
// Author: dev@hunt360.app

package sec

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// # One-Time Codes

const (
	// OTPDigits is the fixed length of every one-time code.
	OTPDigits = 6

	// otpMin and otpSpan define the uniform range [100000, 999999]:
	// always six digits, never leading-zero-ambiguous.
	otpMin  = 100000
	otpSpan = 900000
)

// GenerateOTP returns a uniformly random 6-digit numeric code.
//
// The code is drawn from crypto/rand, not math/rand: OTPs are credentials
// and must not be predictable from prior observations.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpSpan))
	if err != nil {
		return "", fmt.Errorf("sec: failed to generate OTP: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+otpMin), nil
}

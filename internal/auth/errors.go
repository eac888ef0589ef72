// Copyright (c) 2026 Hunt360. All rights reserved.
// Author: dev@hunt360.app

package auth

import (
	"fmt"

	"github.com/hunt360/hunt360/internal/platform/apperr"
)

// # Error Taxonomy
//
// Stable machine codes surfaced by the authentication API. Clients branch on
// the code, never on the message.
const (
	CodeDuplicateIdentity  = "DUPLICATE_IDENTITY"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeAccountLocked      = "ACCOUNT_LOCKED"
	CodeInvalidSecret      = "INVALID_OR_EXPIRED_OTP"
	CodeWeakPassword       = "WEAK_PASSWORD"
	CodeCaptchaFailed      = "CAPTCHA_FAILED"
)

// errDuplicateIdentity is terminal for the signup attempt; the user must
// restart with a different identity.
func errDuplicateIdentity(what string) *apperr.AppError {
	return apperr.Conflict(CodeDuplicateIdentity, what+" is already registered")
}

// errInvalidCredentials carries the remaining-attempts hint when known.
// The message is deliberately identical for unknown identifier and wrong
// password to prevent account enumeration.
func errInvalidCredentials(remaining int) *apperr.AppError {
	if remaining > 0 {
		return apperr.BadRequest(CodeInvalidCredentials,
			fmt.Sprintf("Invalid login credentials. %d attempts remaining", remaining))
	}
	return apperr.BadRequest(CodeInvalidCredentials, "Invalid login credentials")
}

// errAccountLocked is terminal until the time-boxed lockout expires.
func errAccountLocked() *apperr.AppError {
	return apperr.Forbidden(CodeAccountLocked,
		"Account locked after repeated failed attempts. Try again later")
}

// errInvalidSecret covers absent, mismatched, and expired one-time codes
// alike; the client cannot distinguish them and does not need to.
func errInvalidSecret() *apperr.AppError {
	return apperr.BadRequest(CodeInvalidSecret, "Invalid or expired OTP")
}

// errWeakPassword reports a password that fails the strength policy.
func errWeakPassword() *apperr.AppError {
	return apperr.BadRequest(CodeWeakPassword,
		"Password must contain at least 8 characters with one uppercase letter, one lowercase letter, one digit, and one special character")
}

// errCaptchaFailed reports a rejected human-verification token.
func errCaptchaFailed() *apperr.AppError {
	return apperr.BadRequest(CodeCaptchaFailed, "Captcha verification failed")
}

// Copyright (c) 2026 Hunt360. All rights reserved.
// Author: dev@hunt360.app

package auth

import "time"

// # Authentication Constraints

const (
	// OTPTTL is the duration a one-time code remains valid.
	// Short-lived (5 minutes): the user is actively waiting at the form.
	OTPTTL = 5 * time.Minute

	// SessionTokenTTL is the duration a session token remains valid.
	// Multi-day (7 days) to back the client's "remember me" behavior.
	SessionTokenTTL = 7 * 24 * time.Hour

	// DefaultMaxLoginAttempts is the failed-login threshold that triggers a lockout.
	DefaultMaxLoginAttempts = 4

	// DefaultLockoutDuration is the time-boxed auto-unlock window.
	DefaultLockoutDuration = 15 * time.Minute
)

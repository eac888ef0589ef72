// Copyright (c) 2026 Hunt360. All rights reserved.
// Author: dev@hunt360.app

package auth

import "time"

// # Pending Secrets

// Purpose tags a pending secret with the flow it authorizes.
//
// A code issued for one purpose is never accepted by another flow: the secret
// store keys entries by (email, purpose).
type Purpose string

const (
	// PurposeSignup authorizes promotion of a staged registration.
	PurposeSignup Purpose = "signup"

	// PurposeLogin authorizes the second factor of a login.
	PurposeLogin Purpose = "login"

	// PurposeReset authorizes a one-time password reset.
	PurposeReset Purpose = "reset"
)

// PendingSecret is a short-lived one-time code proving continued control of
// an email address.
//
// # Invariants
//
//   - At most one live secret exists per (email, purpose) key; issuing a new
//     one supersedes the old.
//   - A secret is consumed (deleted) exactly once, on first successful use.
//   - An expired secret is rejected even if the code matches; expiry is
//     checked lazily at verification time, never by a background sweep.
type PendingSecret struct {
	Email     string              `json:"email"`
	Purpose   Purpose             `json:"purpose"`
	Code      string              `json:"code"`
	ExpiresAt time.Time           `json:"expires_at"`
	Staged    *StagedRegistration `json:"staged,omitempty"`
}

// Expired reports whether the secret is past its expiry at instant now.
func (secret *PendingSecret) Expired(now time.Time) bool {
	return now.After(secret.ExpiresAt)
}

// Copyright (c) 2026 Hunt360. All rights reserved.
// Author: dev@hunt360.app

package auth

import (
	"context"
	"time"
)

// # Lockout Accounting

// LockoutDecision is the outcome of recording a failed login attempt.
type LockoutDecision struct {
	// Locked is true when this failure crossed the threshold.
	Locked bool
	// Remaining is the number of attempts left before lockout (0 when Locked).
	Remaining int
	// RetryAfter is the auto-unlock window applied when Locked.
	RetryAfter time.Duration
}

// # User Data Access

// UserRepository defines the data access contract for user accounts.
//
// Implementations must make every mutation atomic per account: two racing
// failed-attempt increments for the same email must both be counted exactly
// once.
type UserRepository interface {

	/*
		FindByEmail returns the account with the given email (canonical
		lowercase form).

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByEmail(context context.Context, email string) (*User, error)

	/*
		FindByIdentifier returns the single account matching the identifier
		against email, username, or full name, in that precedence order, so
		the match is deterministic even when display names collide.

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByIdentifier(context context.Context, identifier string) (*User, error)

	/*
		Create persists a brand-new user account.

		Returns:
		  - error: DUPLICATE_IDENTITY conflict if the email or username is
		    already registered, or storage failures
	*/
	Create(context context.Context, user *User) error

	/*
		UpdatePassword replaces only the user's password hash. Lockout state
		is not affected.

		Returns:
		  - error: apperr.NotFound or storage failures
	*/
	UpdatePassword(context context.Context, email, newHash string) error

	/*
		RecordFailure atomically increments the failed-login counter. When
		the counter reaches threshold the account is locked for lockFor.

		Returns:
		  - LockoutDecision: whether this failure locked the account
		  - error: apperr.NotFound or storage failures
	*/
	RecordFailure(context context.Context, email string, threshold int, lockFor time.Duration) (LockoutDecision, error)

	/*
		RecordSuccess resets the failed-login counter to zero and clears any
		lockout. Called on successful authentication and on time-boxed
		auto-unlock.

		Returns:
		  - error: apperr.NotFound or storage failures
	*/
	RecordSuccess(context context.Context, email string) error
}

// # Volatile Secret Access

// SecretRepository defines the contract for storing pending one-time secrets.
//
// Entries are keyed by (email, purpose). Consume must be an atomic
// check-and-delete: when two concurrent calls present the same valid code,
// exactly one succeeds and the other observes an invalid secret.
type SecretRepository interface {

	/*
		Put stores a pending secret, superseding any prior entry for the
		same (email, purpose) key.

		Returns:
		  - error: Storage failures
	*/
	Put(context context.Context, secret *PendingSecret) error

	/*
		Consume validates and deletes a pending secret in one step.

		Description: Absent entries and code mismatches leave the store
		unchanged except that an entry found expired is lazily removed. On
		success the entry (with any staged registration payload) is returned
		and deleted.

		Returns:
		  - *PendingSecret: The consumed entry
		  - error: INVALID_OR_EXPIRED_OTP or storage failures
	*/
	Consume(context context.Context, email string, purpose Purpose, code string) (*PendingSecret, error)
}

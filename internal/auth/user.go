// Copyright (c) 2026 Hunt360. All rights reserved.
// Author: dev@hunt360.app

/*
Package auth implements the authentication core of the Hunt360 platform.

It defines the domain entities (User, PendingSecret, StagedRegistration) and
the multi-step authentication state machine that unifies signup, login, and
password recovery behind a one-time-password protocol.

# Architecture

This layer is the "Truth" of the system. Entities defined here have no external
dependencies and encapsulate all business rules related to user identity.
*/
package auth

import "time"

// # Domain Entities

// User represents a registered member of the Hunt360 platform.
//
// The password exists only as a bcrypt hash; plaintext never reaches a store
// and the hash never reaches a client or a log line.
type User struct {
	ID           string     `json:"id"`
	FullName     string     `json:"full_name"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // Explicitly omitted from JSON for security.
	Department   string     `json:"department,omitempty"`
	Phone        string     `json:"phone,omitempty"`
	FailedLogins int        `json:"-"`
	LockedUntil  *time.Time `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Locked reports whether the account lockout is active at instant now.
//
// Lockouts are time-boxed: once LockedUntil passes, the account is eligible
// for auto-unlock on the next login attempt.
func (user *User) Locked(now time.Time) bool {
	return user.LockedUntil != nil && now.Before(*user.LockedUntil)
}

// Profile is the client-safe projection of a User returned with session tokens.
type Profile struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Profile returns the client-safe projection of the user.
func (user *User) Profile() Profile {
	return Profile{Email: user.Email, Name: user.FullName}
}

// # Staged Registration

// StagedRegistration holds the full signup payload in escrow until the
// signup OTP is verified, at which point it is promoted into a [User].
//
// The pending secret is consumed atomically with promotion, so a staged
// registration is never promoted twice.
type StagedRegistration struct {
	FullName     string `json:"full_name"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
	Department   string `json:"department,omitempty"`
	Phone        string `json:"phone,omitempty"`
}

// # Field Identifiers

// Global field names for validation and identity mapping in the authentication domain.
const (
	FieldFullName    = "full_name"
	FieldUsername    = "username"
	FieldEmail       = "email"
	FieldPassword    = "password"
	FieldNewPassword = "new_password"
	FieldIdentifier  = "identifier"
	FieldOTP         = "otp"
	FieldMessage     = "message"
	FieldToken       = "token"
	FieldUser        = "user"
)

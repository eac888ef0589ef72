// Copyright (c) 2026 Hunt360. All rights reserved.
// Author: dev@hunt360.app

package auth

import (
	"context"
	"crypto/subtle"
	"strings"
	"sync"
	"time"

	"github.com/hunt360/hunt360/internal/platform/apperr"
)

// # In-Memory User Store

// MemoryUserRepository keeps accounts in process memory. It is the default
// backend; all state is lost on restart.
type MemoryUserRepository struct {
	mu sync.Mutex
	// byEmail indexes accounts by canonical lowercase email.
	byEmail map[string]*User
	// byUsername maps lowercase usernames back to the owning email.
	byUsername map[string]string
	// order preserves insertion order so full-name matches are deterministic.
	order []string
	now   func() time.Time
}

// NewMemoryUserRepository creates an empty in-memory user store.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byEmail:    make(map[string]*User),
		byUsername: make(map[string]string),
		now:        time.Now,
	}
}

func (r *MemoryUserRepository) FindByEmail(_ context.Context, email string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, apperr.NotFound("user")
	}
	copied := *user
	return &copied, nil
}

func (r *MemoryUserRepository) FindByIdentifier(_ context.Context, identifier string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	needle := strings.ToLower(strings.TrimSpace(identifier))

	if user, ok := r.byEmail[needle]; ok {
		copied := *user
		return &copied, nil
	}
	if email, ok := r.byUsername[needle]; ok {
		copied := *r.byEmail[email]
		return &copied, nil
	}
	// Fall back to a full-name scan in insertion order.
	for _, email := range r.order {
		user := r.byEmail[email]
		if strings.ToLower(user.FullName) == needle {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("user")
}

func (r *MemoryUserRepository) Create(_ context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := strings.ToLower(user.Email)
	username := strings.ToLower(user.Username)

	if _, exists := r.byEmail[email]; exists {
		return errDuplicateIdentity("email")
	}
	if _, exists := r.byUsername[username]; exists {
		return errDuplicateIdentity("username")
	}

	copied := *user
	copied.Email = email
	copied.Username = username
	now := r.now().UTC()
	copied.CreatedAt = now
	copied.UpdatedAt = now

	r.byEmail[email] = &copied
	r.byUsername[username] = email
	r.order = append(r.order, email)
	return nil
}

func (r *MemoryUserRepository) UpdatePassword(_ context.Context, email, newHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return apperr.NotFound("user")
	}
	user.PasswordHash = newHash
	user.UpdatedAt = r.now().UTC()
	return nil
}

func (r *MemoryUserRepository) RecordFailure(_ context.Context, email string, threshold int, lockFor time.Duration) (LockoutDecision, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return LockoutDecision{}, apperr.NotFound("user")
	}

	user.FailedLogins++
	user.UpdatedAt = r.now().UTC()

	if user.FailedLogins >= threshold {
		until := r.now().UTC().Add(lockFor)
		user.LockedUntil = &until
		return LockoutDecision{Locked: true, RetryAfter: lockFor}, nil
	}
	return LockoutDecision{Remaining: threshold - user.FailedLogins}, nil
}

func (r *MemoryUserRepository) RecordSuccess(_ context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return apperr.NotFound("user")
	}
	user.FailedLogins = 0
	user.LockedUntil = nil
	user.UpdatedAt = r.now().UTC()
	return nil
}

// # In-Memory Secret Store

// MemorySecretRepository keeps pending one-time secrets in process memory,
// keyed by (email, purpose).
type MemorySecretRepository struct {
	mu      sync.Mutex
	entries map[string]*PendingSecret
	now     func() time.Time
}

// NewMemorySecretRepository creates an empty in-memory secret store.
func NewMemorySecretRepository() *MemorySecretRepository {
	return &MemorySecretRepository{
		entries: make(map[string]*PendingSecret),
		now:     time.Now,
	}
}

func secretKey(email string, purpose Purpose) string {
	return string(purpose) + ":" + strings.ToLower(email)
}

func (r *MemorySecretRepository) Put(_ context.Context, secret *PendingSecret) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *secret
	copied.Email = strings.ToLower(secret.Email)
	r.entries[secretKey(copied.Email, copied.Purpose)] = &copied
	return nil
}

func (r *MemorySecretRepository) Consume(_ context.Context, email string, purpose Purpose, code string) (*PendingSecret, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := secretKey(email, purpose)
	entry, ok := r.entries[key]
	if !ok {
		return nil, errInvalidSecret()
	}
	if entry.Expired(r.now()) {
		delete(r.entries, key)
		return nil, errInvalidSecret()
	}
	if subtle.ConstantTimeCompare([]byte(entry.Code), []byte(code)) != 1 {
		// A wrong code does not burn the entry.
		return nil, errInvalidSecret()
	}

	delete(r.entries, key)
	copied := *entry
	return &copied, nil
}

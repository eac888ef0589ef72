// Copyright (c) 2026 Hunt360. All rights reserved.
// Author: dev@hunt360.app

package auth_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hunt360/hunt360/internal/auth"
	"github.com/hunt360/hunt360/internal/platform/apperr"
)

func seedUser(t *testing.T, repo *auth.MemoryUserRepository, email, username, fullName string) {
	t.Helper()
	err := repo.Create(context.Background(), &auth.User{
		ID:           "test-" + username,
		FullName:     fullName,
		Username:     username,
		Email:        email,
		PasswordHash: "$2a$10$hash",
	})
	require.NoError(t, err)
}

/*
TestMemoryUserRepository_CreateDuplicate verifies that both identity columns
are enforced.
*/
func TestMemoryUserRepository_CreateDuplicate(t *testing.T) {
	repo := auth.NewMemoryUserRepository()
	seedUser(t, repo, "ananya@hunt360.app", "ananya", "Ananya Rao")

	tests := []struct {
		name     string
		email    string
		username string
	}{
		{"same_email", "ananya@hunt360.app", "other"},
		{"same_email_different_case", "ANANYA@hunt360.app", "other"},
		{"same_username", "other@hunt360.app", "ananya"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(context.Background(), &auth.User{
				ID:       "dup",
				FullName: "Someone Else",
				Username: tt.username,
				Email:    tt.email,
			})
			assert.True(t, apperr.HasCode(err, auth.CodeDuplicateIdentity))
		})
	}
}

/*
TestMemoryUserRepository_FindByIdentifier checks the email > username >
full-name precedence order.
*/
func TestMemoryUserRepository_FindByIdentifier(t *testing.T) {
	repo := auth.NewMemoryUserRepository()
	seedUser(t, repo, "ananya@hunt360.app", "ananya", "Ananya Rao")
	seedUser(t, repo, "vikram@hunt360.app", "vikram", "Vikram Shah")

	tests := []struct {
		name       string
		identifier string
		wantEmail  string
	}{
		{"by_email", "ananya@hunt360.app", "ananya@hunt360.app"},
		{"by_username", "vikram", "vikram@hunt360.app"},
		{"by_full_name", "Ananya Rao", "ananya@hunt360.app"},
		{"full_name_case_insensitive", "ananya rao", "ananya@hunt360.app"},
		{"trims_whitespace", "  vikram  ", "vikram@hunt360.app"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := repo.FindByIdentifier(context.Background(), tt.identifier)
			require.NoError(t, err)
			assert.Equal(t, tt.wantEmail, user.Email)
		})
	}

	_, err := repo.FindByIdentifier(context.Background(), "nobody")
	assert.Error(t, err)
}

func TestMemoryUserRepository_ReturnsCopies(t *testing.T) {
	repo := auth.NewMemoryUserRepository()
	seedUser(t, repo, "ananya@hunt360.app", "ananya", "Ananya Rao")

	first, err := repo.FindByEmail(context.Background(), "ananya@hunt360.app")
	require.NoError(t, err)
	first.PasswordHash = "tampered"

	second, err := repo.FindByEmail(context.Background(), "ananya@hunt360.app")
	require.NoError(t, err)
	assert.Equal(t, "$2a$10$hash", second.PasswordHash)
}

/*
TestMemoryUserRepository_RecordFailure walks the counter up to the threshold
and confirms the lock decision at each step.
*/
func TestMemoryUserRepository_RecordFailure(t *testing.T) {
	repo := auth.NewMemoryUserRepository()
	seedUser(t, repo, "ananya@hunt360.app", "ananya", "Ananya Rao")
	ctx := context.Background()

	for want := 3; want >= 1; want-- {
		decision, err := repo.RecordFailure(ctx, "ananya@hunt360.app", 4, 15*time.Minute)
		require.NoError(t, err)
		assert.False(t, decision.Locked)
		assert.Equal(t, want, decision.Remaining)
	}

	decision, err := repo.RecordFailure(ctx, "ananya@hunt360.app", 4, 15*time.Minute)
	require.NoError(t, err)
	assert.True(t, decision.Locked)
	assert.Equal(t, 15*time.Minute, decision.RetryAfter)

	user, err := repo.FindByEmail(ctx, "ananya@hunt360.app")
	require.NoError(t, err)
	assert.True(t, user.Locked(time.Now()))

	// RecordSuccess clears the lock and the counter
	require.NoError(t, repo.RecordSuccess(ctx, "ananya@hunt360.app"))
	user, err = repo.FindByEmail(ctx, "ananya@hunt360.app")
	require.NoError(t, err)
	assert.Equal(t, 0, user.FailedLogins)
	assert.False(t, user.Locked(time.Now()))
}

func TestMemoryUserRepository_ConcurrentFailures(t *testing.T) {
	repo := auth.NewMemoryUserRepository()
	seedUser(t, repo, "ananya@hunt360.app", "ananya", "Ananya Rao")

	const attempts = 16
	var wg sync.WaitGroup
	locked := make(chan bool, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			decision, err := repo.RecordFailure(context.Background(), "ananya@hunt360.app", attempts, time.Minute)
			if err == nil && decision.Locked {
				locked <- true
			}
		}()
	}
	wg.Wait()
	close(locked)

	// Every increment counted exactly once, so the lock fired
	user, err := repo.FindByEmail(context.Background(), "ananya@hunt360.app")
	require.NoError(t, err)
	assert.Equal(t, attempts, user.FailedLogins)
	assert.GreaterOrEqual(t, len(locked), 1)
}

/*
TestMemorySecretRepository_Consume covers single-use redemption, code
mismatch, purpose isolation, and expiry.
*/
func TestMemorySecretRepository_Consume(t *testing.T) {
	repo := auth.NewMemorySecretRepository()
	ctx := context.Background()

	put := func(purpose auth.Purpose, code string) {
		require.NoError(t, repo.Put(ctx, &auth.PendingSecret{
			Email:     "ananya@hunt360.app",
			Purpose:   purpose,
			Code:      code,
			ExpiresAt: time.Now().Add(5 * time.Minute),
		}))
	}

	t.Run("wrong_code_keeps_entry", func(t *testing.T) {
		put(auth.PurposeLogin, "123456")

		_, err := repo.Consume(ctx, "ananya@hunt360.app", auth.PurposeLogin, "654321")
		assert.True(t, apperr.HasCode(err, auth.CodeInvalidSecret))

		secret, err := repo.Consume(ctx, "ananya@hunt360.app", auth.PurposeLogin, "123456")
		require.NoError(t, err)
		assert.Equal(t, "123456", secret.Code)
	})

	t.Run("single_use", func(t *testing.T) {
		put(auth.PurposeLogin, "123456")

		_, err := repo.Consume(ctx, "ananya@hunt360.app", auth.PurposeLogin, "123456")
		require.NoError(t, err)

		_, err = repo.Consume(ctx, "ananya@hunt360.app", auth.PurposeLogin, "123456")
		assert.True(t, apperr.HasCode(err, auth.CodeInvalidSecret))
	})

	t.Run("purposes_are_isolated", func(t *testing.T) {
		put(auth.PurposeLogin, "123456")
		put(auth.PurposeReset, "111111")

		_, err := repo.Consume(ctx, "ananya@hunt360.app", auth.PurposeReset, "123456")
		assert.True(t, apperr.HasCode(err, auth.CodeInvalidSecret))

		_, err = repo.Consume(ctx, "ananya@hunt360.app", auth.PurposeLogin, "123456")
		assert.NoError(t, err)
		_, err = repo.Consume(ctx, "ananya@hunt360.app", auth.PurposeReset, "111111")
		assert.NoError(t, err)
	})

	t.Run("expired_entry_is_removed", func(t *testing.T) {
		require.NoError(t, repo.Put(ctx, &auth.PendingSecret{
			Email:     "ananya@hunt360.app",
			Purpose:   auth.PurposeSignup,
			Code:      "123456",
			ExpiresAt: time.Now().Add(-time.Second),
		}))

		_, err := repo.Consume(ctx, "ananya@hunt360.app", auth.PurposeSignup, "123456")
		assert.True(t, apperr.HasCode(err, auth.CodeInvalidSecret))
	})

	t.Run("put_supersedes_previous_code", func(t *testing.T) {
		put(auth.PurposeLogin, "123456")
		put(auth.PurposeLogin, "777777")

		_, err := repo.Consume(ctx, "ananya@hunt360.app", auth.PurposeLogin, "123456")
		assert.True(t, apperr.HasCode(err, auth.CodeInvalidSecret))

		_, err = repo.Consume(ctx, "ananya@hunt360.app", auth.PurposeLogin, "777777")
		assert.NoError(t, err)
	})
}

func TestMemorySecretRepository_ConcurrentConsume(t *testing.T) {
	repo := auth.NewMemorySecretRepository()
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, &auth.PendingSecret{
		Email:     "ananya@hunt360.app",
		Purpose:   auth.PurposeLogin,
		Code:      "123456",
		ExpiresAt: time.Now().Add(5 * time.Minute),
	}))

	const racers = 16
	var wg sync.WaitGroup
	wins := make(chan struct{}, racers)

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.Consume(ctx, "ananya@hunt360.app", auth.PurposeLogin, "123456"); err == nil {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	// Exactly one racer redeems the code
	assert.Equal(t, 1, len(wins))
}

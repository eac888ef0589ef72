// Copyright (c) 2026 Hunt360. All rights reserved.
// Author: dev@hunt360.app

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hunt360/hunt360/internal/platform/apperr"
)

// # Postgres User Repository

// PostgresUserRepository implements the UserRepository interface using pgx.
//
// Storage-specific errors (pgx.ErrNoRows, unique violations) are mapped to
// domain-friendly [apperr.AppError] values so callers never see driver
// details.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewPostgresUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

const userColumns = "id, fullname, username, email, passwordhash, department, phone, failedattempts, lockeduntil, createdat, updatedat"

func scanUser(row pgx.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.FullName,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Department,
		&user.Phone,
		&user.FailedLogins,
		&user.LockedUntil,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	return user, err
}

/*
Create persists a new user record into the users.account table.

Description: Unique violations on email or username surface as a
DUPLICATE_IDENTITY conflict.

Parameters:
  - context: context.Context
  - user: *User (Entity to persist)

Returns:
  - error: DUPLICATE_IDENTITY conflict or connectivity errors
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	const query = `
		INSERT INTO users.account (
			id, fullname, username, email, passwordhash, department, phone, failedattempts, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, 0, $8, $9)`

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		user.ID,
		user.FullName,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Department,
		user.Phone,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return errDuplicateIdentity("identity")
		}
		return fmt.Errorf("postgres_user_repo_create_failed: %w", err)
	}

	return nil
}

/*
FindByEmail retrieves a user record by their unique email address.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM users.account
		WHERE email = LOWER($1)`, userColumns)

	user, err := scanUser(repository.pool.QueryRow(context, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("user")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_email_failed: %w", err)
	}

	return user, nil
}

/*
FindByIdentifier retrieves a user record by email, username, or full name.

Description: Matches in precedence order so the result stays deterministic
when display names collide. Full-name ties break on the oldest account.

Parameters:
  - context: context.Context
  - identifier: string

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByIdentifier(context context.Context, identifier string) (*User, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM users.account
		WHERE email = LOWER($1) OR username = LOWER($1) OR LOWER(fullname) = LOWER($1)
		ORDER BY
			CASE
				WHEN email = LOWER($1) THEN 0
				WHEN username = LOWER($1) THEN 1
				ELSE 2
			END,
			createdat
		LIMIT 1`, userColumns)

	user, err := scanUser(repository.pool.QueryRow(context, query, identifier))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("user")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_identifier_failed: %w", err)
	}

	return user, nil
}

/*
UpdatePassword updates only the password hash for a specific user.

Parameters:
  - context: context.Context
  - email: string
  - newHash: string

Returns:
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresUserRepository) UpdatePassword(context context.Context, email, newHash string) error {
	const query = `
		UPDATE users.account
		SET passwordhash = $2, updatedat = $3
		WHERE email = LOWER($1)`

	tag, err := repository.pool.Exec(context, query, email, newHash, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_update_password_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("user")
	}

	return nil
}

/*
RecordFailure atomically increments the failed-login counter and applies the
lockout window when the threshold is reached.

Description: A single UPDATE ... RETURNING keeps the count-and-lock decision
atomic under concurrent failed attempts.

Parameters:
  - context: context.Context
  - email: string
  - threshold: int
  - lockFor: time.Duration

Returns:
  - LockoutDecision: whether this failure locked the account
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresUserRepository) RecordFailure(context context.Context, email string, threshold int, lockFor time.Duration) (LockoutDecision, error) {
	const query = `
		UPDATE users.account
		SET failedattempts = failedattempts + 1,
		    lockeduntil = CASE
		        WHEN failedattempts + 1 >= $2 THEN NOW() + make_interval(secs => $3)
		        ELSE lockeduntil
		    END,
		    updatedat = NOW()
		WHERE email = LOWER($1)
		RETURNING failedattempts, lockeduntil`

	var (
		attempts    int
		lockedUntil *time.Time
	)
	err := repository.pool.QueryRow(context, query, email, threshold, lockFor.Seconds()).Scan(&attempts, &lockedUntil)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return LockoutDecision{}, apperr.NotFound("user")
		}
		return LockoutDecision{}, fmt.Errorf("postgres_user_repo_record_failure_failed: %w", err)
	}

	if attempts >= threshold {
		return LockoutDecision{Locked: true, RetryAfter: lockFor}, nil
	}
	return LockoutDecision{Remaining: threshold - attempts}, nil
}

/*
RecordSuccess resets the failed-login counter and clears any lockout.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresUserRepository) RecordSuccess(context context.Context, email string) error {
	const query = `
		UPDATE users.account
		SET failedattempts = 0, lockeduntil = NULL, updatedat = NOW()
		WHERE email = LOWER($1)`

	tag, err := repository.pool.Exec(context, query, email)
	if err != nil {
		return fmt.Errorf("postgres_user_repo_record_success_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("user")
	}

	return nil
}

// Copyright (c) 2026 Hunt360. All rights reserved.
// Author: dev@hunt360.app

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hunt360/hunt360/internal/platform/constants"
)

// # Redis Secret Repository

// consumeScript validates and deletes a pending secret server-side so that
// concurrent consumers cannot both redeem the same code.
var consumeScript = redis.NewScript(`
local payload = redis.call('GET', KEYS[1])
if not payload then
  return false
end
local entry = cjson.decode(payload)
if entry.code ~= ARGV[1] then
  return 'MISMATCH'
end
redis.call('DEL', KEYS[1])
return payload
`)

// RedisSecretRepository implements SecretRepository using Redis. Expiry is
// delegated to Redis key TTLs.
type RedisSecretRepository struct {
	client *redis.Client
}

// NewRedisSecretRepository creates a new Redis-backed SecretRepository.
func NewRedisSecretRepository(client *redis.Client) *RedisSecretRepository {
	return &RedisSecretRepository{client: client}
}

func redisSecretKey(email string, purpose Purpose) string {
	return fmt.Sprintf("%s%s:%s", constants.RedisPrefixOTP, purpose, strings.ToLower(email))
}

/*
Put stores a pending secret under its (email, purpose) key.

Description: The key TTL is derived from the entry's expiry, so Redis drops
stale secrets on its own.

Parameters:
  - context: context.Context
  - secret: *PendingSecret

Returns:
  - error: Storage failures
*/
func (repository *RedisSecretRepository) Put(context context.Context, secret *PendingSecret) error {

	// Serialize the full entry, staged registration included
	payload, err := json.Marshal(secret)
	if err != nil {
		return fmt.Errorf("redis_secret_marshal_failed: %w", err)
	}

	// Derive the remaining TTL from the entry's expiry
	ttl := time.Until(secret.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("redis_secret_put_failed: entry already expired")
	}

	// Set the entry with TTL, superseding any prior code for the key
	key := redisSecretKey(secret.Email, secret.Purpose)
	if err := repository.client.Set(context, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis_secret_set_failed: %w", err)
	}

	// Return nil on success
	return nil
}

/*
Consume validates and deletes a pending secret in a single script call.

Description: A missing or expired key and a code mismatch are reported
identically so callers cannot distinguish the two.

Parameters:
  - context: context.Context
  - email: string
  - purpose: Purpose
  - code: string

Returns:
  - *PendingSecret: The consumed entry
  - error: INVALID_OR_EXPIRED_OTP or connectivity errors
*/
func (repository *RedisSecretRepository) Consume(context context.Context, email string, purpose Purpose, code string) (*PendingSecret, error) {

	// Run the atomic check-and-delete
	key := redisSecretKey(email, purpose)
	result, err := consumeScript.Run(context, repository.client, []string{key}, code).Result()

	// Handle errors
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, errInvalidSecret()
		}
		return nil, fmt.Errorf("redis_secret_consume_failed: %w", err)
	}

	// A mismatch leaves the entry in place for further attempts
	payload, ok := result.(string)
	if !ok || payload == "MISMATCH" {
		return nil, errInvalidSecret()
	}

	// Decode the consumed entry
	var entry PendingSecret
	if err := json.Unmarshal([]byte(payload), &entry); err != nil {
		return nil, fmt.Errorf("redis_secret_unmarshal_failed: %w", err)
	}

	// Return the consumed entry
	return &entry, nil
}

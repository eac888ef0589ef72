// Copyright (c) 2026 Hunt360. All rights reserved.
// Author: dev@hunt360.app

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (stores, gateways) via constructors.
  - Zero Hidden State: No global variables are used to store config.

This ensures the application is Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the Hunt360 API server.
//
// Only SESSION_SECRET is mandatory. Every backing service is optional and
// falls back to a local substitute: in-memory stores when DATABASE_URL or
// REDIS_URL are absent, log-only secret delivery without SMTP credentials,
// and a bypassed human-verification check without a captcha secret. A
// restart therefore wipes all registered users and pending secrets in the
// default deployment.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Cryptographic key for session token signing
	SessionSecret string `env:"SESSION_SECRET,required"`

	// Relational Database (PostgreSQL), optional durable user store
	DatabaseURL string `env:"DATABASE_URL"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis), optional pending-secret store
	RedisURL string `env:"REDIS_URL"`

	// Outbound email (SMTP); absence falls back to log-only delivery
	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SMTPFrom     string `env:"SMTP_FROM"`

	// Human verification; absence bypasses the check
	CaptchaSecret    string `env:"CAPTCHA_SECRET"`
	CaptchaVerifyURL string `env:"CAPTCHA_VERIFY_URL" envDefault:"https://www.google.com/recaptcha/api/siteverify"`

	// Lockout policy
	MaxLoginAttempts int `env:"MAX_LOGIN_ATTEMPTS" envDefault:"4"`
	LockoutMinutes   int `env:"LOCKOUT_MINUTES"    envDefault:"15"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if cfg.MaxLoginAttempts < 1 {
		return nil, fmt.Errorf("config: MAX_LOGIN_ATTEMPTS must be at least 1, got %d", cfg.MaxLoginAttempts)
	}

	return cfg, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// SMTPConfigured reports whether outbound email delivery is available.
func (c *Config) SMTPConfigured() bool {
	return c.SMTPHost != "" && c.SMTPUsername != "" && c.SMTPPassword != ""
}

// CaptchaConfigured reports whether the human-verification oracle is available.
func (c *Config) CaptchaConfigured() bool {
	return c.CaptchaSecret != ""
}

// AllowedOrigin reports whether a cross-origin request from origin is accepted
// in production. The platform domain is always allowed; EXTRA_ORIGINS adds
// exact matches.
func (c *Config) AllowedOrigin(origin string) bool {
	if strings.HasSuffix(origin, "hunt360.app") {
		return true
	}
	for _, extra := range strings.Split(c.ExtraOrigins, ",") {
		if extra != "" && strings.TrimSpace(extra) == origin {
			return true
		}
	}
	return false
}

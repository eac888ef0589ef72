// Copyright (c) 2026 Hunt360. All rights reserved.
// Author: dev@hunt360.app

/*
Package captcha defines the human-verification oracle.

The login flow may require proof that a human initiated the request. The check
is modelled as the [Verifier] port: given an opaque token produced by the
client-side widget, answer yes or no. Two implementations exist:

  - HTTPVerifier: validates the token against the provider's verify endpoint.
  - Bypass: accepts everything; used when no captcha secret is configured.
*/
package captcha

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Verifier validates a human-verification token.
type Verifier interface {
	// Verify reports whether the token is accepted by the oracle. A network
	// or provider failure is returned as an error, distinct from a clean
	// rejection.
	Verify(ctx context.Context, token string) (bool, error)
}

// # Provider-Backed Verifier

// HTTPVerifier checks tokens against a reCAPTCHA-style verify endpoint.
type HTTPVerifier struct {
	verifyURL string
	secret    string
	client    *http.Client
}

// NewHTTPVerifier constructs a provider-backed Verifier.
func NewHTTPVerifier(verifyURL, secret string) *HTTPVerifier {
	return &HTTPVerifier{
		verifyURL: verifyURL,
		secret:    secret,
		client:    &http.Client{Timeout: 5 * time.Second},
	}
}

// Verify implements [Verifier] by POSTing the token to the provider.
func (verifier *HTTPVerifier) Verify(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}

	form := url.Values{}
	form.Set("secret", verifier.secret)
	form.Set("response", token)

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, verifier.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return false, fmt.Errorf("captcha: failed to build verify request: %w", err)
	}
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	response, err := verifier.client.Do(request)
	if err != nil {
		return false, fmt.Errorf("captcha: verify call failed: %w", err)
	}
	defer func() { _ = response.Body.Close() }()

	var result struct {
		Success bool `json:"success"`
	}
	if err := json.NewDecoder(response.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("captcha: failed to decode verify response: %w", err)
	}

	return result.Success, nil
}

// # Bypass

// Bypass accepts every token. Selected when no captcha secret is configured.
type Bypass struct{}

// Verify implements [Verifier] by always succeeding.
func (Bypass) Verify(ctx context.Context, token string) (bool, error) {
	return true, nil
}

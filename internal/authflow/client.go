// Copyright (c) 2026 Hunt360. All rights reserved.
// Author: dev@hunt360.app

package authflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hunt360/hunt360/internal/auth"
)

// # API Client

// APIError is a structured error returned by the authentication API.
type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"error"`
	HTTPStatus int    `json:"-"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// HasCode reports whether err is an [APIError] carrying the given machine code.
func HasCode(err error, code string) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Code == code
}

// Client speaks the authentication API's JSON protocol.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client for the API at baseURL (e.g. "https://api.hunt360.app").
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Session is the token-bearing result of a completed verification step.
type Session struct {
	Token string       `json:"token"`
	User  auth.Profile `json:"user"`
}

// SignupPayload carries the registration form fields.
type SignupPayload struct {
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Department  string `json:"department,omitempty"`
	CountryCode string `json:"country_code,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

// SignupInit stages a registration and triggers the signup OTP email.
func (client *Client) SignupInit(context context.Context, payload SignupPayload) error {
	return client.post(context, "/api/v1/auth/signup-init", payload, nil)
}

// SignupVerify redeems the signup OTP and returns the new session.
func (client *Client) SignupVerify(context context.Context, email, otp string) (*Session, error) {
	session := &Session{}
	if err := client.post(context, "/api/v1/auth/signup-verify", map[string]string{
		"email": email,
		"otp":   otp,
	}, session); err != nil {
		return nil, err
	}
	return session, nil
}

// LoginInit submits the first factor and returns the email the OTP went to.
func (client *Client) LoginInit(context context.Context, identifier, password, captchaToken string) (string, error) {
	var result struct {
		Email string `json:"email"`
	}
	if err := client.post(context, "/api/v1/auth/login-init", map[string]string{
		"identifier":    identifier,
		"password":      password,
		"captcha_token": captchaToken,
	}, &result); err != nil {
		return "", err
	}
	return result.Email, nil
}

// LoginVerify redeems the login OTP and returns the session.
func (client *Client) LoginVerify(context context.Context, email, otp string) (*Session, error) {
	session := &Session{}
	if err := client.post(context, "/api/v1/auth/login-verify", map[string]string{
		"email": email,
		"otp":   otp,
	}, session); err != nil {
		return nil, err
	}
	return session, nil
}

// ForgotPassword requests a reset OTP. The server response is uniform whether
// or not the email is registered.
func (client *Client) ForgotPassword(context context.Context, email string) error {
	return client.post(context, "/api/v1/auth/forgot-password", map[string]string{
		"email": email,
	}, nil)
}

// ResetPassword redeems the reset OTP and replaces the password.
func (client *Client) ResetPassword(context context.Context, email, otp, newPassword string) error {
	return client.post(context, "/api/v1/auth/reset-password", map[string]string{
		"email":        email,
		"otp":          otp,
		"new_password": newPassword,
	}, nil)
}

// Me fetches the profile behind the session token.
func (client *Client) Me(requestContext context.Context, token string) (*auth.Profile, error) {
	request, err := http.NewRequestWithContext(requestContext, http.MethodGet, client.baseURL+"/api/v1/auth/me", nil)
	if err != nil {
		return nil, fmt.Errorf("authflow_client_request_failed: %w", err)
	}
	request.Header.Set("Authorization", "Bearer "+token)

	profile := &auth.Profile{}
	if err := client.do(request, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// # Transport Internals

func (client *Client) post(requestContext context.Context, path string, payload, target any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("authflow_client_marshal_failed: %w", err)
	}

	request, err := http.NewRequestWithContext(requestContext, http.MethodPost, client.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("authflow_client_request_failed: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")

	return client.do(request, target)
}

// do executes the request and unwraps the {data}/{error,code} envelope.
func (client *Client) do(request *http.Request, target any) error {
	response, err := client.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("authflow_client_send_failed: %w", err)
	}
	defer response.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(response.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("authflow_client_read_failed: %w", err)
	}

	if response.StatusCode >= 400 {
		apiErr := &APIError{HTTPStatus: response.StatusCode}
		if err := json.Unmarshal(raw, apiErr); err != nil || apiErr.Code == "" {
			apiErr.Code = "INTERNAL_ERROR"
			apiErr.Message = http.StatusText(response.StatusCode)
		}
		return apiErr
	}

	if target == nil {
		return nil
	}
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("authflow_client_decode_failed: %w", err)
	}
	if err := json.Unmarshal(envelope.Data, target); err != nil {
		return fmt.Errorf("authflow_client_decode_failed: %w", err)
	}
	return nil
}

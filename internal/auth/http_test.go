// Copyright (c) 2026 Hunt360. All rights reserved.
// Author: dev@hunt360.app

package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hunt360/hunt360/internal/platform/middleware"
	"github.com/hunt360/hunt360/internal/platform/sec"
)

// newTestRouter wires the handler behind the same Authenticate middleware the
// API server uses, with real HMAC session tokens.
func newTestRouter(t *testing.T) (*chi.Mux, *serviceHarness) {
	t.Helper()

	harness := newServiceHarness(t)

	tokens, err := sec.NewTokenService("0123456789abcdef0123456789abcdef", "hunt360.app")
	require.NoError(t, err)
	harness.service.tokens = tokens

	router := chi.NewRouter()
	router.Use(middleware.Authenticate(tokens))
	router.Mount("/api/v1/auth", NewHandler(harness.service).Routes())
	return router, harness
}

func postJSON(t *testing.T, router http.Handler, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	request := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

func decodeData(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, target))
}

func errorCode(t *testing.T, recorder *httptest.ResponseRecorder) string {
	t.Helper()

	var envelope struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	return envelope.Code
}

func TestHandler_SignupEndToEnd(t *testing.T) {
	router, harness := newTestRouter(t)

	recorder := postJSON(t, router, "/api/v1/auth/signup-init", map[string]string{
		"full_name": "Ananya Rao",
		"email":     "ananya@hunt360.app",
		"password":  "Abcdef1!",
	})
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	harness.sender.wait(t)

	recorder = postJSON(t, router, "/api/v1/auth/signup-verify", map[string]string{
		"email": "ananya@hunt360.app",
		"otp":   "123456",
	})
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	var session sessionResponse
	decodeData(t, recorder, &session)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, "ananya@hunt360.app", session.User.Email)
	assert.Equal(t, "Ananya Rao", session.User.Name)

	// The issued token authenticates /me
	request := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	request.Header.Set("Authorization", "Bearer "+session.Token)
	meRecorder := httptest.NewRecorder()
	router.ServeHTTP(meRecorder, request)
	require.Equal(t, http.StatusOK, meRecorder.Code, meRecorder.Body.String())

	var profile Profile
	decodeData(t, meRecorder, &profile)
	assert.Equal(t, "Ananya Rao", profile.Name)
}

func TestHandler_SignupInit_Validation(t *testing.T) {
	router, _ := newTestRouter(t)

	tests := []struct {
		name     string
		payload  map[string]string
		wantCode string
	}{
		{
			"missing_full_name",
			map[string]string{"email": "a@hunt360.app", "password": "Abcdef1!"},
			"VALIDATION_ERROR",
		},
		{
			"bad_email",
			map[string]string{"full_name": "A", "email": "not-an-email", "password": "Abcdef1!"},
			"VALIDATION_ERROR",
		},
		{
			"weak_password",
			map[string]string{"full_name": "A", "email": "a@hunt360.app", "password": "weak"},
			CodeWeakPassword,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := postJSON(t, router, "/api/v1/auth/signup-init", tt.payload)
			assert.Equal(t, http.StatusBadRequest, recorder.Code)
			assert.Equal(t, tt.wantCode, errorCode(t, recorder))
		})
	}
}

func TestHandler_SignupInit_DuplicateConflict(t *testing.T) {
	router, harness := newTestRouter(t)
	harness.signup(t, "ananya@hunt360.app", "Abcdef1!")

	recorder := postJSON(t, router, "/api/v1/auth/signup-init", map[string]string{
		"full_name": "Someone Else",
		"email":     "ananya@hunt360.app",
		"password":  "Abcdef1!",
	})
	assert.Equal(t, http.StatusConflict, recorder.Code)
	assert.Equal(t, CodeDuplicateIdentity, errorCode(t, recorder))
}

func TestHandler_LoginEndToEnd(t *testing.T) {
	router, harness := newTestRouter(t)
	harness.signup(t, "ananya@hunt360.app", "Abcdef1!")

	recorder := postJSON(t, router, "/api/v1/auth/login-init", map[string]string{
		"identifier": "ananya",
		"password":   "Abcdef1!",
	})
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	harness.sender.wait(t)

	var sent otpSentResponse
	decodeData(t, recorder, &sent)
	assert.Equal(t, "ananya@hunt360.app", sent.Email)

	recorder = postJSON(t, router, "/api/v1/auth/login-verify", map[string]string{
		"email": sent.Email,
		"otp":   "123456",
	})
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	var session sessionResponse
	decodeData(t, recorder, &session)
	assert.NotEmpty(t, session.Token)
}

func TestHandler_LoginInit_StatusMapping(t *testing.T) {
	router, harness := newTestRouter(t)
	harness.signup(t, "ananya@hunt360.app", "Abcdef1!")

	// Wrong password maps to 400 with the credentials code
	recorder := postJSON(t, router, "/api/v1/auth/login-init", map[string]string{
		"identifier": "ananya@hunt360.app",
		"password":   "wrong-password",
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, CodeInvalidCredentials, errorCode(t, recorder))

	// Lockout maps to 403
	for i := 0; i < DefaultMaxLoginAttempts; i++ {
		recorder = postJSON(t, router, "/api/v1/auth/login-init", map[string]string{
			"identifier": "ananya@hunt360.app",
			"password":   "wrong-password",
		})
	}
	assert.Equal(t, http.StatusForbidden, recorder.Code)
	assert.Equal(t, CodeAccountLocked, errorCode(t, recorder))
}

func TestHandler_LoginVerify_InvalidOTP(t *testing.T) {
	router, _ := newTestRouter(t)

	recorder := postJSON(t, router, "/api/v1/auth/login-verify", map[string]string{
		"email": "ananya@hunt360.app",
		"otp":   "000000",
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, CodeInvalidSecret, errorCode(t, recorder))

	// Non-numeric codes never reach the service
	recorder = postJSON(t, router, "/api/v1/auth/login-verify", map[string]string{
		"email": "ananya@hunt360.app",
		"otp":   "abc123",
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, recorder))
}

func TestHandler_ForgotPassword_UniformResponse(t *testing.T) {
	router, harness := newTestRouter(t)
	harness.signup(t, "ananya@hunt360.app", "Abcdef1!")

	known := postJSON(t, router, "/api/v1/auth/forgot-password", map[string]string{
		"email": "ananya@hunt360.app",
	})
	harness.sender.wait(t)
	unknown := postJSON(t, router, "/api/v1/auth/forgot-password", map[string]string{
		"email": "nobody@hunt360.app",
	})

	// Registered and unregistered emails are indistinguishable to the caller
	assert.Equal(t, http.StatusOK, known.Code)
	assert.Equal(t, http.StatusOK, unknown.Code)
	assert.Equal(t, known.Body.String(), unknown.Body.String())
}

func TestHandler_ResetPassword(t *testing.T) {
	router, harness := newTestRouter(t)
	harness.signup(t, "ananya@hunt360.app", "Abcdef1!")

	recorder := postJSON(t, router, "/api/v1/auth/forgot-password", map[string]string{
		"email": "ananya@hunt360.app",
	})
	require.Equal(t, http.StatusOK, recorder.Code)
	harness.sender.wait(t)

	recorder = postJSON(t, router, "/api/v1/auth/reset-password", map[string]string{
		"email":        "ananya@hunt360.app",
		"otp":          "123456",
		"new_password": "Newpass1!",
	})
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	recorder = postJSON(t, router, "/api/v1/auth/login-init", map[string]string{
		"identifier": "ananya@hunt360.app",
		"password":   "Newpass1!",
	})
	assert.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	harness.sender.wait(t)
}

func TestHandler_Me_RequiresToken(t *testing.T) {
	router, _ := newTestRouter(t)

	request := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	request = httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	request.Header.Set("Authorization", "Bearer not-a-token")
	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

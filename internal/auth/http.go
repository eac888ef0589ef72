// Copyright (c) 2026 Hunt360. All rights reserved.
// Author: dev@hunt360.app

package auth

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hunt360/hunt360/internal/platform/middleware"
	requestutil "github.com/hunt360/hunt360/internal/platform/request"
	"github.com/hunt360/hunt360/internal/platform/respond"
	"github.com/hunt360/hunt360/internal/platform/sec"
	"github.com/hunt360/hunt360/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements the HTTP delivery layer for the authentication lifecycle.
//
// # Scope
//
// The handler is a thin mediation layer between the web and [Service]: it
// owns transport concerns only (status codes, JSON envelopes, input
// validation) and never touches a store directly.
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with authentication routes.
//
// # Endpoints
//   - POST /signup-init     : Stages a registration and sends a signup OTP.
//   - POST /signup-verify   : Confirms the OTP and activates the account.
//   - POST /login-init      : Checks credentials and sends a login OTP.
//   - POST /login-verify    : Confirms the OTP and issues a session token.
//   - POST /forgot-password : Sends a reset OTP (always responds the same).
//   - POST /reset-password  : Confirms the OTP and replaces the password.
//   - GET  /me              : Returns the authenticated user's profile.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/signup-init", handler.signupInit)
	router.Post("/signup-verify", handler.signupVerify)
	router.Post("/login-init", handler.loginInit)
	router.Post("/login-verify", handler.loginVerify)
	router.Post("/forgot-password", handler.forgotPassword)
	router.Post("/reset-password", handler.resetPassword)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/me", handler.me)
	})

	return router
}

// # Request Payloads

type signupInitRequest struct {
	FullName    string `json:"full_name"`
	Username    string `json:"username,omitempty"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Department  string `json:"department,omitempty"`
	CountryCode string `json:"country_code,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

type otpVerifyRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type loginInitRequest struct {
	Identifier   string `json:"identifier"`
	Password     string `json:"password"`
	CaptchaToken string `json:"captcha_token,omitempty"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"new_password"`
}

// # Response Payloads

type messageResponse struct {
	Message string `json:"message"`
}

type otpSentResponse struct {
	Message string `json:"message"`
	Email   string `json:"email"`
}

type sessionResponse struct {
	Token string  `json:"token"`
	User  Profile `json:"user"`
}

/*
SignupInit stages a new registration and dispatches the signup OTP.

POST /api/v1/auth/signup-init

Request:
  - Body: signupInitRequest (FullName, Email, Password, optional Username/Department/CountryCode/PhoneNumber)

Response:
  - 200: messageResponse: OTP dispatched
  - 400: WEAK_PASSWORD or validation failure
  - 409: DUPLICATE_IDENTITY: Email or username already registered
*/
func (handler *Handler) signupInit(writer http.ResponseWriter, request *http.Request) {
	var input signupInitRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldFullName, input.FullName).
		MaxLen(FieldFullName, input.FullName, 120).
		Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// The dial code and number are stored as one display string.
	phone := strings.TrimSpace(strings.TrimSpace(input.CountryCode) + " " + strings.TrimSpace(input.PhoneNumber))

	err := handler.authService.SignupInit(request.Context(), SignupInput{
		FullName:   input.FullName,
		Username:   input.Username,
		Email:      input.Email,
		Password:   input.Password,
		Department: input.Department,
		Phone:      phone,
	})

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, messageResponse{Message: "Verification code sent to your email"})
}

/*
SignupVerify confirms the signup OTP and activates the account.

POST /api/v1/auth/signup-verify

Request:
  - Body: otpVerifyRequest (Email, OTP)

Response:
  - 201: sessionResponse: Session token and profile
  - 400: INVALID_OR_EXPIRED_OTP or validation failure
  - 409: DUPLICATE_IDENTITY: Identity registered since staging
*/
func (handler *Handler) signupVerify(writer http.ResponseWriter, request *http.Request) {
	var input otpVerifyRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldOTP, input.OTP).
		Digits(FieldOTP, input.OTP, sec.OTPDigits)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.SignupVerify(request.Context(), input.Email, input.OTP)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, sessionResponse{Token: session.Token, User: session.User})
}

/*
LoginInit checks the first factor and dispatches the login OTP.

POST /api/v1/auth/login-init

Request:
  - Body: loginInitRequest (Identifier, Password, optional CaptchaToken)

Response:
  - 200: otpSentResponse: OTP dispatched to the account email
  - 400: INVALID_CREDENTIALS or CAPTCHA_FAILED
  - 403: ACCOUNT_LOCKED
*/
func (handler *Handler) loginInit(writer http.ResponseWriter, request *http.Request) {
	var input loginInitRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldIdentifier, input.Identifier).
		Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	email, err := handler.authService.LoginInit(request.Context(), LoginInput{
		Identifier:   input.Identifier,
		Password:     input.Password,
		CaptchaToken: input.CaptchaToken,
	})

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, otpSentResponse{Message: "Login code sent to your email", Email: email})
}

/*
LoginVerify confirms the login OTP and issues a session token.

POST /api/v1/auth/login-verify

Request:
  - Body: otpVerifyRequest (Email, OTP)

Response:
  - 200: sessionResponse: Session token and profile
  - 400: INVALID_OR_EXPIRED_OTP or validation failure
*/
func (handler *Handler) loginVerify(writer http.ResponseWriter, request *http.Request) {
	var input otpVerifyRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldOTP, input.OTP).
		Digits(FieldOTP, input.OTP, sec.OTPDigits)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.LoginVerify(request.Context(), input.Email, input.OTP)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, sessionResponse{Token: session.Token, User: session.User})
}

/*
ForgotPassword starts the recovery flow.

POST /api/v1/auth/forgot-password

Description: Responds identically whether or not the email is registered.

Request:
  - Body: forgotPasswordRequest (Email)

Response:
  - 200: messageResponse: Generic acknowledgment
*/
func (handler *Handler) forgotPassword(writer http.ResponseWriter, request *http.Request) {
	var input forgotPasswordRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.ForgotPasswordInit(request.Context(), input.Email); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, messageResponse{Message: "If the email is registered, a reset code has been sent"})
}

/*
ResetPassword confirms the reset OTP and replaces the password.

POST /api/v1/auth/reset-password

Request:
  - Body: resetPasswordRequest (Email, OTP, NewPassword)

Response:
  - 200: messageResponse: Password updated
  - 400: WEAK_PASSWORD, INVALID_OR_EXPIRED_OTP, or validation failure
*/
func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	var input resetPasswordRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldOTP, input.OTP).
		Digits(FieldOTP, input.OTP, sec.OTPDigits).
		Required(FieldNewPassword, input.NewPassword)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err := handler.authService.ResetPassword(request.Context(), input.Email, input.OTP, input.NewPassword)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, messageResponse{Message: "Password has been reset"})
}

/*
Me returns the authenticated user's profile.

GET /api/v1/auth/me

Response:
  - 200: Profile
  - 401: Missing or invalid session token
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.authService.Profile(request.Context(), claims.Email)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}

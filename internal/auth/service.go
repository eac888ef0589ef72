// Copyright (c) 2026 Hunt360. All rights reserved.
// Author: dev@hunt360.app

package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/hunt360/hunt360/internal/captcha"
	"github.com/hunt360/hunt360/internal/notify"
	"github.com/hunt360/hunt360/internal/platform/apperr"
	"github.com/hunt360/hunt360/internal/platform/constants"
	"github.com/hunt360/hunt360/internal/platform/ctxutil"
	"github.com/hunt360/hunt360/internal/platform/metrics"
	"github.com/hunt360/hunt360/internal/platform/sec"
	"github.com/hunt360/hunt360/pkg/uuid"
)

// # Contracts & Types

// TokenProvider defines the contract for generating session tokens.
type TokenProvider interface {
	// GenerateSessionToken creates a signed token string for the given user.
	//
	// # Parameters
	//   - email: The account's email, used as the token subject.
	//   - name: The account's display name.
	//   - timeToLive: The duration before the token expires.
	//
	// # Returns
	//   - A signed token string, or an err if signing fails.
	GenerateSessionToken(email, name string, timeToLive time.Duration) (string, error)
}

// Policy bounds the lockout behavior of the login flow.
type Policy struct {
	// MaxLoginAttempts is the failed-attempt threshold that locks the account.
	MaxLoginAttempts int
	// LockoutDuration is the time-boxed window after which the lock expires.
	LockoutDuration time.Duration
}

// DefaultPolicy returns the standard lockout policy.
func DefaultPolicy() Policy {
	return Policy{
		MaxLoginAttempts: DefaultMaxLoginAttempts,
		LockoutDuration:  DefaultLockoutDuration,
	}
}

// AuthSession represents a successfully established user session.
type AuthSession struct {
	Token     string
	ExpiresAt time.Time
	User      Profile
}

// Service implements the multi-step authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, lockout,
// or OTP logic must be reviewed by the security team.
type Service struct {
	users    UserRepository
	secrets  SecretRepository
	tokens   TokenProvider
	sender   notify.Sender
	verifier captcha.Verifier
	recorder metrics.Recorder
	policy   Policy

	// Seams for deterministic tests.
	now          func() time.Time
	generateCode func() (string, error)
}

// NewService constructs a new authentication [Service] with its dependencies.
func NewService(
	users UserRepository,
	secrets SecretRepository,
	tokens TokenProvider,
	sender notify.Sender,
	verifier captcha.Verifier,
	recorder metrics.Recorder,
	policy Policy,
) *Service {
	return &Service{
		users:        users,
		secrets:      secrets,
		tokens:       tokens,
		sender:       sender,
		verifier:     verifier,
		recorder:     recorder,
		policy:       policy,
		now:          time.Now,
		generateCode: sec.GenerateOTP,
	}
}

// # Signup Flow

// SignupInput holds the data required to enroll a new member.
type SignupInput struct {
	FullName   string
	Username   string // Optional; derived from FullName when empty.
	Email      string
	Password   string
	Department string
	Phone      string
}

/*
SignupInit validates a registration request, stages it, and dispatches a
signup OTP to the submitted email.

Description: No account row exists until the OTP is verified. The full
payload (password already hashed) is held in escrow alongside the code, so
an abandoned signup leaves nothing behind once the secret expires.

Parameters:
  - context: context.Context
  - input: SignupInput

Returns:
  - error: WEAK_PASSWORD, DUPLICATE_IDENTITY, or storage errors
*/
func (service *Service) SignupInit(context context.Context, input SignupInput) error {

	// Enforce the strength policy before anything touches a store
	if !sec.IsStrongPassword(input.Password) {
		service.recorder.RecordAuthAttempt(metrics.FlowSignup, metrics.OutcomeRejected)
		return errWeakPassword()
	}

	// Canonicalize the identity fields
	email := strings.ToLower(strings.TrimSpace(input.Email))
	fullName := norm.NFC.String(strings.TrimSpace(input.FullName))
	username := strings.ToLower(strings.TrimSpace(input.Username))
	if username == "" {
		username = deriveUsername(fullName)
	}

	// Reject identities that are already registered. The final authority is
	// the unique constraint at promotion time; this check just fails fast.
	if _, err := service.users.FindByEmail(context, email); err == nil {
		service.recorder.RecordAuthAttempt(metrics.FlowSignup, metrics.OutcomeRejected)
		return errDuplicateIdentity("Email")
	}
	if _, err := service.users.FindByIdentifier(context, username); err == nil {
		service.recorder.RecordAuthAttempt(metrics.FlowSignup, metrics.OutcomeRejected)
		return errDuplicateIdentity("Username")
	}

	// Prevent storing plain-text passwords, even in escrow
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// Stage the registration with the signup OTP
	code, err := service.issueSecret(context, email, PurposeSignup, &StagedRegistration{
		FullName:     fullName,
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
		Department:   strings.TrimSpace(input.Department),
		Phone:        strings.TrimSpace(input.Phone),
	})
	if err != nil {
		return err
	}

	// Dispatch the code without blocking the request on SMTP
	service.dispatch(context, email, "Hunt360 Signup Verification",
		fmt.Sprintf("Your Hunt360 signup verification code is %s. It expires in %d minutes.", code, int(OTPTTL.Minutes())))

	return nil
}

/*
SignupVerify consumes the signup OTP and promotes the staged registration
into a live account.

Description: Consumption and promotion form the activation point. The
consume is atomic, so a staged registration can never become two accounts.

Parameters:
  - context: context.Context
  - email: string
  - code: string

Returns:
  - *AuthSession: Session token plus client-safe profile
  - error: INVALID_OR_EXPIRED_OTP, DUPLICATE_IDENTITY, or storage errors
*/
func (service *Service) SignupVerify(context context.Context, email, code string) (*AuthSession, error) {

	// Atomically consume the signup secret
	secret, err := service.secrets.Consume(context, email, PurposeSignup, code)
	if err != nil {
		service.recorder.RecordAuthAttempt(metrics.FlowSignup, metrics.OutcomeFailure)
		return nil, err
	}
	if secret.Staged == nil {
		return nil, apperr.Internal(fmt.Errorf("auth_service_signup_secret_missing_payload"))
	}

	// Promote the escrowed registration. Time-sortable ID to keep index order.
	user := &User{
		ID:           uuid.New(),
		FullName:     secret.Staged.FullName,
		Username:     secret.Staged.Username,
		Email:        secret.Staged.Email,
		PasswordHash: secret.Staged.PasswordHash,
		Department:   secret.Staged.Department,
		Phone:        secret.Staged.Phone,
	}
	if err := service.users.Create(context, user); err != nil {
		service.recorder.RecordAuthAttempt(metrics.FlowSignup, metrics.OutcomeFailure)
		return nil, err
	}

	service.recorder.RecordAuthAttempt(metrics.FlowSignup, metrics.OutcomeSuccess)
	return service.establishSession(user)
}

// # Login Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Identifier   string // Email, username, or full name.
	Password     string
	CaptchaToken string
}

/*
LoginInit verifies credentials and, on success, dispatches a login OTP.

Description: The password check is only the first factor. Lockout gating
runs before credential verification, so a locked account rejects even a
correct password. Captcha verification fails closed.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - string: The canonical email the OTP was sent to
  - error: CAPTCHA_FAILED, ACCOUNT_LOCKED, INVALID_CREDENTIALS, or storage errors
*/
func (service *Service) LoginInit(context context.Context, input LoginInput) (string, error) {

	// Human verification gate. An unreachable verifier rejects the attempt.
	ok, err := service.verifier.Verify(context, input.CaptchaToken)
	if err != nil || !ok {
		service.recorder.RecordAuthAttempt(metrics.FlowLogin, metrics.OutcomeRejected)
		return "", errCaptchaFailed()
	}

	// Resolve the account. Generic message to prevent enumeration.
	user, err := service.users.FindByIdentifier(context, input.Identifier)
	if err != nil {
		service.recorder.RecordAuthAttempt(metrics.FlowLogin, metrics.OutcomeFailure)
		return "", errInvalidCredentials(0)
	}

	// Lockout gate, with time-boxed auto-unlock
	now := service.now()
	if user.Locked(now) {
		service.recorder.RecordAuthAttempt(metrics.FlowLogin, metrics.OutcomeLocked)
		return "", errAccountLocked()
	}
	if user.LockedUntil != nil {
		// The lock window has passed; reset the counter before this attempt.
		if err := service.users.RecordSuccess(context, user.Email); err != nil {
			return "", fmt.Errorf("auth_service_unlock_failed: %w", err)
		}
	}

	// First factor: constant-time bcrypt comparison
	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		decision, err := service.users.RecordFailure(context, user.Email, service.policy.MaxLoginAttempts, service.policy.LockoutDuration)
		if err != nil {
			return "", fmt.Errorf("auth_service_record_failure_failed: %w", err)
		}
		if decision.Locked {
			service.recorder.RecordAuthAttempt(metrics.FlowLogin, metrics.OutcomeLocked)
			return "", errAccountLocked()
		}
		service.recorder.RecordAuthAttempt(metrics.FlowLogin, metrics.OutcomeFailure)
		return "", errInvalidCredentials(decision.Remaining)
	}

	// Second factor: issue and dispatch the login OTP
	code, err := service.issueSecret(context, user.Email, PurposeLogin, nil)
	if err != nil {
		return "", err
	}
	service.dispatch(context, user.Email, "Hunt360 Login OTP",
		fmt.Sprintf("Your Hunt360 login code is %s. It expires in %d minutes.", code, int(OTPTTL.Minutes())))

	return user.Email, nil
}

/*
LoginVerify consumes the login OTP and establishes a session.

Description: A consumed OTP also clears the failed-attempt counter, since
the caller has now proven both factors.

Parameters:
  - context: context.Context
  - email: string
  - code: string

Returns:
  - *AuthSession: Session token plus client-safe profile
  - error: INVALID_OR_EXPIRED_OTP or storage errors
*/
func (service *Service) LoginVerify(context context.Context, email, code string) (*AuthSession, error) {

	// Atomically consume the login secret
	if _, err := service.secrets.Consume(context, email, PurposeLogin, code); err != nil {
		service.recorder.RecordAuthAttempt(metrics.FlowLogin, metrics.OutcomeFailure)
		return nil, err
	}

	// The OTP only exists for registered accounts, so this lookup succeeds
	// unless the account vanished mid-flow.
	user, err := service.users.FindByEmail(context, email)
	if err != nil {
		return nil, errInvalidSecret()
	}

	// Both factors proven; reset lockout accounting
	if err := service.users.RecordSuccess(context, user.Email); err != nil {
		return nil, fmt.Errorf("auth_service_record_success_failed: %w", err)
	}

	service.recorder.RecordAuthAttempt(metrics.FlowLogin, metrics.OutcomeSuccess)
	return service.establishSession(user)
}

// # Password Recovery

/*
ForgotPasswordInit starts the password recovery flow.

Description: The response is identical whether or not the email is
registered, to prevent account enumeration. A reset OTP is issued only for
known accounts.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - error: Storage failures only; an unknown email is not an error
*/
func (service *Service) ForgotPasswordInit(context context.Context, email string) error {

	// Unknown accounts get the same outward behavior as known ones
	user, err := service.users.FindByEmail(context, email)
	if err != nil {
		if apperr.IsAppError(err) {
			return nil
		}
		return fmt.Errorf("auth_service_forgot_lookup_failed: %w", err)
	}

	// Issue and dispatch the reset OTP
	code, err := service.issueSecret(context, user.Email, PurposeReset, nil)
	if err != nil {
		return err
	}
	service.dispatch(context, user.Email, "Hunt360 Password Reset Code",
		fmt.Sprintf("Your Hunt360 password reset code is %s. It expires in %d minutes.", code, int(OTPTTL.Minutes())))

	return nil
}

/*
ResetPassword consumes the reset OTP and replaces the account password.

Description: Strength is validated before the OTP is consumed, so a weak
password does not burn a valid code. Lockout state is untouched: a locked
account stays locked until its window passes, new password or not.

Parameters:
  - context: context.Context
  - email: string
  - code: string
  - newPassword: string

Returns:
  - error: WEAK_PASSWORD, INVALID_OR_EXPIRED_OTP, or storage errors
*/
func (service *Service) ResetPassword(context context.Context, email, code, newPassword string) error {

	// Strength gate runs first so a weak submission keeps the code alive
	if !sec.IsStrongPassword(newPassword) {
		service.recorder.RecordAuthAttempt(metrics.FlowReset, metrics.OutcomeRejected)
		return errWeakPassword()
	}

	// Atomically consume the reset secret
	if _, err := service.secrets.Consume(context, email, PurposeReset, code); err != nil {
		service.recorder.RecordAuthAttempt(metrics.FlowReset, metrics.OutcomeFailure)
		return err
	}

	// Hash and persist the replacement password
	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_hash_failed: %w", err)
	}
	if err := service.users.UpdatePassword(context, email, hashedPassword); err != nil {
		return err
	}

	service.recorder.RecordAuthAttempt(metrics.FlowReset, metrics.OutcomeSuccess)
	return nil
}

// # Profile

/*
Profile returns the client-safe profile for an authenticated email.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *Profile: Client-safe projection
  - error: apperr.NotFound or storage errors
*/
func (service *Service) Profile(context context.Context, email string) (*Profile, error) {
	user, err := service.users.FindByEmail(context, email)
	if err != nil {
		return nil, err
	}
	profile := user.Profile()
	return &profile, nil
}

// # Internals

// issueSecret generates a fresh OTP and stores it under (email, purpose),
// superseding any previous code for the same key.
func (service *Service) issueSecret(context context.Context, email string, purpose Purpose, staged *StagedRegistration) (string, error) {
	code, err := service.generateCode()
	if err != nil {
		return "", fmt.Errorf("auth_service_otp_generation_failed: %w", err)
	}

	secret := &PendingSecret{
		Email:     email,
		Purpose:   purpose,
		Code:      code,
		ExpiresAt: service.now().Add(OTPTTL),
		Staged:    staged,
	}
	if err := service.secrets.Put(context, secret); err != nil {
		return "", fmt.Errorf("auth_service_secret_store_failed: %w", err)
	}

	service.recorder.RecordOTPIssued(string(purpose))
	return code, nil
}

// dispatch sends a notification in the background. Delivery failures are
// logged, never surfaced: the secret is already stored, and leaking delivery
// state would reveal whether the address is registered.
func (service *Service) dispatch(requestContext context.Context, to, subject, body string) {
	logger := ctxutil.GetLogger(requestContext)
	go func() {
		sendContext, cancel := context.WithTimeout(context.Background(), constants.NotifyTimeout)
		defer cancel()
		if err := service.sender.Send(sendContext, to, subject, body); err != nil {
			logger.Error("notification_dispatch_failed", "recipient", to, "subject", subject, "error", err)
		}
	}()
}

// deriveUsername takes the first whitespace-separated token of the full name,
// lowercased. Matches the platform's historical default for generated handles.
func deriveUsername(fullName string) string {
	fields := strings.Fields(fullName)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}

// establishSession signs a session token for the user.
func (service *Service) establishSession(user *User) (*AuthSession, error) {
	token, err := service.tokens.GenerateSessionToken(user.Email, user.FullName, SessionTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}
	return &AuthSession{
		Token:     token,
		ExpiresAt: service.now().Add(SessionTokenTTL),
		User:      user.Profile(),
	}, nil
}

// Copyright (c) 2026 Hunt360. All rights reserved.
// Author: dev@hunt360.app

package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hunt360/hunt360/internal/platform/apperr"
	"github.com/hunt360/hunt360/internal/platform/metrics"
	"github.com/hunt360/hunt360/internal/platform/sec"
)

// # Test Doubles

type sentMail struct {
	To      string
	Subject string
	Body    string
}

// channelSender delivers each send on a channel so tests can wait for the
// async dispatch without sleeping.
type channelSender struct {
	ch chan sentMail
}

func newChannelSender() *channelSender {
	return &channelSender{ch: make(chan sentMail, 8)}
}

func (sender *channelSender) Send(_ context.Context, to, subject, body string) error {
	sender.ch <- sentMail{To: to, Subject: subject, Body: body}
	return nil
}

func (sender *channelSender) wait(t *testing.T) sentMail {
	t.Helper()
	select {
	case mail := <-sender.ch:
		return mail
	case <-time.After(2 * time.Second):
		t.Fatal("expected a notification dispatch")
		return sentMail{}
	}
}

func (sender *channelSender) assertSilent(t *testing.T) {
	t.Helper()
	select {
	case mail := <-sender.ch:
		t.Fatalf("unexpected notification to %s", mail.To)
	case <-time.After(100 * time.Millisecond):
	}
}

type denyVerifier struct{}

func (denyVerifier) Verify(context.Context, string) (bool, error) {
	return false, nil
}

type allowVerifier struct{}

func (allowVerifier) Verify(context.Context, string) (bool, error) {
	return true, nil
}

type stubTokens struct{}

func (stubTokens) GenerateSessionToken(email, _ string, _ time.Duration) (string, error) {
	return "token-" + email, nil
}

// # Harness

type serviceHarness struct {
	service *Service
	users   *MemoryUserRepository
	secrets *MemorySecretRepository
	sender  *channelSender
	clock   time.Time
}

func newServiceHarness(t *testing.T) *serviceHarness {
	t.Helper()

	harness := &serviceHarness{
		users:   NewMemoryUserRepository(),
		secrets: NewMemorySecretRepository(),
		sender:  newChannelSender(),
		clock:   time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}

	harness.service = NewService(
		harness.users,
		harness.secrets,
		stubTokens{},
		harness.sender,
		allowVerifier{},
		metrics.Noop{},
		DefaultPolicy(),
	)

	// Deterministic time shared by the service and both stores.
	now := func() time.Time { return harness.clock }
	harness.service.now = now
	harness.users.now = now
	harness.secrets.now = now
	harness.service.generateCode = func() (string, error) { return "123456", nil }

	return harness
}

func (harness *serviceHarness) advance(d time.Duration) {
	harness.clock = harness.clock.Add(d)
}

func (harness *serviceHarness) signup(t *testing.T, email, password string) {
	t.Helper()
	ctx := context.Background()

	err := harness.service.SignupInit(ctx, SignupInput{
		FullName: "Ananya Rao",
		Email:    email,
		Password: password,
	})
	require.NoError(t, err)
	harness.sender.wait(t)

	_, err = harness.service.SignupVerify(ctx, email, "123456")
	require.NoError(t, err)
}

// # Signup

func TestService_SignupFlow(t *testing.T) {
	harness := newServiceHarness(t)
	ctx := context.Background()

	err := harness.service.SignupInit(ctx, SignupInput{
		FullName:   "Ananya Rao",
		Email:      "Ananya@Hunt360.app",
		Password:   "Abcdef1!",
		Department: "Engineering",
	})
	require.NoError(t, err)

	// No account exists before verification
	_, err = harness.users.FindByEmail(ctx, "ananya@hunt360.app")
	assert.Error(t, err)

	mail := harness.sender.wait(t)
	assert.Equal(t, "ananya@hunt360.app", mail.To)
	assert.Contains(t, mail.Body, "123456")

	session, err := harness.service.SignupVerify(ctx, "ananya@hunt360.app", "123456")
	require.NoError(t, err)
	assert.Equal(t, "token-ananya@hunt360.app", session.Token)
	assert.Equal(t, "Ananya Rao", session.User.Name)

	// Promotion persisted the account with a derived username
	user, err := harness.users.FindByEmail(ctx, "ananya@hunt360.app")
	require.NoError(t, err)
	assert.Equal(t, "ananya", user.Username)
	assert.Equal(t, "Engineering", user.Department)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "Abcdef1!", user.PasswordHash)
}

func TestService_SignupInit_WeakPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{"too_short", "Ab1!xyz"},
		{"no_uppercase", "abcdef1!"},
		{"no_lowercase", "ABCDEF1!"},
		{"no_digit", "Abcdefg!"},
		{"no_special", "Abcdefg1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			harness := newServiceHarness(t)
			err := harness.service.SignupInit(context.Background(), SignupInput{
				FullName: "Ananya Rao",
				Email:    "ananya@hunt360.app",
				Password: tt.password,
			})
			assert.True(t, apperr.HasCode(err, CodeWeakPassword))
		})
	}
}

func TestService_SignupInit_DuplicateEmail(t *testing.T) {
	harness := newServiceHarness(t)
	harness.signup(t, "ananya@hunt360.app", "Abcdef1!")

	err := harness.service.SignupInit(context.Background(), SignupInput{
		FullName: "Another Person",
		Email:    "ananya@hunt360.app",
		Password: "Abcdef1!",
	})
	assert.True(t, apperr.HasCode(err, CodeDuplicateIdentity))
}

func TestService_SignupVerify_WrongCodeDoesNotBurn(t *testing.T) {
	harness := newServiceHarness(t)
	ctx := context.Background()

	err := harness.service.SignupInit(ctx, SignupInput{
		FullName: "Ananya Rao",
		Email:    "ananya@hunt360.app",
		Password: "Abcdef1!",
	})
	require.NoError(t, err)
	harness.sender.wait(t)

	_, err = harness.service.SignupVerify(ctx, "ananya@hunt360.app", "999999")
	assert.True(t, apperr.HasCode(err, CodeInvalidSecret))

	// A mismatch leaves the staged registration intact
	_, err = harness.service.SignupVerify(ctx, "ananya@hunt360.app", "123456")
	assert.NoError(t, err)
}

func TestService_SignupVerify_ExpiredCode(t *testing.T) {
	harness := newServiceHarness(t)
	ctx := context.Background()

	err := harness.service.SignupInit(ctx, SignupInput{
		FullName: "Ananya Rao",
		Email:    "ananya@hunt360.app",
		Password: "Abcdef1!",
	})
	require.NoError(t, err)
	harness.sender.wait(t)

	harness.advance(OTPTTL + time.Second)

	_, err = harness.service.SignupVerify(ctx, "ananya@hunt360.app", "123456")
	assert.True(t, apperr.HasCode(err, CodeInvalidSecret))
}

// # Login

func TestService_LoginFlow(t *testing.T) {
	harness := newServiceHarness(t)
	ctx := context.Background()
	harness.signup(t, "ananya@hunt360.app", "Abcdef1!")

	email, err := harness.service.LoginInit(ctx, LoginInput{
		Identifier: "ananya@hunt360.app",
		Password:   "Abcdef1!",
	})
	require.NoError(t, err)
	assert.Equal(t, "ananya@hunt360.app", email)
	harness.sender.wait(t)

	session, err := harness.service.LoginVerify(ctx, email, "123456")
	require.NoError(t, err)
	assert.Equal(t, "token-ananya@hunt360.app", session.Token)

	// A login OTP is single-use
	_, err = harness.service.LoginVerify(ctx, email, "123456")
	assert.True(t, apperr.HasCode(err, CodeInvalidSecret))
}

func TestService_LoginInit_ByUsernameAndFullName(t *testing.T) {
	harness := newServiceHarness(t)
	ctx := context.Background()
	harness.signup(t, "ananya@hunt360.app", "Abcdef1!")

	for _, identifier := range []string{"ananya", "Ananya Rao"} {
		email, err := harness.service.LoginInit(ctx, LoginInput{
			Identifier: identifier,
			Password:   "Abcdef1!",
		})
		require.NoError(t, err, identifier)
		assert.Equal(t, "ananya@hunt360.app", email)
		harness.sender.wait(t)
	}
}

func TestService_LoginInit_CaptchaFailed(t *testing.T) {
	harness := newServiceHarness(t)
	harness.service.verifier = denyVerifier{}

	_, err := harness.service.LoginInit(context.Background(), LoginInput{
		Identifier: "ananya@hunt360.app",
		Password:   "Abcdef1!",
	})
	assert.True(t, apperr.HasCode(err, CodeCaptchaFailed))
}

func TestService_LoginInit_UnknownIdentifier(t *testing.T) {
	harness := newServiceHarness(t)

	_, err := harness.service.LoginInit(context.Background(), LoginInput{
		Identifier: "nobody@hunt360.app",
		Password:   "Abcdef1!",
	})
	assert.True(t, apperr.HasCode(err, CodeInvalidCredentials))
	harness.sender.assertSilent(t)
}

func TestService_Lockout(t *testing.T) {
	harness := newServiceHarness(t)
	ctx := context.Background()
	harness.signup(t, "ananya@hunt360.app", "Abcdef1!")

	// Three failures leave the account open with a shrinking allowance
	for attempt := 1; attempt <= 3; attempt++ {
		_, err := harness.service.LoginInit(ctx, LoginInput{
			Identifier: "ananya@hunt360.app",
			Password:   "wrong-password",
		})
		require.True(t, apperr.HasCode(err, CodeInvalidCredentials), "attempt %d", attempt)
		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Contains(t, ae.Message, fmt.Sprintf("%d attempts remaining", DefaultMaxLoginAttempts-attempt))
	}

	// The fourth failure locks the account
	_, err := harness.service.LoginInit(ctx, LoginInput{
		Identifier: "ananya@hunt360.app",
		Password:   "wrong-password",
	})
	assert.True(t, apperr.HasCode(err, CodeAccountLocked))

	// A correct password is rejected while the lock is active
	_, err = harness.service.LoginInit(ctx, LoginInput{
		Identifier: "ananya@hunt360.app",
		Password:   "Abcdef1!",
	})
	assert.True(t, apperr.HasCode(err, CodeAccountLocked))
	harness.sender.assertSilent(t)
}

func TestService_Lockout_AutoUnlock(t *testing.T) {
	harness := newServiceHarness(t)
	ctx := context.Background()
	harness.signup(t, "ananya@hunt360.app", "Abcdef1!")

	for i := 0; i < DefaultMaxLoginAttempts; i++ {
		_, _ = harness.service.LoginInit(ctx, LoginInput{
			Identifier: "ananya@hunt360.app",
			Password:   "wrong-password",
		})
	}

	harness.advance(DefaultLockoutDuration + time.Second)

	email, err := harness.service.LoginInit(ctx, LoginInput{
		Identifier: "ananya@hunt360.app",
		Password:   "Abcdef1!",
	})
	require.NoError(t, err)
	assert.Equal(t, "ananya@hunt360.app", email)

	// The counter reset with the unlock
	user, err := harness.users.FindByEmail(ctx, "ananya@hunt360.app")
	require.NoError(t, err)
	assert.Equal(t, 0, user.FailedLogins)
	assert.Nil(t, user.LockedUntil)
}

// # Password Recovery

func TestService_ForgotPassword_UnknownEmailIsSilent(t *testing.T) {
	harness := newServiceHarness(t)

	err := harness.service.ForgotPasswordInit(context.Background(), "nobody@hunt360.app")
	assert.NoError(t, err)
	harness.sender.assertSilent(t)
}

func TestService_ResetPasswordFlow(t *testing.T) {
	harness := newServiceHarness(t)
	ctx := context.Background()
	harness.signup(t, "ananya@hunt360.app", "Abcdef1!")

	require.NoError(t, harness.service.ForgotPasswordInit(ctx, "ananya@hunt360.app"))
	mail := harness.sender.wait(t)
	assert.Contains(t, mail.Body, "123456")

	// A weak replacement is rejected before the code is consumed
	err := harness.service.ResetPassword(ctx, "ananya@hunt360.app", "123456", "weak")
	assert.True(t, apperr.HasCode(err, CodeWeakPassword))

	require.NoError(t, harness.service.ResetPassword(ctx, "ananya@hunt360.app", "123456", "Newpass1!"))

	// The reset code is single-use
	err = harness.service.ResetPassword(ctx, "ananya@hunt360.app", "123456", "Another1!")
	assert.True(t, apperr.HasCode(err, CodeInvalidSecret))

	// The new password is live, the old one is dead
	_, err = harness.service.LoginInit(ctx, LoginInput{
		Identifier: "ananya@hunt360.app",
		Password:   "Abcdef1!",
	})
	assert.True(t, apperr.HasCode(err, CodeInvalidCredentials))

	email, err := harness.service.LoginInit(ctx, LoginInput{
		Identifier: "ananya@hunt360.app",
		Password:   "Newpass1!",
	})
	require.NoError(t, err)
	assert.Equal(t, "ananya@hunt360.app", email)
}

func TestService_ResetPassword_DoesNotUnlock(t *testing.T) {
	harness := newServiceHarness(t)
	ctx := context.Background()
	harness.signup(t, "ananya@hunt360.app", "Abcdef1!")

	for i := 0; i < DefaultMaxLoginAttempts; i++ {
		_, _ = harness.service.LoginInit(ctx, LoginInput{
			Identifier: "ananya@hunt360.app",
			Password:   "wrong-password",
		})
	}

	require.NoError(t, harness.service.ForgotPasswordInit(ctx, "ananya@hunt360.app"))
	harness.sender.wait(t)
	require.NoError(t, harness.service.ResetPassword(ctx, "ananya@hunt360.app", "123456", "Newpass1!"))

	// The lock window still applies even with the new password
	_, err := harness.service.LoginInit(ctx, LoginInput{
		Identifier: "ananya@hunt360.app",
		Password:   "Newpass1!",
	})
	assert.True(t, apperr.HasCode(err, CodeAccountLocked))

	// Once the window passes, the new password works
	harness.advance(DefaultLockoutDuration + time.Second)
	email, err := harness.service.LoginInit(ctx, LoginInput{
		Identifier: "ananya@hunt360.app",
		Password:   "Newpass1!",
	})
	require.NoError(t, err)
	assert.Equal(t, "ananya@hunt360.app", email)
}

// # OTP Generation

func TestGenerateOTP_Shape(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := sec.GenerateOTP()
		require.NoError(t, err)
		require.Len(t, code, sec.OTPDigits)
		assert.GreaterOrEqual(t, code, "100000")
		assert.LessOrEqual(t, code, "999999")
	}
}

// Copyright (c) 2026 Hunt360. All rights reserved.
// Author: dev@hunt360.app

/*
Package authflow implements the client side of the multi-step authentication
protocol as an explicit finite-state machine.

The flow advances through a small set of states (collecting credentials,
awaiting an OTP, authenticated, locked) and dispatches each Submit on the
current (mode, state) pair. Anything outside the transition table is an
ErrIllegalTransition, which keeps UI callers honest: they can only render
what the machine allows.

# Architecture

  - Flow: The state machine. Safe for concurrent use; a busy flag rejects
    overlapping submits instead of queueing them.
  - Client: JSON transport to the authentication API.
  - RememberStore: Persistence for the last-used identifier and session token.
*/
package authflow

import (
	"context"
	"errors"
	"sync"

	"github.com/hunt360/hunt360/internal/auth"
	"github.com/hunt360/hunt360/internal/platform/sec"
)

// # States & Modes

// State is the current position in the authentication flow.
type State string

const (
	// StateCollecting gathers credentials or the recovery email.
	StateCollecting State = "collecting"
	// StateAwaitingOTP waits for the one-time code sent by the server.
	StateAwaitingOTP State = "awaiting_otp"
	// StateAuthenticated is terminal for login and signup.
	StateAuthenticated State = "authenticated"
	// StateLocked is entered when the server reports an account lockout.
	StateLocked State = "locked"
)

// Mode selects which flow the machine is driving.
type Mode string

const (
	ModeLogin  Mode = "login"
	ModeSignup Mode = "signup"
	ModeForgot Mode = "forgot"
)

var (
	// ErrIllegalTransition is returned when Submit is called in a (mode, state)
	// pair that has no outgoing transition.
	ErrIllegalTransition = errors.New("authflow: no transition from current state")

	// ErrBusy is returned when a Submit is already in flight.
	ErrBusy = errors.New("authflow: submit already in progress")
)

// # Flow Machine

// Input holds the form fields the flow collects before each transition.
type Input struct {
	Identifier   string // Login: email, username, or full name.
	Password     string
	CaptchaToken string
	OTP          string
	NewPassword  string // Forgot mode only.

	// Signup fields.
	FullName    string
	Email       string
	Department  string
	CountryCode string
	PhoneNumber string

	Remember bool
}

// Flow is the client authentication state machine.
type Flow struct {
	mu sync.Mutex

	client   *Client
	remember RememberStore

	mode  Mode
	state State
	busy  bool

	input    Input
	strength sec.Strength

	// otpEmail is where the server sent the pending code.
	otpEmail string
	session  *Session
}

// NewFlow creates a Flow in login/collecting, preloading the remembered
// identifier if the store has one.
func NewFlow(client *Client, remember RememberStore) *Flow {
	flow := &Flow{
		client:   client,
		remember: remember,
		mode:     ModeLogin,
		state:    StateCollecting,
	}

	if state, err := remember.Load(); err == nil {
		flow.input.Identifier = state.Identifier
		flow.input.Remember = state.Identifier != ""
	}
	return flow
}

// Mode returns the active flow mode.
func (flow *Flow) Mode() Mode {
	flow.mu.Lock()
	defer flow.mu.Unlock()
	return flow.mode
}

// State returns the current machine state.
func (flow *Flow) State() State {
	flow.mu.Lock()
	defer flow.mu.Unlock()
	return flow.state
}

// Input returns a snapshot of the collected form fields.
func (flow *Flow) Input() Input {
	flow.mu.Lock()
	defer flow.mu.Unlock()
	return flow.input
}

// Strength returns the live strength predicates of the relevant password
// field (the signup password, or the replacement password in forgot mode).
func (flow *Flow) Strength() sec.Strength {
	flow.mu.Lock()
	defer flow.mu.Unlock()
	return flow.strength
}

// OTPEmail returns the address the pending code was sent to.
func (flow *Flow) OTPEmail() string {
	flow.mu.Lock()
	defer flow.mu.Unlock()
	return flow.otpEmail
}

// Session returns the established session, or nil before authentication.
func (flow *Flow) Session() *Session {
	flow.mu.Lock()
	defer flow.mu.Unlock()
	return flow.session
}

// Update merges the given form fields into the flow and recomputes the
// strength predicates when a password field changed.
func (flow *Flow) Update(apply func(*Input)) {
	flow.mu.Lock()
	defer flow.mu.Unlock()

	apply(&flow.input)

	switch flow.mode {
	case ModeForgot:
		flow.strength = sec.EvaluateStrength(flow.input.NewPassword)
	default:
		flow.strength = sec.EvaluateStrength(flow.input.Password)
	}
}

// SwitchMode changes the active mode and rewinds to collecting.
//
// Sensitive fields (passwords, OTP) are cleared; the identifier survives so
// the user does not retype it when hopping between login and recovery.
func (flow *Flow) SwitchMode(mode Mode) {
	flow.mu.Lock()
	defer flow.mu.Unlock()

	flow.mode = mode
	flow.state = StateCollecting
	flow.input.Password = ""
	flow.input.NewPassword = ""
	flow.input.OTP = ""
	flow.input.CaptchaToken = ""
	flow.strength = sec.Strength{}
	flow.otpEmail = ""
	flow.session = nil
}

// Logout drops the session and rewinds to login/collecting. The remembered
// identifier is kept; the persisted token is not.
func (flow *Flow) Logout() error {
	flow.mu.Lock()
	identifier := flow.input.Identifier
	rememberOn := flow.input.Remember
	flow.session = nil
	flow.mode = ModeLogin
	flow.state = StateCollecting
	flow.input.Password = ""
	flow.input.OTP = ""
	flow.mu.Unlock()

	if rememberOn {
		return flow.remember.Save(Remembered{Identifier: identifier})
	}
	return flow.remember.Clear()
}

/*
Submit drives one transition of the machine.

Description: Dispatches on the current (mode, state) pair. Server rejections
leave the machine in place so the user can correct the form, with two
exceptions: an ACCOUNT_LOCKED rejection moves to StateLocked, and a
successful forgot-mode reset rewinds to login/collecting.

Parameters:
  - context: context.Context

Returns:
  - error: ErrBusy, ErrIllegalTransition, or the server's APIError
*/
func (flow *Flow) Submit(context context.Context) error {
	flow.mu.Lock()
	if flow.busy {
		flow.mu.Unlock()
		return ErrBusy
	}
	flow.busy = true
	mode, state, input, otpEmail := flow.mode, flow.state, flow.input, flow.otpEmail
	flow.mu.Unlock()

	defer func() {
		flow.mu.Lock()
		flow.busy = false
		flow.mu.Unlock()
	}()

	switch {
	case state == StateCollecting && mode == ModeLogin:
		return flow.submitLogin(context, input)
	case state == StateCollecting && mode == ModeSignup:
		return flow.submitSignup(context, input)
	case state == StateCollecting && mode == ModeForgot:
		return flow.submitForgot(context, input)
	case state == StateAwaitingOTP && mode == ModeLogin:
		return flow.verifyLogin(context, input, otpEmail)
	case state == StateAwaitingOTP && mode == ModeSignup:
		return flow.verifySignup(context, input, otpEmail)
	case state == StateAwaitingOTP && mode == ModeForgot:
		return flow.verifyReset(context, input, otpEmail)
	default:
		return ErrIllegalTransition
	}
}

// # Transitions

func (flow *Flow) submitLogin(context context.Context, input Input) error {
	email, err := flow.client.LoginInit(context, input.Identifier, input.Password, input.CaptchaToken)
	if err != nil {
		if HasCode(err, auth.CodeAccountLocked) {
			flow.setState(StateLocked)
		}
		return err
	}
	flow.toAwaitingOTP(email)
	return nil
}

func (flow *Flow) submitSignup(context context.Context, input Input) error {
	err := flow.client.SignupInit(context, SignupPayload{
		FullName:    input.FullName,
		Email:       input.Email,
		Password:    input.Password,
		Department:  input.Department,
		CountryCode: input.CountryCode,
		PhoneNumber: input.PhoneNumber,
	})
	if err != nil {
		return err
	}
	flow.toAwaitingOTP(input.Email)
	return nil
}

func (flow *Flow) submitForgot(context context.Context, input Input) error {
	if err := flow.client.ForgotPassword(context, input.Identifier); err != nil {
		return err
	}
	flow.toAwaitingOTP(input.Identifier)
	return nil
}

func (flow *Flow) verifyLogin(context context.Context, input Input, otpEmail string) error {
	session, err := flow.client.LoginVerify(context, otpEmail, input.OTP)
	if err != nil {
		return err
	}
	return flow.toAuthenticated(session, input)
}

func (flow *Flow) verifySignup(context context.Context, input Input, otpEmail string) error {
	session, err := flow.client.SignupVerify(context, otpEmail, input.OTP)
	if err != nil {
		return err
	}
	return flow.toAuthenticated(session, input)
}

func (flow *Flow) verifyReset(context context.Context, input Input, otpEmail string) error {
	if err := flow.client.ResetPassword(context, otpEmail, input.OTP, input.NewPassword); err != nil {
		return err
	}

	// Reset complete: hand the user back to login with their email filled in.
	flow.mu.Lock()
	flow.mode = ModeLogin
	flow.state = StateCollecting
	flow.input.Identifier = otpEmail
	flow.input.Password = ""
	flow.input.NewPassword = ""
	flow.input.OTP = ""
	flow.strength = sec.Strength{}
	flow.otpEmail = ""
	flow.mu.Unlock()
	return nil
}

// # State Helpers

func (flow *Flow) setState(state State) {
	flow.mu.Lock()
	flow.state = state
	flow.mu.Unlock()
}

func (flow *Flow) toAwaitingOTP(email string) {
	flow.mu.Lock()
	flow.state = StateAwaitingOTP
	flow.otpEmail = email
	flow.input.OTP = ""
	flow.mu.Unlock()
}

func (flow *Flow) toAuthenticated(session *Session, input Input) error {
	flow.mu.Lock()
	flow.state = StateAuthenticated
	flow.session = session
	flow.input.Password = ""
	flow.input.OTP = ""
	flow.mu.Unlock()

	if input.Remember {
		identifier := input.Identifier
		if identifier == "" {
			identifier = session.User.Email
		}
		return flow.remember.Save(Remembered{
			Identifier: identifier,
			Token:      session.Token,
		})
	}
	return nil
}

// Copyright (c) 2026 Hunt360. All rights reserved.
// Author: dev@hunt360.app

// Command authcli is an interactive terminal client for the Hunt360
// authentication API.
//
// It drives the same flow state machine the SPA uses: pick a mode (login,
// signup, forgot), fill the form, receive the one-time code by email, and
// confirm it. Passwords are read without echo.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"

	"github.com/hunt360/hunt360/internal/authflow"
	"github.com/hunt360/hunt360/internal/platform/sec"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "Base URL of the Hunt360 API")
	stateFile := flag.String("state", defaultStatePath(), "Path of the remember-me state file")
	flag.Parse()

	flow := authflow.NewFlow(
		authflow.NewClient(*serverURL),
		authflow.NewFileRememberStore(*stateFile),
	)

	if err := run(flow, bufio.NewReader(os.Stdin), os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "hunt360", "remember.json")
}

// run loops the flow machine until a session is established or input ends.
func run(flow *authflow.Flow, reader *bufio.Reader, out io.Writer) error {
	ctx := context.Background()

	for {
		switch flow.State() {
		case authflow.StateCollecting:
			if err := collect(flow, reader, out); err != nil {
				return err
			}
		case authflow.StateAwaitingOTP:
			otp, err := prompt(reader, out, fmt.Sprintf("Enter the code sent to %s", flow.OTPEmail()))
			if err != nil {
				return err
			}
			flow.Update(func(input *authflow.Input) { input.OTP = otp })
		case authflow.StateAuthenticated:
			session := flow.Session()
			fmt.Fprintf(out, "\nAuthenticated as %s <%s>\n", session.User.Name, session.User.Email)
			fmt.Fprintf(out, "Session token: %s\n", session.Token)
			return nil
		case authflow.StateLocked:
			fmt.Fprintln(out, "\nAccount locked after repeated failed attempts. Try again later or reset the password.")
			flow.SwitchMode(authflow.ModeForgot)
			continue
		}

		if err := flow.Submit(ctx); err != nil {
			if errors.Is(err, authflow.ErrIllegalTransition) {
				return err
			}
			fmt.Fprintln(out, "rejected:", err)
		}
	}
}

// collect fills the form for the current mode.
func collect(flow *authflow.Flow, reader *bufio.Reader, out io.Writer) error {
	mode, err := prompt(reader, out, "Mode: [l]ogin, [s]ignup, [f]orgot password")
	if err != nil {
		return err
	}
	switch strings.ToLower(mode) {
	case "s", "signup":
		flow.SwitchMode(authflow.ModeSignup)
		return collectSignup(flow, reader, out)
	case "f", "forgot":
		flow.SwitchMode(authflow.ModeForgot)
		return collectForgot(flow, reader, out)
	default:
		flow.SwitchMode(authflow.ModeLogin)
		return collectLogin(flow, reader, out)
	}
}

func collectLogin(flow *authflow.Flow, reader *bufio.Reader, out io.Writer) error {
	identifier := flow.Input().Identifier
	prompted, err := prompt(reader, out, labelWithDefault("Email, username, or full name", identifier))
	if err != nil {
		return err
	}
	if prompted != "" {
		identifier = prompted
	}

	password, err := promptPassword(out, "Password: ")
	if err != nil {
		return err
	}

	flow.Update(func(input *authflow.Input) {
		input.Identifier = identifier
		input.Password = password
		input.Remember = true
	})
	return nil
}

func collectSignup(flow *authflow.Flow, reader *bufio.Reader, out io.Writer) error {
	fullName, err := prompt(reader, out, "Full name")
	if err != nil {
		return err
	}
	email, err := prompt(reader, out, "Email")
	if err != nil {
		return err
	}
	department, err := prompt(reader, out, "Department (optional)")
	if err != nil {
		return err
	}

	for {
		password, err := promptPassword(out, "Password: ")
		if err != nil {
			return err
		}
		flow.Update(func(input *authflow.Input) {
			input.FullName = fullName
			input.Email = email
			input.Department = department
			input.Password = password
			input.Remember = true
		})

		strength := flow.Strength()
		if strength.OK() {
			return nil
		}
		printStrength(out, strength)
	}
}

func collectForgot(flow *authflow.Flow, reader *bufio.Reader, out io.Writer) error {
	identifier := flow.Input().Identifier
	prompted, err := prompt(reader, out, labelWithDefault("Account email", identifier))
	if err != nil {
		return err
	}
	if prompted != "" {
		identifier = prompted
	}

	for {
		newPassword, err := promptPassword(out, "New password: ")
		if err != nil {
			return err
		}
		flow.Update(func(input *authflow.Input) {
			input.Identifier = identifier
			input.NewPassword = newPassword
		})

		strength := flow.Strength()
		if strength.OK() {
			return nil
		}
		printStrength(out, strength)
	}
}

// # Terminal Helpers

func prompt(reader *bufio.Reader, out io.Writer, label string) (string, error) {
	if _, err := fmt.Fprint(out, label+"\n> "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads a password from the terminal without echo.
func promptPassword(out io.Writer, label string) (string, error) {
	if _, err := fmt.Fprint(out, label); err != nil {
		return "", err
	}
	raw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func labelWithDefault(label, current string) string {
	if current == "" {
		return label
	}
	return fmt.Sprintf("%s [%s]", label, current)
}

func printStrength(out io.Writer, strength sec.Strength) {
	checks := []struct {
		ok   bool
		text string
	}{
		{strength.Length, "at least 8 characters"},
		{strength.Upper, "an uppercase letter"},
		{strength.Lower, "a lowercase letter"},
		{strength.Digit, "a digit"},
		{strength.Special, "a special character"},
	}
	fmt.Fprintln(out, "Password is not strong enough. It still needs:")
	for _, check := range checks {
		if !check.ok {
			fmt.Fprintln(out, "  -", check.text)
		}
	}
}

// Copyright (c) 2026 Hunt360. All rights reserved.
// Author: dev@hunt360.app

package sec

import "strings"

// # Password Strength Policy

// SpecialChars is the set of symbols accepted by the strength policy.
const SpecialChars = `!@#$%^&*(),.?":{}|<>`

// Strength holds the five independent predicates of the password policy.
//
// The client flow renders these as a live checklist; the server enforces
// the conjunction before hashing.
type Strength struct {
	Length  bool `json:"length"`  // at least 8 characters
	Upper   bool `json:"upper"`   // at least one uppercase letter
	Lower   bool `json:"lower"`   // at least one lowercase letter
	Digit   bool `json:"digit"`   // at least one digit
	Special bool `json:"special"` // at least one symbol from SpecialChars
}

// OK reports whether all five predicates hold.
func (s Strength) OK() bool {
	return s.Length && s.Upper && s.Lower && s.Digit && s.Special
}

// EvaluateStrength computes the five strength predicates for a password.
// It is a pure function with no side effects.
func EvaluateStrength(password string) Strength {
	s := Strength{Length: len(password) >= 8}
	for _, c := range password {
		switch {
		case c >= 'A' && c <= 'Z':
			s.Upper = true
		case c >= 'a' && c <= 'z':
			s.Lower = true
		case c >= '0' && c <= '9':
			s.Digit = true
		case strings.ContainsRune(SpecialChars, c):
			s.Special = true
		}
	}
	return s
}

// IsStrongPassword reports whether a password satisfies the full policy.
func IsStrongPassword(password string) bool {
	return EvaluateStrength(password).OK()
}

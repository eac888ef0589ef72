// Copyright (c) 2026 Hunt360. All rights reserved.
// Author: dev@hunt360.app

package sec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hunt360/hunt360/internal/platform/sec"
)

/*
TestEvaluateStrength checks each predicate independently.
*/
func TestEvaluateStrength(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     sec.Strength
	}{
		{
			"all_satisfied",
			"Abcdef1!",
			sec.Strength{Length: true, Upper: true, Lower: true, Digit: true, Special: true},
		},
		{
			"empty",
			"",
			sec.Strength{},
		},
		{
			"missing_special",
			"Abcdefg1",
			sec.Strength{Length: true, Upper: true, Lower: true, Digit: true},
		},
		{
			"missing_upper",
			"abcdef1!",
			sec.Strength{Length: true, Lower: true, Digit: true, Special: true},
		},
		{
			"missing_lower",
			"ABCDEF1!",
			sec.Strength{Length: true, Upper: true, Digit: true, Special: true},
		},
		{
			"missing_digit",
			"Abcdefg!",
			sec.Strength{Length: true, Upper: true, Lower: true, Special: true},
		},
		{
			"too_short",
			"Ab1!xyz",
			sec.Strength{Upper: true, Lower: true, Digit: true, Special: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sec.EvaluateStrength(tt.password)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want == sec.Strength{Length: true, Upper: true, Lower: true, Digit: true, Special: true}, got.OK())
		})
	}
}

/*
TestIsStrongPassword exercises the composite policy, including every
character of the accepted special set.
*/
func TestIsStrongPassword(t *testing.T) {
	assert.True(t, sec.IsStrongPassword("Abcdef1!"))
	assert.False(t, sec.IsStrongPassword("password"))
	assert.False(t, sec.IsStrongPassword("Password1")) // no special

	for _, special := range sec.SpecialChars {
		password := "Abcdef1" + string(special)
		assert.True(t, sec.IsStrongPassword(password), "special char %q", special)
	}

	// Characters outside the set do not count as special
	assert.False(t, sec.IsStrongPassword("Abcdefg1_"))
	assert.False(t, sec.IsStrongPassword("Abcdefg1 "))
}

/*
TestPasswordHashing verifies the bcrypt round trip.
*/
func TestPasswordHashing(t *testing.T) {
	hash, err := sec.HashPassword("Abcdef1!")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "Abcdef1!", hash)

	assert.True(t, sec.CheckPasswordHash("Abcdef1!", hash))
	assert.False(t, sec.CheckPasswordHash("abcdef1!", hash))
	assert.False(t, sec.CheckPasswordHash("", hash))
}

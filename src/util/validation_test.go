package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("capture@firm.gov"))
	assert.False(t, ValidateEmail("capture@firm"))
	assert.False(t, ValidateEmail("not an email"))
}

func TestValidatePassword(t *testing.T) {
	assert.True(t, ValidatePassword("Proposal#2025"))
	assert.False(t, ValidatePassword("short1!"))
	assert.False(t, ValidatePassword("alllowercase1!"))
	assert.False(t, ValidatePassword("NoDigits!!"))
	assert.False(t, ValidatePassword("NoSpecial123"))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "pm@firm.gov", NormalizeEmail("  PM@Firm.gov "))
}

func TestValidateUsername(t *testing.T) {
	assert.False(t, ValidateUsername("ab"))
	assert.True(t, ValidateUsername("sarah"))
}

// Package validation holds input rules shared by the account endpoints.
package validation

import (
	"fmt"
	"regexp"
)

const (
	minUsernameLength = 2
	maxUsernameLength = 32
	minPasswordLength = 8
	maxPasswordLength = 128
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// ValidateUsername checks length and character set. Uniqueness is the
// caller's concern.
func ValidateUsername(username string) error {
	if len(username) < minUsernameLength || len(username) > maxUsernameLength {
		return fmt.Errorf("username must be between %d and %d characters", minUsernameLength, maxUsernameLength)
	}
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username may only contain letters, digits, '.', '_' and '-', and must start with a letter or digit")
	}
	return nil
}

// ValidatePassword enforces the password length bounds. Passwords are stored
// bcrypt-hashed, so there is no character restriction.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	if len(password) > maxPasswordLength {
		return fmt.Errorf("password must be at most %d characters", maxPasswordLength)
	}
	return nil
}

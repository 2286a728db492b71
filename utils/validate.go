package utils

import (
	"fmt"
	"regexp"
	"strings"
)

// Matches the shape local@domain.tld with non-empty local and domain
// parts, same pattern the web client used.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const (
	MinPasswordLength = 6
	MinNameLength     = 2
)

// ValidationError is a field-scoped input error caught before any
// network call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateEmail checks that the email looks like local@domain.tld.
func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return &ValidationError{Field: "email", Message: "Please enter a valid email"}
	}
	return nil
}

// ValidatePassword checks the minimum password length.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return &ValidationError{
			Field:   "password",
			Message: fmt.Sprintf("Password must be at least %d characters", MinPasswordLength),
		}
	}
	return nil
}

// ValidateName checks the minimum display-name length.
func ValidateName(name string) error {
	if len(strings.TrimSpace(name)) < MinNameLength {
		return &ValidationError{
			Field:   "name",
			Message: fmt.Sprintf("Name must be at least %d characters", MinNameLength),
		}
	}
	return nil
}

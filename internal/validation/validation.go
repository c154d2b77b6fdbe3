// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	CredentialMinLen = 5
	CredentialMaxLen = 30

	MinRating = 1
	MaxRating = 5

	NameMaxLen = 100
)

// ValidateUsername checks the 5-30 characters, no whitespace rule.
func ValidateUsername(username string) error {
	return validateCredential("username", username)
}

// ValidatePassword applies the same rule as usernames to the plaintext password.
func ValidatePassword(password string) error {
	return validateCredential("password", password)
}

func validateCredential(field, v string) error {
	n := utf8.RuneCountInString(v)
	if n < CredentialMinLen || n > CredentialMaxLen {
		return fmt.Errorf("%s must be between %d and %d characters", field, CredentialMinLen, CredentialMaxLen)
	}
	if strings.IndexFunc(v, unicode.IsSpace) >= 0 {
		return fmt.Errorf("%s must not contain whitespace", field)
	}
	return nil
}

// ValidateRating rejects anything outside 1..5. Ratings are never clamped.
func ValidateRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return fmt.Errorf("rating must be between %d and %d, got %d", MinRating, MaxRating, rating)
	}
	return nil
}

// NormalizeName trims the name and checks it is non-empty and not too long.
func NormalizeName(field, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%s is required", field)
	}
	if utf8.RuneCountInString(name) > NameMaxLen {
		return "", fmt.Errorf("%s must not exceed %d characters", field, NameMaxLen)
	}
	return name, nil
}

// NormalizeBody trims a review body and requires it to be non-empty.
func NormalizeBody(body string) (string, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return "", fmt.Errorf("review body is required")
	}
	return body, nil
}

package service

import (
	"errors"
)

// The messages are shown to users as is.
var (
	ErrNotFound           = errors.New("Not found")
	ErrInvalidCredentials = errors.New("Incorrect username or password")
	ErrInvalidUsername    = errors.New("Username must be between 5 and 30 characters with no spaces")
	ErrUsernameTaken      = errors.New("Username already exists")
	ErrInvalidPassword    = errors.New("Password must be between 5 and 30 characters with no spaces")
	ErrPasswordMismatch   = errors.New("Password and confirmed password must match")
	ErrInvalidRating      = errors.New("Rating must be a whole number between 1 and 5")
	ErrInvalidReview      = errors.New("Review text is required")
	ErrInvalidName        = errors.New("Name and location are required and at most 100 characters")
	ErrForbidden          = errors.New("You are not allowed to take this action")
	ErrInternal           = errors.New("Internal error, please try again")
)

var validationErrors = []error{
	ErrInvalidUsername,
	ErrUsernameTaken,
	ErrInvalidPassword,
	ErrPasswordMismatch,
	ErrInvalidRating,
	ErrInvalidReview,
	ErrInvalidName,
}

// IsValidation reports whether err is caused by bad user input.
func IsValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

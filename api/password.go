package api

import (
	"errors"
	"unicode"
)

const minPasswordLength = 8

// validatePassword enforces the account password rules: minimum length,
// at least one digit and at least one capital letter.
func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return errors.New("password must be at least 8 characters long")
	}

	var hasDigit, hasCapital bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsUpper(r):
			hasCapital = true
		}
	}

	if !hasDigit {
		return errors.New("password must contain at least 1 digit")
	}
	if !hasCapital {
		return errors.New("password must contain at least 1 capital letter")
	}
	return nil
}

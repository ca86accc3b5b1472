package service

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	minPasswordLen = 8
	minNameLen     = 2
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return fmt.Errorf("%w: email is not a valid address", ErrValidation)
	}
	return nil
}

// validatePassword requires at least one letter plus one digit or symbol.
func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLen)
	}
	var letter, other bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r), unicode.IsPunct(r), unicode.IsSymbol(r), unicode.IsSpace(r):
			other = true
		}
	}
	if !letter || !other {
		return fmt.Errorf("%w: password must contain a letter and a number or special character", ErrValidation)
	}
	return nil
}

func validateName(name string) error {
	if utf8.RuneCountInString(strings.TrimSpace(name)) < minNameLen {
		return fmt.Errorf("%w: name must be at least %d characters", ErrValidation, minNameLen)
	}
	return nil
}

// Package validate holds the input rules shared by signup, profile update
// and password change. Validation never mutates its input; normalization is
// the caller's job.
package validate

import (
	"errors"
	"regexp"
	"unicode"
)

// localpart@domain.tld: no whitespace or '@' in the local part, at least one
// dot in the domain.
var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var (
	ErrEmailFormat    = errors.New("invalid email address")
	ErrPasswordLength = errors.New("password must be at least 8 characters")
	ErrPasswordUpper  = errors.New("password must contain an uppercase letter")
	ErrPasswordDigit  = errors.New("password must contain a digit")
)

// Email reports whether s has the localpart@domain.tld shape.
func Email(s string) error {
	if !emailRe.MatchString(s) {
		return ErrEmailFormat
	}
	return nil
}

// Password checks strength rules in order: length, uppercase, digit.
// The first violated rule wins so the caller can surface one reason.
func Password(s string) error {
	if len(s) < 8 {
		return ErrPasswordLength
	}
	var hasUpper, hasDigit bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper {
		return ErrPasswordUpper
	}
	if !hasDigit {
		return ErrPasswordDigit
	}
	return nil
}

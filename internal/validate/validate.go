// Package validate holds the field validation rules shared by the signup and
// message endpoints. The error strings are part of the API contract, clients
// display them verbatim.
package validate

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
)

var emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

const passwordSpecials = "@$!%*?&"

// Username checks the username shape: 2-20 chars from [a-zA-Z0-9_], containing
// at least one lowercase, one uppercase, one digit and one underscore.
func Username(username string) error {
	if len(username) < 2 {
		return errors.New("username must be at least 2 characters long")
	}
	if len(username) > 20 {
		return errors.New("username must be at most 20 characters long")
	}
	var lower, upper, digit, underscore bool
	for _, r := range username {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case r == '_':
			underscore = true
		default:
			return errUsernameShape
		}
	}
	if !lower || !upper || !digit || !underscore {
		return errUsernameShape
	}
	return nil
}

var errUsernameShape = errors.New("username must contain one small and upper case letter with one digit and underscore(_) but not contain special character except _")

// Password checks the password shape: at least 8 chars from
// [A-Za-z0-9@$!%*?&], containing one lowercase, one uppercase, one digit and
// one special character.
func Password(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters long")
	}
	var lower, upper, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r) && r <= unicode.MaxASCII:
			lower = true
		case unicode.IsUpper(r) && r <= unicode.MaxASCII:
			upper = true
		case unicode.IsDigit(r) && r <= unicode.MaxASCII:
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		default:
			return errPasswordShape
		}
	}
	if !lower || !upper || !digit || !special {
		return errPasswordShape
	}
	return nil
}

var errPasswordShape = errors.New("Password must contain at least one uppercase letter, one lowercase letter, one number, and one special character.") //nolint:staticcheck // client-facing message

// Email checks the email address shape.
func Email(email string) error {
	if !emailRe.MatchString(email) {
		return errors.New("email is not valid")
	}
	return nil
}

// MessageContent checks the feedback message length bounds.
func MessageContent(content string) error {
	n := len([]rune(content))
	if n < 1 {
		return errors.New("message is required")
	}
	if n > 500 {
		return errors.New("message should be less than 500 characters")
	}
	return nil
}

// OTP checks that the submitted verification code is 6 digits.
func OTP(code string) error {
	if len(code) != 6 {
		return errors.New("Verification code must be 6 digit only") //nolint:staticcheck // client-facing message
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return errors.New("Verification code must be 6 digit only") //nolint:staticcheck // client-facing message
		}
	}
	return nil
}

package util

import (
	"fmt"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// MinPasswordLength is the minimum accepted password length. The policy also
// requires one uppercase letter, one lowercase letter, one digit, and one
// special character, matching the frontend change-password form.
const MinPasswordLength = 8

// MaxPasswordLength caps input size before hashing.
const MaxPasswordLength = 72

// ValidatePasswordPolicy checks a plaintext password against the account
// password policy and returns a descriptive error on the first violation.
func ValidatePasswordPolicy(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	if len(password) > MaxPasswordLength {
		return fmt.Errorf("password must be at most %d characters", MaxPasswordLength)
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}
	switch {
	case !hasUpper:
		return fmt.Errorf("password must contain an uppercase letter")
	case !hasLower:
		return fmt.Errorf("password must contain a lowercase letter")
	case !hasDigit:
		return fmt.Errorf("password must contain a digit")
	case !hasSpecial:
		return fmt.Errorf("password must contain a special character")
	}
	return nil
}

// StrongPasswordValidator adapts the policy for go-playground/validator so
// request structs can declare binding:"strongpassword".
func StrongPasswordValidator(fl validator.FieldLevel) bool {
	return ValidatePasswordPolicy(fl.Field().String()) == nil
}

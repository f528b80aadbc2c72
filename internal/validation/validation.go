// Package validation holds the single canonical ruleset for user input.
// Bounds live here as constants so the numbers exist in exactly one place.
package validation

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

const (
	UsernameMinLen = 2
	UsernameMaxLen = 20
	PasswordMinLen = 6
	PasswordMaxLen = 16
	CodeLen        = 6
	MaxContentLen  = 1000
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// New returns a validator with the custom 'username' and 'password' rules
// registered. Handlers share one instance per handler struct.
func New() *validator.Validate {
	v := validator.New()

	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if len(s) < UsernameMinLen || len(s) > UsernameMaxLen {
			return false
		}
		return usernamePattern.MatchString(s)
	})

	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return len(s) >= PasswordMinLen && len(s) <= PasswordMaxLen
	})

	return v
}

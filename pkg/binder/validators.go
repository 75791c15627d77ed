package binder

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	usernameRE = regexp.MustCompile(`^[\w.@+-]+$`)
)

// usernameValidator allows letters, digits, and the characters @ . + - _.
// The empty string is left to the required tag.
func usernameValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return usernameRE.MatchString(value)
}

package auth

import (
	"github.com/campusshelf/campusshelf/pkg/errcodes"
)

const (
	MinPasswordLength = 6
	MaxPasswordLength = 15
)

type passwordRule struct {
	requirement string
	message     string
	check       func(string) bool
}

// Rules are evaluated in order and the first failure wins.
var passwordRules = []passwordRule{
	{
		requirement: "Between 6 and 15 characters long",
		message:     "Password must be at least 6 characters long.",
		check:       func(pw string) bool { return len([]rune(pw)) >= MinPasswordLength },
	},
	{
		message: "Password must be no more than 15 characters long.",
		check:   func(pw string) bool { return len([]rune(pw)) <= MaxPasswordLength },
	},
	{
		requirement: "Contains at least one uppercase letter (A-Z)",
		message:     "Password must contain at least one uppercase letter.",
		check:       containsRange('A', 'Z'),
	},
	{
		requirement: "Contains at least one lowercase letter (a-z)",
		message:     "Password must contain at least one lowercase letter.",
		check:       containsRange('a', 'z'),
	},
	{
		requirement: "Contains at least one digit (0-9)",
		message:     "Password must contain at least one digit.",
		check:       containsRange('0', '9'),
	},
	{
		requirement: "Contains at least one special character (!@#$%^&*, etc.)",
		message:     "Password must contain at least one special character.",
		check:       hasSpecial,
	},
}

// ValidatePassword checks pw against the password policy and returns a 400
// carrying the message of the first rule it breaks.
func ValidatePassword(pw string) error {
	if pw == "" {
		return errcodes.BadRequest("Password is required.")
	}
	for _, rule := range passwordRules {
		if !rule.check(pw) {
			return errcodes.BadRequest(rule.message)
		}
	}
	return nil
}

// PasswordRequirements lists the policy in a form suitable for a signup page.
func PasswordRequirements() []string {
	reqs := make([]string, 0, len(passwordRules))
	for _, rule := range passwordRules {
		if rule.requirement != "" {
			reqs = append(reqs, rule.requirement)
		}
	}
	return reqs
}

func containsRange(lo, hi rune) func(string) bool {
	return func(pw string) bool {
		for _, r := range pw {
			if r >= lo && r <= hi {
				return true
			}
		}
		return false
	}
}

// Anything outside ASCII letters and digits counts as special.
func hasSpecial(pw string) bool {
	for _, r := range pw {
		if !(r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9') {
			return true
		}
	}
	return false
}

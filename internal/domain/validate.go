package domain

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsValidEmail applies the loose address check used by every form
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(strings.TrimSpace(email))
}

// MinPasswordLength is enforced on registration and password changes
const MinPasswordLength = 8

var (
	upperPattern  = regexp.MustCompile(`[A-Z]`)
	digitPattern  = regexp.MustCompile(`[0-9]`)
	symbolPattern = regexp.MustCompile(`[^A-Za-z0-9]`)
)

// PasswordStrength scores a password from 0 to 4, one point each for
// length, an uppercase letter, a digit and a symbol.
func PasswordStrength(password string) (int, string) {
	if password == "" {
		return 0, ""
	}

	score := 0
	if len(password) >= MinPasswordLength {
		score++
	}
	for _, p := range []*regexp.Regexp{upperPattern, digitPattern, symbolPattern} {
		if p.MatchString(password) {
			score++
		}
	}

	switch {
	case score <= 1:
		return score, "Weak password"
	case score == 2:
		return score, "Fair password"
	case score == 3:
		return score, "Good password"
	default:
		return score, "Strong password"
	}
}

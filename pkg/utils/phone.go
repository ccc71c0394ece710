package utils

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// E.164 allows at most 15 digits; shorter than 7 is never dialable
	phoneRegex = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
	// Separators people type between digit groups
	separatorRegex = regexp.MustCompile(`[\s\-\.\(\)/]`)
)

// ErrInvalidPhone is returned for numbers that cannot be normalized
var ErrInvalidPhone = errors.New("invalid phone number format")

// NormalizePhoneNumber strips separators from a phone number. A leading
// "+" or "00" international prefix is kept as "+".
func NormalizePhoneNumber(phone string) (string, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return "", errors.New("phone number cannot be empty")
	}

	normalized := separatorRegex.ReplaceAllString(phone, "")
	if strings.HasPrefix(normalized, "00") {
		normalized = "+" + normalized[2:]
	}

	if !phoneRegex.MatchString(normalized) {
		return "", ErrInvalidPhone
	}
	return normalized, nil
}

// IsValidPhoneNumber reports whether phone normalizes cleanly
func IsValidPhoneNumber(phone string) bool {
	_, err := NormalizePhoneNumber(phone)
	return err == nil
}

// utils/valid.go
package utils

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
)

var phoneRegex = regexp.MustCompile(`^[6-9]\d{9}$`)

// NormalizePhone reduces a phone number to its canonical form: digits
// only, leading 91 country code stripped. All stores key on this form.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	normalized := b.String()
	if strings.HasPrefix(normalized, "91") && len(normalized) == 12 {
		normalized = normalized[2:]
	}
	return normalized
}

// ValidatePhone reports whether a canonical phone number is a valid
// Indian mobile number: exactly 10 digits, first digit 6-9.
func ValidatePhone(phone string) bool {
	return phoneRegex.MatchString(phone)
}

// SanitizePhone normalizes and validates in one step
func SanitizePhone(phone string) (string, error) {
	normalized := NormalizePhone(phone)
	if !ValidatePhone(normalized) {
		return "", errors.New("invalid phone number format")
	}
	return normalized, nil
}

// SanitizeInput trims and strips control characters from user input
func SanitizeInput(input string) string {
	input = strings.TrimSpace(input)
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, input)
}

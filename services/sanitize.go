package services

import (
	"regexp"
	"strings"
)

// MaxFieldLength is the number of characters kept from any free-text field
const MaxFieldLength = 1000

// emailPattern is a loose local@domain.tld shape check, not RFC 5322
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var angleBrackets = strings.NewReplacer("<", "", ">", "")

// SanitizeInput strips angle brackets, trims surrounding whitespace and caps
// the value at MaxFieldLength characters.
func SanitizeInput(input string) string {
	return truncateRunes(strings.TrimSpace(angleBrackets.Replace(input)), MaxFieldLength)
}

// SanitizeList sanitizes each element, keeping order
func SanitizeList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, SanitizeInput(item))
	}
	return out
}

// IsValidEmailFormat reports whether the value has a minimal email shape
func IsValidEmailFormat(email string) bool {
	return emailPattern.MatchString(email)
}

func truncateRunes(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen])
}

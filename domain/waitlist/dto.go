package waitlist

import (
	"regexp"
	"strings"
)

type EnrollRequest struct {
	Email string `json:"email" binding:"required,max=255"`
}

type EnrollResponse struct {
	Created bool `json:"created"`
}

type CountResponse struct {
	Count int64 `json:"count"`
}

// Matches the basic local@domain.tld shape: no whitespace, exactly one
// @, at least one dot in the domain. Deliberately loose beyond that;
// the welcome email is the real verification.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// NormalizeEmail trims and lowercases a raw address. The result is the
// identity used for every comparison and for storage.
func NormalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// IsValidEmail reports whether a normalized address is acceptable.
func IsValidEmail(normalized string) bool {
	return normalized != "" && emailPattern.MatchString(normalized)
}

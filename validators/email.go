package validators

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var demoLocalParts = []string{"test", "demo", "user", "admin", "guest", "example"}

var blockedDomains = map[string]struct{}{
	"example.com":    {},
	"test.com":       {},
	"mailinator.com": {},
	"tempmail.org":   {},
}

const (
	MsgInvalidEmailFormat = "Invalid email format"
	MsgNotRealEmail       = "Please use a professional email address. Demo or generic emails are not allowed."
)

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func IsValidEmailFormat(email string) bool {
	return emailPattern.MatchString(email)
}

// IsRealEmail rejects throwaway and placeholder addresses: local parts
// shorter than 3 characters or containing a demo word, and known
// disposable or reserved domains.
func IsRealEmail(email string) bool {
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	local := strings.ToLower(email[:at])
	domain := strings.ToLower(email[at+1:])

	if len([]rune(local)) < 3 {
		return false
	}
	for _, word := range demoLocalParts {
		if strings.Contains(local, word) {
			return false
		}
	}
	if _, blocked := blockedDomains[domain]; blocked {
		return false
	}
	return true
}

// CheckNewEmail returns the user-facing reason a requested email is not
// acceptable, or "" when it is.
func CheckNewEmail(email string) string {
	if !IsValidEmailFormat(email) {
		return MsgInvalidEmailFormat
	}
	if !IsRealEmail(email) {
		return MsgNotRealEmail
	}
	return ""
}

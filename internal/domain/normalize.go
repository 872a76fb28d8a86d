package domain

import (
	"regexp"
	"strings"
)

// NormalizeHumanName trims leading/trailing whitespace and collapses internal whitespace runs.
// It is used for entity name normalization.
func NormalizeHumanName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

var nationalIDPattern = regexp.MustCompile(`^(?:[0-9]{12}|[0-9]{9}[VvXx])$`)

// ValidNationalID reports whether s is a 12-digit identity card number or the older
// 9-digit form followed by a V/X check letter.
func ValidNationalID(s string) bool {
	return nationalIDPattern.MatchString(s)
}

// PhoneDigits strips every non-digit character from s.
func PhoneDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// InternationalPhone converts a local number (digits only) to international format by
// dropping one trunk-prefix zero and prepending callingCode, e.g. "0712345678" -> "+94712345678".
func InternationalPhone(local, callingCode string) string {
	return callingCode + strings.TrimPrefix(local, "0")
}

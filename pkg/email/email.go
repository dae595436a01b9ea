// Package email derives presentable name parts from an email address.
// Registration uses it to fill in first/last names when the caller supplies
// none, so the name policy checks always run against something.
package email

import (
	"strings"
	"unicode"
)

// DeriveNameFromEmail splits the local part of an email address into a
// (first, last) pair. Falls back to "User" when the local part yields
// nothing usable.
func DeriveNameFromEmail(email string) (string, string) {
	localPart := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		localPart = email[:at]
	}

	parts := strings.FieldsFunc(localPart, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})

	if len(parts) == 0 {
		return "User", "User"
	}

	first := capitalize(parts[0])
	last := "User"
	if len(parts) > 1 {
		last = capitalize(parts[len(parts)-1])
	}

	return first, last
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

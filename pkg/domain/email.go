package domain

import (
	"net/mail"
	"strings"

	dErrors "storefront/pkg/domain-errors"
)

// maxEmailLength follows RFC 5321's 254-octet ceiling for a path.
const maxEmailLength = 254

// EmailAddress is a validated, lower-cased email address.
type EmailAddress string

// ParseEmailAddress validates and normalizes an email address. The input is
// trimmed and lower-cased; addresses with display names are rejected.
func ParseEmailAddress(s string) (EmailAddress, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeValidation, "email cannot be empty")
	}
	if len(s) > maxEmailLength {
		return "", dErrors.Newf(dErrors.CodeValidation, "email cannot exceed %d characters", maxEmailLength)
	}

	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Name != "" || addr.Address != s {
		return "", dErrors.New(dErrors.CodeValidation, "invalid email address")
	}

	return EmailAddress(strings.ToLower(s)), nil
}

func (e EmailAddress) IsNil() bool {
	return e == ""
}

func (e EmailAddress) String() string {
	return string(e)
}

// LocalPart returns the portion before the '@'.
func (e EmailAddress) LocalPart() string {
	if at := strings.IndexByte(string(e), '@'); at > 0 {
		return string(e)[:at]
	}
	return string(e)
}

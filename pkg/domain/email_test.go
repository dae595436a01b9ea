package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
)

type EmailSuite struct {
	suite.Suite
}

func TestEmailSuite(t *testing.T) {
	suite.Run(t, new(EmailSuite))
}

func (s *EmailSuite) TestParse() {
	s.Run("normalizes to lower case", func() {
		e, err := ParseEmailAddress("Taro.Yamada@Example.COM")
		s.NoError(err)
		s.Equal("taro.yamada@example.com", e.String())
	})

	s.Run("trims surrounding whitespace", func() {
		e, err := ParseEmailAddress("  user@example.com ")
		s.NoError(err)
		s.Equal("user@example.com", e.String())
	})

	s.Run("rejects empty input", func() {
		_, err := ParseEmailAddress("")
		s.Error(err)
	})

	s.Run("rejects malformed addresses", func() {
		for _, raw := range []string{"plainaddress", "@no-local.example", "user@", "user @example.com", "Name <user@example.com>"} {
			_, err := ParseEmailAddress(raw)
			s.Error(err, "input %q", raw)
		}
	})

	s.Run("rejects addresses over the length ceiling", func() {
		long := strings.Repeat("a", 250) + "@example.com"
		_, err := ParseEmailAddress(long)
		s.Error(err)
	})
}

func (s *EmailSuite) TestLocalPart() {
	e, err := ParseEmailAddress("hanako.sato@example.com")
	s.Require().NoError(err)
	s.Equal("hanako.sato", e.LocalPart())
}

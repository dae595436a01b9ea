package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ErrorsSuite struct {
	suite.Suite
}

func TestErrorsSuite(t *testing.T) {
	suite.Run(t, new(ErrorsSuite))
}

func (s *ErrorsSuite) TestNew() {
	err := New(CodeValidation, "name cannot be empty")
	s.EqualError(err, "validation: name cannot be empty")
	s.True(HasCode(err, CodeValidation))
	s.False(HasCode(err, CodeNotFound))
	s.Equal(CodeValidation, CodeOf(err))
}

func (s *ErrorsSuite) TestWrap() {
	s.Run("preserves the cause", func() {
		cause := stderrors.New("row not found")
		err := Wrap(cause, CodeNotFound, "product not found")
		s.True(HasCode(err, CodeNotFound))
		s.ErrorIs(err, cause)
		s.Contains(err.Error(), "row not found")
	})

	s.Run("nil cause yields nil", func() {
		s.NoError(Wrap(nil, CodeInternal, "nothing"))
	})

	s.Run("inner codes stay visible through outer wraps", func() {
		inner := New(CodeInsufficientStock, "only 2 left")
		outer := Wrap(inner, CodeBusinessRule, "cart validation failed")
		s.True(HasCode(outer, CodeBusinessRule))
		s.True(HasCode(outer, CodeInsufficientStock))
		s.Equal(CodeBusinessRule, CodeOf(outer))
	})
}

func (s *ErrorsSuite) TestCodeOfUncoded() {
	s.Equal(CodeInternal, CodeOf(stderrors.New("boom")))
}

package domain

import (
	"testing"

	"github.com/stretchr/testify/suite"

	dErrors "storefront/pkg/domain-errors"
)

type CountSuite struct {
	suite.Suite
}

func TestCountSuite(t *testing.T) {
	suite.Run(t, new(CountSuite))
}

func (s *CountSuite) mustCount(v int) Count {
	c, err := NewCount(v)
	s.Require().NoError(err)
	return c
}

func (s *CountSuite) TestConstruction() {
	s.Run("accepts bounds", func() {
		c, err := NewCount(MinCount)
		s.NoError(err)
		s.Equal(1, c.Value())

		c, err = NewCount(MaxCount)
		s.NoError(err)
		s.Equal(999, c.Value())
	})

	s.Run("rejects zero and negatives", func() {
		_, err := NewCount(0)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))

		_, err = NewCount(-5)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("rejects values above the ceiling", func() {
		_, err := NewCount(MaxCount + 1)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *CountSuite) TestArithmetic() {
	s.Run("adds quantities", func() {
		sum, err := s.mustCount(2).Add(s.mustCount(3))
		s.NoError(err)
		s.Equal(5, sum.Value())
	})

	s.Run("add fails above the ceiling", func() {
		_, err := s.mustCount(999).Add(s.mustCount(1))
		s.Error(err)
	})

	s.Run("subtracts quantities", func() {
		diff, err := s.mustCount(5).Sub(s.mustCount(4))
		s.NoError(err)
		s.Equal(1, diff.Value())
	})

	s.Run("subtract to zero or below fails", func() {
		_, err := s.mustCount(3).Sub(s.mustCount(3))
		s.Error(err)

		_, err = s.mustCount(3).Sub(s.mustCount(4))
		s.Error(err)
	})
}

package domain

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type StatusSuite struct {
	suite.Suite
}

func TestStatusSuite(t *testing.T) {
	suite.Run(t, new(StatusSuite))
}

func (s *StatusSuite) TestParse() {
	s.Run("accepts known states", func() {
		for _, raw := range []string{"pending", "confirmed", "shipped", "delivered", "cancelled"} {
			st, err := ParseStatus(raw)
			s.NoError(err)
			s.Equal(raw, st.String())
		}
	})

	s.Run("rejects unknown and empty input", func() {
		_, err := ParseStatus("returned")
		s.Error(err)

		_, err = ParseStatus("")
		s.Error(err)
	})
}

func (s *StatusSuite) TestTransitionGraph() {
	s.Run("pending moves to confirmed or cancelled only", func() {
		s.True(StatusPending.CanTransitionTo(StatusConfirmed))
		s.True(StatusPending.CanTransitionTo(StatusCancelled))
		s.False(StatusPending.CanTransitionTo(StatusShipped))
		s.False(StatusPending.CanTransitionTo(StatusDelivered))
	})

	s.Run("confirmed moves to shipped or cancelled only", func() {
		s.True(StatusConfirmed.CanTransitionTo(StatusShipped))
		s.True(StatusConfirmed.CanTransitionTo(StatusCancelled))
		s.False(StatusConfirmed.CanTransitionTo(StatusDelivered))
	})

	s.Run("shipped moves to delivered only", func() {
		s.True(StatusShipped.CanTransitionTo(StatusDelivered))
		s.False(StatusShipped.CanTransitionTo(StatusCancelled))
	})

	s.Run("terminal states allow nothing", func() {
		for _, next := range []Status{StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled} {
			s.False(StatusDelivered.CanTransitionTo(next))
			s.False(StatusCancelled.CanTransitionTo(next))
		}
		s.True(StatusDelivered.IsTerminal())
		s.True(StatusCancelled.IsTerminal())
		s.False(StatusPending.IsTerminal())
	})

	s.Run("self transition is never legal", func() {
		for _, st := range []Status{StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled} {
			s.False(st.CanTransitionTo(st))
		}
	})
}

func (s *StatusSuite) TestValidTransitions() {
	s.Run("lists successors", func() {
		s.ElementsMatch([]Status{StatusConfirmed, StatusCancelled}, StatusPending.ValidTransitions())
		s.Empty(StatusDelivered.ValidTransitions())
	})

	s.Run("returned slice is a copy", func() {
		transitions := StatusPending.ValidTransitions()
		transitions[0] = StatusDelivered
		s.False(StatusPending.CanTransitionTo(StatusDelivered))
	})
}

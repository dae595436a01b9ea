package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"storefront/pkg/domain"
	dErrors "storefront/pkg/domain-errors"
)

type OrderSuite struct {
	suite.Suite
	now    time.Time
	nextID int64
}

func TestOrderSuite(t *testing.T) {
	suite.Run(t, new(OrderSuite))
}

func (s *OrderSuite) SetupTest() {
	s.now = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	s.nextID = 0
}

func (s *OrderSuite) count(v int) domain.Count {
	c, err := domain.NewCount(v)
	s.Require().NoError(err)
	return c
}

func (s *OrderSuite) money(v int64) domain.Money {
	m, err := domain.NewMoney(v)
	s.Require().NoError(err)
	return m
}

func (s *OrderSuite) newOrder() Order {
	oid, err := domain.NewOrderID(1)
	s.Require().NoError(err)
	uid, err := domain.NewUserID(1)
	s.Require().NoError(err)

	o, err := NewOrder(oid, uid, "1-2-3 Chiyoda, Tokyo", "03-1234-5678", "", s.now)
	s.Require().NoError(err)
	return o
}

func (s *OrderSuite) newLine(orderID domain.OrderID, productID int64, qty int, price int64) Line {
	s.nextID++
	lineID, err := domain.NewOrderLineID(s.nextID)
	s.Require().NoError(err)
	pid, err := domain.NewProductID(productID)
	s.Require().NoError(err)

	line, err := NewLine(lineID, orderID, pid, s.count(qty), s.money(price), s.now)
	s.Require().NoError(err)
	return line
}

func (s *OrderSuite) TestNewOrder() {
	s.Run("starts pending with a zero total", func() {
		o := s.newOrder()
		s.Equal(domain.StatusPending, o.Status)
		s.Equal(int64(0), o.TotalAmount.Amount())
		s.True(o.IsOpen())
	})

	s.Run("rejects blank shipping fields", func() {
		oid, _ := domain.NewOrderID(1)
		uid, _ := domain.NewUserID(1)

		_, err := NewOrder(oid, uid, "", "03-1234-5678", "", s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))

		_, err = NewOrder(oid, uid, "Tokyo", " ", "", s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *OrderSuite) TestAddLine() {
	s.Run("appends and merges like a cart", func() {
		o := s.newOrder()

		o, err := o.AddLine(s.newLine(o.ID, 1, 2, 1000))
		s.Require().NoError(err)
		o, err = o.AddLine(s.newLine(o.ID, 1, 3, 1000))
		s.Require().NoError(err)
		o, err = o.AddLine(s.newLine(o.ID, 2, 1, 500))
		s.Require().NoError(err)

		s.Len(o.Lines, 2)
		s.Equal(5, o.Lines[0].Quantity.Value())
	})

	s.Run("rejects lines from another order", func() {
		o := s.newOrder()
		otherID, _ := domain.NewOrderID(42)

		_, err := o.AddLine(s.newLine(otherID, 1, 1, 100))
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *OrderSuite) TestUpdateStatus() {
	s.Run("walks the happy path", func() {
		o := s.newOrder()

		o, err := o.Confirm(s.now)
		s.Require().NoError(err)
		s.Equal(domain.StatusConfirmed, o.Status)

		o, err = o.Ship(s.now)
		s.Require().NoError(err)
		s.Equal(domain.StatusShipped, o.Status)

		o, err = o.Deliver(s.now)
		s.Require().NoError(err)
		s.Equal(domain.StatusDelivered, o.Status)
		s.False(o.IsOpen())
	})

	s.Run("rejects illegal edges and names the alternatives", func() {
		o := s.newOrder()

		_, err := o.Ship(s.now)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
		s.Contains(err.Error(), "pending")
		s.Contains(err.Error(), "confirmed")
	})

	s.Run("rejects same-status transitions", func() {
		o := s.newOrder()
		_, err := o.UpdateStatus(domain.StatusPending, s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})

	s.Run("terminal states accept nothing", func() {
		o := s.newOrder()
		o, err := o.Cancel(s.now)
		s.Require().NoError(err)

		_, err = o.Confirm(s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})

	s.Run("does not mutate the original", func() {
		o := s.newOrder()
		confirmed, err := o.Confirm(s.now.Add(time.Hour))
		s.Require().NoError(err)

		s.Equal(domain.StatusPending, o.Status)
		s.Equal(domain.StatusConfirmed, confirmed.Status)
		s.Equal(s.now, o.UpdatedAt)
	})
}

func (s *OrderSuite) TestRecalculateTotalAmount() {
	o := s.newOrder()

	o, err := o.AddLine(s.newLine(o.ID, 1, 2, 1000))
	s.Require().NoError(err)
	o, err = o.AddLine(s.newLine(o.ID, 2, 3, 500))
	s.Require().NoError(err)

	total, err := o.RecalculateTotalAmount()
	s.Require().NoError(err)
	s.Equal(int64(3500), total.Amount())

	// Stored total drifts independently; recalculation exposes it.
	o = o.WithTotalAmount(s.money(9999), s.now)
	recalced, err := o.RecalculateTotalAmount()
	s.Require().NoError(err)
	s.False(o.TotalAmount.Equals(recalced))
}

func (s *OrderSuite) TestRestoreOrder() {
	o := s.newOrder()
	o, err := o.AddLine(s.newLine(o.ID, 1, 2, 1000))
	s.Require().NoError(err)

	restored, err := RestoreOrder(o.ID, o.UserID, s.money(2000), domain.StatusShipped,
		o.ShippingAddress, o.ShippingPhone, o.Notes, o.Lines, o.CreatedAt, s.now.Add(time.Hour))
	s.Require().NoError(err)
	s.Equal(domain.StatusShipped, restored.Status)
	s.Equal(int64(2000), restored.TotalAmount.Amount())
	s.Equal(o.CreatedAt, restored.CreatedAt)
}

func (s *OrderSuite) TestProductIDSet() {
	o := s.newOrder()
	o, err := o.AddLine(s.newLine(o.ID, 3, 1, 100))
	s.Require().NoError(err)
	o, err = o.AddLine(s.newLine(o.ID, 1, 1, 100))
	s.Require().NoError(err)

	set := o.ProductIDSet()
	s.Len(set, 2)
	pid1, _ := domain.NewProductID(1)
	pid3, _ := domain.NewProductID(3)
	_, ok := set[pid1]
	s.True(ok)
	_, ok = set[pid3]
	s.True(ok)
}

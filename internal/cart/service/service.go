package service

import (
	"context"
	"errors"
	"log/slog"

	cartmodels "storefront/internal/cart/models"
	cartports "storefront/internal/cart/ports"
	catalogports "storefront/internal/catalog/ports"
	"storefront/internal/platform/metrics"
	"storefront/pkg/domain"
	dErrors "storefront/pkg/domain-errors"
	"storefront/pkg/platform/audit"
	"storefront/pkg/platform/keyedlock"
	"storefront/pkg/platform/sentinel"
	"storefront/pkg/requestcontext"
)

// Service orchestrates cart operations. Mutations are serialized per session
// through a keyed lock: the ceiling checks read the cart, validate, then
// save, and interleaved writes for the same session would let both pass.
type Service struct {
	carts     cartports.Store
	catalog   catalogports.Store
	rules     *Rules
	locks     *keyedlock.Mutex
	publisher audit.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithAuditPublisher attaches an audit event sink.
func WithAuditPublisher(publisher audit.Publisher) Option {
	return func(s *Service) { s.publisher = publisher }
}

// WithMetrics attaches application metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New constructs the cart application service.
func New(carts cartports.Store, catalog catalogports.Store, rules *Rules, opts ...Option) (*Service, error) {
	if carts == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "cart store is required")
	}
	if catalog == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "catalog store is required")
	}
	if rules == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "cart rules are required")
	}
	svc := &Service{
		carts:   carts,
		catalog: catalog,
		rules:   rules,
		locks:   keyedlock.New(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc, nil
}

// Get returns the session's cart; a session without one gets a fresh empty
// cart.
func (s *Service) Get(ctx context.Context, sessionID domain.SessionID) (cartmodels.Cart, error) {
	cart, err := s.carts.FindBySession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return cartmodels.NewCart(sessionID)
		}
		return cartmodels.Cart{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load cart")
	}
	return cart, nil
}

// AddItem puts qty units of a product into the session's cart, merging into
// an existing line for the same product.
func (s *Service) AddItem(ctx context.Context, sessionID domain.SessionID, productID domain.ProductID, qty domain.Count) (cartmodels.Cart, error) {
	var result cartmodels.Cart
	err := s.locks.Do(sessionID.String(), func() error {
		cart, err := s.Get(ctx, sessionID)
		if err != nil {
			return err
		}

		product, err := s.catalog.FindByID(ctx, productID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.Newf(dErrors.CodeNotFound, "product %s not found", productID)
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load product")
		}

		if err := s.rules.ValidateItemAddition(ctx, cart, product, qty); err != nil {
			return err
		}

		lineID, err := s.carts.NextLineID(ctx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to allocate cart line id")
		}
		line, err := cartmodels.NewLine(lineID, sessionID, productID, qty, requestcontext.Now(ctx))
		if err != nil {
			return err
		}

		updated, err := cart.AddLine(line)
		if err != nil {
			return err
		}
		if err := s.carts.Save(ctx, updated); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save cart")
		}
		result = updated
		return nil
	})
	if err != nil {
		return cartmodels.Cart{}, err
	}

	if s.metrics != nil {
		s.metrics.IncrementCartItemsAdded()
	}
	s.emit(ctx, audit.EventCartItemAdded, sessionID, productID)
	return result, nil
}

// UpdateItem replaces a line's quantity, re-checking stock and ceilings for
// the new value.
func (s *Service) UpdateItem(ctx context.Context, sessionID domain.SessionID, lineID domain.CartLineID, qty domain.Count) (cartmodels.Cart, error) {
	var result cartmodels.Cart
	err := s.locks.Do(sessionID.String(), func() error {
		cart, err := s.Get(ctx, sessionID)
		if err != nil {
			return err
		}

		var productID domain.ProductID
		for _, line := range cart.Lines {
			if line.ID == lineID {
				productID = line.ProductID
				break
			}
		}
		if productID.IsNil() {
			return dErrors.Newf(dErrors.CodeNotFound, "cart line %s not found", lineID)
		}

		product, err := s.catalog.FindByID(ctx, productID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.Newf(dErrors.CodeNotFound, "product %s not found", productID)
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load product")
		}

		// Validate against a cart without the line: the update replaces the
		// old quantity rather than adding to it.
		stripped, err := cart.RemoveLine(lineID)
		if err != nil {
			return err
		}
		if err := s.rules.ValidateItemAddition(ctx, stripped, product, qty); err != nil {
			return err
		}

		updated, err := cart.UpdateLine(lineID, qty, requestcontext.Now(ctx))
		if err != nil {
			return err
		}
		if err := s.carts.Save(ctx, updated); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save cart")
		}
		result = updated
		return nil
	})
	if err != nil {
		return cartmodels.Cart{}, err
	}
	return result, nil
}

// RemoveItem drops a line from the cart.
func (s *Service) RemoveItem(ctx context.Context, sessionID domain.SessionID, lineID domain.CartLineID) (cartmodels.Cart, error) {
	var result cartmodels.Cart
	err := s.locks.Do(sessionID.String(), func() error {
		cart, err := s.Get(ctx, sessionID)
		if err != nil {
			return err
		}
		updated, err := cart.RemoveLine(lineID)
		if err != nil {
			return err
		}
		if err := s.carts.Save(ctx, updated); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save cart")
		}
		result = updated
		return nil
	})
	if err != nil {
		return cartmodels.Cart{}, err
	}

	s.emit(ctx, audit.EventCartItemRemoved, sessionID, 0)
	return result, nil
}

// Clear drops the session's cart entirely.
func (s *Service) Clear(ctx context.Context, sessionID domain.SessionID) error {
	err := s.locks.Do(sessionID.String(), func() error {
		if err := s.carts.Delete(ctx, sessionID); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to clear cart")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.emit(ctx, audit.EventCartCleared, sessionID, 0)
	return nil
}

// Total prices the cart against the current catalog.
func (s *Service) Total(ctx context.Context, sessionID domain.SessionID) (domain.Money, error) {
	cart, err := s.Get(ctx, sessionID)
	if err != nil {
		return domain.Money{}, err
	}
	products, err := s.catalog.FindByIDs(ctx, cart.ProductIDs())
	if err != nil {
		return domain.Money{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load catalog snapshot")
	}
	return cart.TotalAmount(products)
}

// AbandonmentRisk scores the cart's abandonment likelihood.
func (s *Service) AbandonmentRisk(ctx context.Context, sessionID domain.SessionID) (AbandonmentReport, error) {
	cart, err := s.Get(ctx, sessionID)
	if err != nil {
		return AbandonmentReport{}, err
	}
	return s.rules.AnalyzeAbandonmentRisk(ctx, cart, requestcontext.Now(ctx)), nil
}

func (s *Service) emit(ctx context.Context, event audit.AuditEvent, sessionID domain.SessionID, productID domain.ProductID) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.Emit(ctx, audit.Event{
		Category:  audit.CategoryOf(event),
		Timestamp: requestcontext.Now(ctx),
		Action:    string(event),
		UserID:    requestcontext.UserID(ctx),
		SessionID: sessionID.String(),
		ProductID: productID,
		RequestID: requestcontext.RequestID(ctx),
	})
	if err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "event", event, "error", err)
	}
}

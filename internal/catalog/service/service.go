package service

import (
	"context"
	"errors"
	"log/slog"

	"storefront/internal/catalog/models"
	"storefront/internal/catalog/ports"
	"storefront/internal/platform/metrics"
	"storefront/pkg/domain"
	dErrors "storefront/pkg/domain-errors"
	"storefront/pkg/platform/audit"
	"storefront/pkg/platform/sentinel"
	"storefront/pkg/requestcontext"
)

// RegisterInput carries the raw listing fields.
type RegisterInput struct {
	Name        string
	Description string
	PriceYen    int64
	Stock       int
	Category    string
	ImageRef    string
}

// Service orchestrates catalog operations.
type Service struct {
	store     ports.Store
	rules     *Rules
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

// New constructs the catalog application service.
func New(store ports.Store, rules *Rules, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "catalog store is required")
	}
	if rules == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "catalog rules are required")
	}
	svc := &Service{
		store:  store,
		rules:  rules,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc, nil
}

// Register creates a new active listing after the registration rules pass.
func (s *Service) Register(ctx context.Context, in RegisterInput) (models.Product, error) {
	price, err := domain.NewMoney(in.PriceYen)
	if err != nil {
		return models.Product{}, err
	}
	category, err := domain.ParseCategory(in.Category)
	if err != nil {
		return models.Product{}, err
	}

	if err := s.rules.ValidateRegistration(ctx, in.Name, price, in.Stock, category); err != nil {
		return models.Product{}, err
	}

	productID, err := s.store.NextID(ctx)
	if err != nil {
		return models.Product{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to allocate product id")
	}

	now := requestcontext.Now(ctx)
	product, err := models.NewProduct(productID, in.Name, in.Description, price, in.Stock, category, in.ImageRef, now)
	if err != nil {
		return models.Product{}, err
	}

	if err := s.store.CreateIfNameAvailable(ctx, product); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return models.Product{}, dErrors.Newf(dErrors.CodeConflict, "product name %q is already taken", in.Name)
		}
		return models.Product{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create product")
	}

	s.logger.InfoContext(ctx, "product registered",
		"product_id", product.ID, "name", product.Name, "category", product.Category)
	if s.metrics != nil {
		s.metrics.IncrementProductsRegistered()
	}
	s.emit(ctx, audit.EventProductRegistered, product.ID, "")

	return product, nil
}

// Get returns the product by id.
func (s *Service) Get(ctx context.Context, productID domain.ProductID) (models.Product, error) {
	product, err := s.store.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.Product{}, dErrors.Newf(dErrors.CodeNotFound, "product %s not found", productID)
		}
		return models.Product{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load product")
	}
	return product, nil
}

// List returns products matching the filter.
func (s *Service) List(ctx context.Context, filter ports.ListFilter) ([]models.Product, error) {
	products, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list products")
	}
	return products, nil
}

// ChangePrice sets a new price on the listing, re-checking the category
// floor.
func (s *Service) ChangePrice(ctx context.Context, productID domain.ProductID, priceYen int64) (models.Product, error) {
	product, err := s.Get(ctx, productID)
	if err != nil {
		return models.Product{}, err
	}
	price, err := domain.NewMoney(priceYen)
	if err != nil {
		return models.Product{}, err
	}
	if floor := minCategoryPrice[product.Category]; price.Amount() < floor {
		return models.Product{}, dErrors.Newf(dErrors.CodeBusinessRule,
			"price %s is below the %s category minimum of ¥%d", price.Format(), product.Category.Label(), floor)
	}

	updated := product.ChangePrice(price, requestcontext.Now(ctx))
	if err := s.store.Update(ctx, updated); err != nil {
		return models.Product{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save price change")
	}
	return updated, nil
}

// Activate puts the listing back on sale. Idempotent.
func (s *Service) Activate(ctx context.Context, productID domain.ProductID) (models.Product, error) {
	product, err := s.Get(ctx, productID)
	if err != nil {
		return models.Product{}, err
	}
	updated := product.Activate(requestcontext.Now(ctx))
	if updated.UpdatedAt.Equal(product.UpdatedAt) {
		return product, nil
	}
	if err := s.store.Update(ctx, updated); err != nil {
		return models.Product{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save activation")
	}
	s.emit(ctx, audit.EventProductReactivated, productID, "")
	return updated, nil
}

// Deactivate takes the listing off sale. Idempotent.
func (s *Service) Deactivate(ctx context.Context, productID domain.ProductID) (models.Product, error) {
	product, err := s.Get(ctx, productID)
	if err != nil {
		return models.Product{}, err
	}
	updated := product.Deactivate(requestcontext.Now(ctx))
	if updated.UpdatedAt.Equal(product.UpdatedAt) {
		return product, nil
	}
	if err := s.store.Update(ctx, updated); err != nil {
		return models.Product{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save deactivation")
	}
	s.emit(ctx, audit.EventProductDeactivated, productID, "")
	return updated, nil
}

// IncreaseStock raises the stock level by qty units.
func (s *Service) IncreaseStock(ctx context.Context, productID domain.ProductID, qty domain.Count) (models.Product, error) {
	product, err := s.Get(ctx, productID)
	if err != nil {
		return models.Product{}, err
	}
	updated := product.IncreaseStock(qty, requestcontext.Now(ctx))
	if err := s.store.Update(ctx, updated); err != nil {
		return models.Product{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save stock increase")
	}
	return updated, nil
}

// DecreaseStock takes qty units off the stock level after the stock rules
// pass.
func (s *Service) DecreaseStock(ctx context.Context, productID domain.ProductID, qty domain.Count) (models.Product, error) {
	product, err := s.Get(ctx, productID)
	if err != nil {
		return models.Product{}, err
	}
	if err := s.rules.ValidateStockDecrease(ctx, product, qty); err != nil {
		return models.Product{}, err
	}

	updated, err := product.DecreaseStock(qty, requestcontext.Now(ctx))
	if err != nil {
		return models.Product{}, err
	}
	if err := s.store.Update(ctx, updated); err != nil {
		return models.Product{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save stock decrease")
	}

	if updated.Stock == 0 {
		s.logger.InfoContext(ctx, "product stock drained", "product_id", productID)
		s.emit(ctx, audit.EventProductStockDrained, productID, "")
	}
	return updated, nil
}

// PricingReport analyzes the product's price against its category peers.
func (s *Service) PricingReport(ctx context.Context, productID domain.ProductID) (PricingReport, error) {
	product, err := s.Get(ctx, productID)
	if err != nil {
		return PricingReport{}, err
	}
	return s.rules.AnalyzePricing(ctx, product)
}

func (s *Service) emit(ctx context.Context, event audit.AuditEvent, productID domain.ProductID, reason string) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.Emit(ctx, audit.Event{
		Category:  audit.CategoryOf(event),
		Timestamp: requestcontext.Now(ctx),
		Action:    string(event),
		UserID:    requestcontext.UserID(ctx),
		ProductID: productID,
		Reason:    reason,
		RequestID: requestcontext.RequestID(ctx),
	})
	if err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "event", event, "error", err)
	}
}

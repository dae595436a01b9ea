package service

import (
	"context"
	"log/slog"
	"strings"

	"storefront/internal/catalog/models"
	"storefront/internal/catalog/ports"
	"storefront/pkg/domain"
	dErrors "storefront/pkg/domain-errors"
)

const (
	// Non-fatal warning thresholds: logged, never rejected.
	largeStockThreshold = 1000
	highValueThreshold  = 500_000

	prohibitedProductRunes = `<>{}|;"'` + "`"
)

// forbiddenProductWords may not appear in a listing name; they mark
// placeholder listings that must never reach the storefront.
var forbiddenProductWords = []string{"test", "dummy", "sample", "placeholder"}

// minCategoryPrice is the minimum listing price per category, in yen.
var minCategoryPrice = map[domain.Category]int64{
	domain.CategoryElectronics: 500,
	domain.CategoryFashion:     300,
	domain.CategoryBooks:       100,
	domain.CategoryHome:        200,
	domain.CategorySports:      300,
	domain.CategoryFood:        100,
}

// PriceBucket classifies a price against its category mean.
type PriceBucket string

const (
	PriceLow     PriceBucket = "low"     // below 80% of the category mean
	PriceAverage PriceBucket = "average" // within 80-120% of the mean
	PriceHigh    PriceBucket = "high"    // above 120% of the mean
)

// PricingReport is the result of comparing a product's price against its
// active same-category peers.
type PricingReport struct {
	ProductID      domain.ProductID
	Price          domain.Money
	PeerCount      int
	CategoryMean   domain.Money
	Bucket         PriceBucket
	Recommendation string
}

// Rules enforces the catalog invariants that need persisted state: name
// uniqueness and policy, category price floors, and pricing analysis.
type Rules struct {
	store  ports.Store
	logger *slog.Logger
}

// RulesOption configures a Rules instance.
type RulesOption func(*Rules)

// WithRulesLogger attaches a structured logger.
func WithRulesLogger(logger *slog.Logger) RulesOption {
	return func(r *Rules) { r.logger = logger }
}

// NewRules constructs the catalog rule service.
func NewRules(store ports.Store, opts ...RulesOption) (*Rules, error) {
	if store == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "catalog store is required")
	}
	r := &Rules{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r, nil
}

// ValidateRegistration checks name uniqueness and policy plus the category
// price floor for a prospective listing. Large stock and high value trigger
// warnings in the log but never a rejection.
func (r *Rules) ValidateRegistration(ctx context.Context, name string, price domain.Money, stock int, category domain.Category) error {
	taken, err := r.store.ExistsByName(ctx, name)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check name uniqueness")
	}
	if taken {
		return dErrors.Newf(dErrors.CodeBusinessRule, "product name %q is already taken", name)
	}

	if err := validateProductNamePolicy(name); err != nil {
		return err
	}

	floor, ok := minCategoryPrice[category]
	if !ok {
		return dErrors.Newf(dErrors.CodeValidation, "unknown category %q", category)
	}
	if price.Amount() < floor {
		return dErrors.Newf(dErrors.CodeBusinessRule,
			"price %s is below the %s category minimum of ¥%d", price.Format(), category.Label(), floor)
	}

	if stock > largeStockThreshold {
		r.logger.WarnContext(ctx, "unusually large initial stock", "name", name, "stock", stock)
	}
	if price.Amount() > highValueThreshold {
		r.logger.WarnContext(ctx, "unusually high listing price", "name", name, "price", price.Format())
	}
	return nil
}

func validateProductNamePolicy(name string) error {
	if strings.ContainsAny(name, prohibitedProductRunes) {
		return dErrors.Newf(dErrors.CodeBusinessRule, "product name %q contains prohibited characters", name)
	}
	lower := strings.ToLower(name)
	for _, word := range forbiddenProductWords {
		if strings.Contains(lower, word) {
			return dErrors.Newf(dErrors.CodeBusinessRule, "product name %q contains forbidden word %q", name, word)
		}
	}
	return nil
}

// ValidateStockDecrease checks whether qty units can be taken from the
// product.
func (r *Rules) ValidateStockDecrease(_ context.Context, product models.Product, qty domain.Count) error {
	if !product.IsAvailableForSale() {
		return dErrors.Newf(dErrors.CodeInsufficientStock, "product %q is not available for sale", product.Name)
	}
	if qty.Value() > product.Stock {
		return dErrors.Newf(dErrors.CodeInsufficientStock,
			"requested %d units of %q but only %d in stock", qty.Value(), product.Name, product.Stock)
	}
	return nil
}

// AnalyzePricing compares the product's price against the mean price of its
// active same-category peers and buckets it with a textual recommendation.
// The heuristic informs sellers; it never blocks anything.
func (r *Rules) AnalyzePricing(ctx context.Context, product models.Product) (PricingReport, error) {
	peers, err := r.store.ListActiveByCategory(ctx, product.Category)
	if err != nil {
		return PricingReport{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list category peers")
	}

	var sum, count int64
	for _, peer := range peers {
		if peer.ID == product.ID {
			continue
		}
		sum += peer.Price.Amount()
		count++
	}

	report := PricingReport{
		ProductID: product.ID,
		Price:     product.Price,
		PeerCount: int(count),
	}
	if count == 0 {
		report.Bucket = PriceAverage
		report.Recommendation = "no active peers in this category yet; price freely"
		report.CategoryMean = product.Price
		return report, nil
	}

	mean, err := domain.NewMoney(sum / count)
	if err != nil {
		return PricingReport{}, err
	}
	report.CategoryMean = mean

	price := product.Price.Amount()
	switch {
	case price*100 < mean.Amount()*80:
		report.Bucket = PriceLow
		report.Recommendation = "priced well below the category mean of " + mean.Format() + "; consider raising"
	case price*100 > mean.Amount()*120:
		report.Bucket = PriceHigh
		report.Recommendation = "priced well above the category mean of " + mean.Format() + "; expect slower sales"
	default:
		report.Bucket = PriceAverage
		report.Recommendation = "priced in line with the category mean of " + mean.Format()
	}
	return report, nil
}

package service

import (
	"context"
	"log/slog"
	"time"

	cartmodels "storefront/internal/cart/models"
	catalogmodels "storefront/internal/catalog/models"
	"storefront/pkg/domain"
	dErrors "storefront/pkg/domain-errors"
)

// Cart ceilings, all checked against post-addition totals.
const (
	maxDistinctProducts = 20
	maxUnitsPerProduct  = 99
	maxTotalUnits       = 200
)

// RiskBucket classifies an abandonment-risk score.
type RiskBucket string

const (
	RiskLow    RiskBucket = "low"    // score < 30
	RiskMedium RiskBucket = "medium" // 30 <= score < 70
	RiskHigh   RiskBucket = "high"   // score >= 70
)

// AbandonmentReport is the heuristic output of AnalyzeAbandonmentRisk.
type AbandonmentReport struct {
	Score          int // 0-100
	Bucket         RiskBucket
	Recommendation string
}

// Rules enforces the cart ceilings and sellability checks, and produces the
// abandonment-risk heuristic. Stateless and read-only.
type Rules struct {
	logger *slog.Logger
}

// RulesOption configures a Rules instance.
type RulesOption func(*Rules)

// WithRulesLogger attaches a structured logger.
func WithRulesLogger(logger *slog.Logger) RulesOption {
	return func(r *Rules) { r.logger = logger }
}

// NewRules constructs the cart rule service.
func NewRules(opts ...RulesOption) *Rules {
	r := &Rules{logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// ValidateItemAddition checks whether qty units of product can join the
// cart. The chain is ordered: sellability, stock against the post-addition
// quantity, then the three ceilings, each against the post-addition totals.
func (r *Rules) ValidateItemAddition(_ context.Context, cart cartmodels.Cart, product catalogmodels.Product, qty domain.Count) error {
	if !product.IsAvailableForSale() {
		return dErrors.Newf(dErrors.CodeBusinessRule, "product %q is not available for sale", product.Name)
	}

	unitsAfter := cart.QuantityOf(product.ID) + qty.Value()
	if unitsAfter > product.Stock {
		return dErrors.Newf(dErrors.CodeInsufficientStock,
			"cart would hold %d units of %q but only %d in stock", unitsAfter, product.Name, product.Stock)
	}

	distinctAfter := cart.DistinctProductCount()
	if cart.QuantityOf(product.ID) == 0 {
		distinctAfter++
	}
	if distinctAfter > maxDistinctProducts {
		return dErrors.Newf(dErrors.CodeBusinessRule,
			"cart cannot hold more than %d distinct products", maxDistinctProducts)
	}

	if unitsAfter > maxUnitsPerProduct {
		return dErrors.Newf(dErrors.CodeBusinessRule,
			"cart cannot hold more than %d units of one product", maxUnitsPerProduct)
	}

	if cart.TotalQuantity()+qty.Value() > maxTotalUnits {
		return dErrors.Newf(dErrors.CodeBusinessRule,
			"cart cannot hold more than %d units in total", maxTotalUnits)
	}
	return nil
}

// AnalyzeAbandonmentRisk scores the likelihood (0-100) that the session's
// cart will be abandoned, from idle time and cart size. A heuristic for
// prioritizing recovery nudges, never a hard rule.
func (r *Rules) AnalyzeAbandonmentRisk(_ context.Context, cart cartmodels.Cart, now time.Time) AbandonmentReport {
	score := idleScore(cart, now) + sizeScore(cart)
	if score > 100 {
		score = 100
	}

	report := AbandonmentReport{Score: score}
	switch {
	case score < 30:
		report.Bucket = RiskLow
		report.Recommendation = "no action needed"
	case score < 70:
		report.Bucket = RiskMedium
		report.Recommendation = "consider a reminder notification"
	default:
		report.Bucket = RiskHigh
		report.Recommendation = "consider a reminder with an incentive"
	}
	return report
}

// idleScore grows with the time since the cart last changed.
func idleScore(cart cartmodels.Cart, now time.Time) int {
	if cart.IsEmpty() {
		return 0
	}
	var lastActivity time.Time
	for _, line := range cart.Lines {
		if line.UpdatedAt.After(lastActivity) {
			lastActivity = line.UpdatedAt
		}
	}

	idle := now.Sub(lastActivity)
	switch {
	case idle >= 72*time.Hour:
		return 60
	case idle >= 24*time.Hour:
		return 45
	case idle >= time.Hour:
		return 25
	default:
		return 0
	}
}

// sizeScore reflects commitment: a single-line cart is dropped far more
// often than a full one.
func sizeScore(cart cartmodels.Cart) int {
	switch cart.DistinctProductCount() {
	case 0:
		return 20
	case 1:
		return 25
	case 2, 3:
		return 15
	default:
		return 5
	}
}

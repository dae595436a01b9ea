package audit

import (
	"time"

	"storefront/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with legal/financial significance:
	// orders placed, status changes, admin role changes.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to abuse monitoring:
	// ceiling violations, duplicate-order detections, permission denials.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine activity useful for debugging:
	// registrations, cart activity, stock movements.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory    `json:"category"`
	Timestamp time.Time        `json:"timestamp"`
	Action    string           `json:"action"`
	UserID    domain.UserID    `json:"user_id,omitempty"`
	SessionID string           `json:"session_id,omitempty"`
	ProductID domain.ProductID `json:"product_id,omitempty"`
	OrderID   domain.OrderID   `json:"order_id,omitempty"`
	// ActorID tracks who performed the action when different from UserID,
	// e.g. an admin promoting another user.
	ActorID   domain.UserID `json:"actor_id,omitempty"`
	Reason    string        `json:"reason,omitempty"`
	RequestID string        `json:"request_id,omitempty"`
}

// AuditEvent names a recorded action.
type AuditEvent string

const (
	// User events
	EventUserRegistered AuditEvent = "user_registered"
	EventUserPromoted   AuditEvent = "user_promoted"
	EventUserDemoted    AuditEvent = "user_demoted"
	EventUserDeleted    AuditEvent = "user_deleted"

	// Catalog events
	EventProductRegistered   AuditEvent = "product_registered"
	EventProductDeactivated  AuditEvent = "product_deactivated"
	EventProductReactivated  AuditEvent = "product_reactivated"
	EventProductStockDrained AuditEvent = "product_stock_drained"

	// Cart events
	EventCartItemAdded   AuditEvent = "cart_item_added"
	EventCartItemRemoved AuditEvent = "cart_item_removed"
	EventCartCleared     AuditEvent = "cart_cleared"

	// Order events
	EventOrderPlaced         AuditEvent = "order_placed"
	EventOrderStatusChanged  AuditEvent = "order_status_changed"
	EventOrderCancelled      AuditEvent = "order_cancelled"
	EventDuplicateOrder      AuditEvent = "duplicate_order_detected"
	EventOrderCeilingReached AuditEvent = "order_ceiling_reached"
)

// eventCategories maps each audit event to its category.
var eventCategories = map[AuditEvent]EventCategory{
	EventUserRegistered: CategoryCompliance,
	EventUserPromoted:   CategoryCompliance,
	EventUserDemoted:    CategoryCompliance,
	EventUserDeleted:    CategoryCompliance,

	EventProductRegistered:   CategoryOperations,
	EventProductDeactivated:  CategoryOperations,
	EventProductReactivated:  CategoryOperations,
	EventProductStockDrained: CategoryOperations,

	EventCartItemAdded:   CategoryOperations,
	EventCartItemRemoved: CategoryOperations,
	EventCartCleared:     CategoryOperations,

	EventOrderPlaced:         CategoryCompliance,
	EventOrderStatusChanged:  CategoryCompliance,
	EventOrderCancelled:      CategoryCompliance,
	EventDuplicateOrder:      CategorySecurity,
	EventOrderCeilingReached: CategorySecurity,
}

// CategoryOf returns the category for an event name, defaulting to
// operations for unknown events.
func CategoryOf(event AuditEvent) EventCategory {
	if c, ok := eventCategories[event]; ok {
		return c
	}
	return CategoryOperations
}

package enums

import "fmt"

// OrderStatus maps to the order_status enum in Postgres.
type OrderStatus string

const (
	OrderStatusDraft      OrderStatus = "draft"
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusDelivering OrderStatus = "delivering"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusRefunded   OrderStatus = "refunded"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusDraft,
	OrderStatusPending,
	OrderStatusDelivering,
	OrderStatusCompleted,
	OrderStatusRefunded,
}

// allowedOrderTransitions enumerates the administratively accepted status
// edits. Draft confirmation goes through Confirm, not through a raw status
// update, but the transition is listed so the state machine is complete.
var allowedOrderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusDraft:      {OrderStatusPending},
	OrderStatusPending:    {OrderStatusDelivering, OrderStatusCompleted, OrderStatusRefunded},
	OrderStatusDelivering: {OrderStatusCompleted, OrderStatusRefunded},
	OrderStatusCompleted:  {OrderStatusRefunded},
	OrderStatusRefunded:   {},
}

// IsValid reports whether the value matches the canonical order_status enum.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether line items under an order in this status are
// frozen.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusRefunded
}

// IsEditable reports whether line items may still be mutated.
func (s OrderStatus) IsEditable() bool {
	return s == OrderStatusDraft || s == OrderStatusPending
}

// CanTransitionTo reports whether the status edit from s to target is allowed.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	for _, candidate := range allowedOrderTransitions[s] {
		if candidate == target {
			return true
		}
	}
	return false
}

// ParseOrderStatus converts raw input into OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}

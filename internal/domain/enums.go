package domain

// DraftOrderStatus represents the lifecycle of a draft order
type DraftOrderStatus string

const (
	// OPEN - lines can still be added and removed
	DraftOrderStatusOpen DraftOrderStatus = "OPEN"
	// PRICED - a pricing pass has written discounts and totals
	DraftOrderStatusPriced DraftOrderStatus = "PRICED"
	// CONVERTED - the customer confirmed; the draft became a real order
	DraftOrderStatusConverted DraftOrderStatus = "CONVERTED"
	// CANCELLED - abandoned or explicitly cancelled
	DraftOrderStatusCancelled DraftOrderStatus = "CANCELLED"
)

// IsValid checks if the draft order status is valid
func (s DraftOrderStatus) IsValid() bool {
	switch s {
	case DraftOrderStatusOpen,
		DraftOrderStatusPriced,
		DraftOrderStatusConverted,
		DraftOrderStatusCancelled:
		return true
	default:
		return false
	}
}

// CanTransitionTo checks if a status transition is valid
func (s DraftOrderStatus) CanTransitionTo(newStatus DraftOrderStatus) bool {
	switch s {
	case DraftOrderStatusOpen:
		return newStatus == DraftOrderStatusPriced ||
			newStatus == DraftOrderStatusCancelled
	case DraftOrderStatusPriced:
		// Re-pricing an already priced order is allowed (idempotent pass)
		return newStatus == DraftOrderStatusPriced ||
			newStatus == DraftOrderStatusConverted ||
			newStatus == DraftOrderStatusCancelled
	case DraftOrderStatusConverted, DraftOrderStatusCancelled:
		return false // Terminal states
	default:
		return false
	}
}

// IsPriceable reports whether a pricing pass may run against this status
func (s DraftOrderStatus) IsPriceable() bool {
	return s == DraftOrderStatusOpen || s == DraftOrderStatusPriced
}

// MessageDirection marks a stored message as inbound or outbound
type MessageDirection string

const (
	MessageDirectionInbound  MessageDirection = "inbound"
	MessageDirectionOutbound MessageDirection = "outbound"
)

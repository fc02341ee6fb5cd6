package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Customer represents a registered WhatsApp customer
type Customer struct {
	ID        uuid.UUID
	Phone     string // WhatsApp number without the whatsapp: prefix, e.g. 5213314179343
	Name      string
	Greeting  *string // preferred greeting name; falls back to the WhatsApp profile name
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Product represents catalog reference data. Owned by the catalog; read-only here.
type Product struct {
	ID         uuid.UUID
	SKU        string
	Name       string
	CategoryID string
	LineID     string // product-family grouping, e.g. "pan-dulce"
	UnitPrice  decimal.Decimal
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// DraftOrder is a customer's in-progress cart. At most one open draft order
// exists per customer at any time.
type DraftOrder struct {
	ID            uuid.UUID
	CustomerID    uuid.UUID
	Status        DraftOrderStatus
	Subtotal      decimal.Decimal
	DiscountTotal decimal.Decimal
	FinalTotal    decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// DraftOrderLine is one cart line. Category/line IDs are copied from the
// product at add-time so pricing does not depend on later catalog edits.
type DraftOrderLine struct {
	ID                 uuid.UUID
	DraftOrderID       uuid.UUID
	ProductID          uuid.UUID
	SKU                string
	Quantity           int
	UnitPrice          decimal.Decimal // captured at add-time
	CategoryID         string
	LineID             string
	LineSubtotal       decimal.Decimal
	DiscountAmount     decimal.Decimal
	AppliedPromotionID *uuid.UUID
	FinalLineTotal     decimal.Decimal
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// ConversationState tracks where a customer is in the current flow
type ConversationState struct {
	CustomerID  uuid.UUID
	CurrentFlow string
	CurrentStep string
	Context     map[string]interface{} // JSONB
	UpdatedAt   time.Time
}

// Message is one inbound or outbound WhatsApp message, kept for audit
type Message struct {
	ID         uuid.UUID
	CustomerID uuid.UUID
	Direction  MessageDirection
	Body       string
	Intent     *string
	CreatedAt  time.Time
}

package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/tienditamx/orderbot/internal/domain"
	"github.com/tienditamx/orderbot/internal/pricing"
)

// CustomerRepository defines customer data access methods
type CustomerRepository interface {
	GetByPhone(ctx context.Context, phone string) (*domain.Customer, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
	Create(ctx context.Context, customer *domain.Customer) error
}

// ProductRepository defines catalog lookup methods. Products are reference
// data owned by the catalog; this engine only reads them.
type ProductRepository interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Product, error)
	GetBySKU(ctx context.Context, sku string) (*domain.Product, error)
	SearchByNameOrSKU(ctx context.Context, term string) (*domain.Product, error)
	ListActive(ctx context.Context) ([]*domain.Product, error)
}

// PromotionRepository supplies the currently-active promotion catalog,
// already time-filtered and priority-ordered
type PromotionRepository interface {
	GetActive(ctx context.Context) ([]*domain.Promotion, error)
}

// DraftOrderRepository defines draft order and line data access methods
type DraftOrderRepository interface {
	Create(ctx context.Context, order *domain.DraftOrder) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.DraftOrder, error)
	GetOpenByCustomerID(ctx context.Context, customerID uuid.UUID) (*domain.DraftOrder, error)
	GetLines(ctx context.Context, orderID uuid.UUID) ([]*domain.DraftOrderLine, error)
	AddLine(ctx context.Context, line *domain.DraftOrderLine) error
	UpdateLineQuantity(ctx context.Context, lineID uuid.UUID, quantity int) error
	DeleteLine(ctx context.Context, lineID uuid.UUID) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.DraftOrderStatus) error
	// ApplyPricing persists a pricing result (per-line discounts plus order
	// totals and PRICED status) in a single transaction. Any failure rolls
	// the whole write-back back.
	ApplyPricing(ctx context.Context, orderID uuid.UUID, result *pricing.Result) error
}

// ConversationRepository defines conversation state and message persistence
type ConversationRepository interface {
	GetState(ctx context.Context, customerID uuid.UUID) (*domain.ConversationState, error)
	UpsertState(ctx context.Context, state *domain.ConversationState) error
	SaveMessage(ctx context.Context, message *domain.Message) error
}

// Repositories aggregates all repositories
type Repositories struct {
	Customer     CustomerRepository
	Product      ProductRepository
	Promotion    PromotionRepository
	DraftOrder   DraftOrderRepository
	Conversation ConversationRepository
}

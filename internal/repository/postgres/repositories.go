package postgres

import (
	"database/sql"

	"go.uber.org/zap"

	"github.com/tienditamx/orderbot/internal/repository"
)

// NewRepositories creates a new set of repositories
func NewRepositories(db *sql.DB, logger *zap.Logger) *repository.Repositories {
	return &repository.Repositories{
		Customer:     NewCustomerRepository(db, logger),
		Product:      NewProductRepository(db, logger),
		Promotion:    NewPromotionRepository(db, logger),
		DraftOrder:   NewDraftOrderRepository(db, logger),
		Conversation: NewConversationRepository(db, logger),
	}
}

package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tienditamx/orderbot/internal/domain"
	"github.com/tienditamx/orderbot/pkg/errors"
)

type customerRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(db *sql.DB, logger *zap.Logger) *customerRepository {
	return &customerRepository{
		db:     db,
		logger: logger,
	}
}

func (r *customerRepository) GetByPhone(ctx context.Context, phone string) (*domain.Customer, error) {
	query := `
		SELECT id, phone, name, greeting, is_active, created_at, updated_at
		FROM customers
		WHERE phone = $1
	`

	var customer domain.Customer
	var greeting sql.NullString

	err := r.db.QueryRowContext(ctx, query, phone).Scan(
		&customer.ID,
		&customer.Phone,
		&customer.Name,
		&greeting,
		&customer.IsActive,
		&customer.CreatedAt,
		&customer.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "customer", ID: phone}
	}
	if err != nil {
		r.logger.Error("Failed to get customer by phone", zap.Error(err))
		return nil, err
	}

	if greeting.Valid {
		customer.Greeting = &greeting.String
	}

	return &customer, nil
}

func (r *customerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	query := `
		SELECT id, phone, name, greeting, is_active, created_at, updated_at
		FROM customers
		WHERE id = $1
	`

	var customer domain.Customer
	var greeting sql.NullString

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&customer.ID,
		&customer.Phone,
		&customer.Name,
		&greeting,
		&customer.IsActive,
		&customer.CreatedAt,
		&customer.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "customer", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get customer by ID", zap.Error(err))
		return nil, err
	}

	if greeting.Valid {
		customer.Greeting = &greeting.String
	}

	return &customer, nil
}

func (r *customerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	query := `
		INSERT INTO customers (id, phone, name, greeting, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	now := time.Now()
	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}
	if customer.CreatedAt.IsZero() {
		customer.CreatedAt = now
	}
	if customer.UpdatedAt.IsZero() {
		customer.UpdatedAt = now
	}

	_, err := r.db.ExecContext(ctx, query,
		customer.ID,
		customer.Phone,
		customer.Name,
		customer.Greeting,
		customer.IsActive,
		customer.CreatedAt,
		customer.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to create customer", zap.Error(err))
		return err
	}

	return nil
}

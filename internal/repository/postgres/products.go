package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tienditamx/orderbot/internal/domain"
	"github.com/tienditamx/orderbot/pkg/errors"
)

type productRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *sql.DB, logger *zap.Logger) *productRepository {
	return &productRepository{
		db:     db,
		logger: logger,
	}
}

// GetByIDs is the bulk metadata lookup used by the cart materializer.
// Missing IDs are simply absent from the returned map.
func (r *productRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Product, error) {
	products := make(map[uuid.UUID]*domain.Product, len(ids))
	if len(ids) == 0 {
		return products, nil
	}

	query := `
		SELECT id, sku, name, category_id, line_id, unit_price, is_active, created_at, updated_at
		FROM products
		WHERE id = ANY($1)
	`

	idStrings := make([]string, len(ids))
	for i, id := range ids {
		idStrings[i] = id.String()
	}

	rows, err := r.db.QueryContext(ctx, query, pq.Array(idStrings))
	if err != nil {
		r.logger.Error("Failed to get products by IDs", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products[product.ID] = product
	}

	return products, rows.Err()
}

func (r *productRepository) GetBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	query := `
		SELECT id, sku, name, category_id, line_id, unit_price, is_active, created_at, updated_at
		FROM products
		WHERE sku = $1
	`

	row := r.db.QueryRowContext(ctx, query, sku)
	product, err := scanProductRow(row)
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "product", ID: sku}
	}
	if err != nil {
		r.logger.Error("Failed to get product by SKU", zap.Error(err), zap.String("sku", sku))
		return nil, err
	}

	return product, nil
}

// SearchByNameOrSKU finds the best single match for a free-text product
// reference coming out of intent entities
func (r *productRepository) SearchByNameOrSKU(ctx context.Context, term string) (*domain.Product, error) {
	query := `
		SELECT id, sku, name, category_id, line_id, unit_price, is_active, created_at, updated_at
		FROM products
		WHERE is_active = true AND (name ILIKE '%' || $1 || '%' OR sku ILIKE '%' || $1 || '%')
		ORDER BY name ASC
		LIMIT 1
	`

	row := r.db.QueryRowContext(ctx, query, term)
	product, err := scanProductRow(row)
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "product", ID: term}
	}
	if err != nil {
		r.logger.Error("Failed to search product", zap.Error(err), zap.String("term", term))
		return nil, err
	}

	return product, nil
}

func (r *productRepository) ListActive(ctx context.Context) ([]*domain.Product, error) {
	query := `
		SELECT id, sku, name, category_id, line_id, unit_price, is_active, created_at, updated_at
		FROM products
		WHERE is_active = true
		ORDER BY name ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list active products", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}

	return products, rows.Err()
}

func scanProduct(rows *sql.Rows) (*domain.Product, error) {
	var product domain.Product
	var unitPrice string

	err := rows.Scan(
		&product.ID,
		&product.SKU,
		&product.Name,
		&product.CategoryID,
		&product.LineID,
		&unitPrice,
		&product.IsActive,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	product.UnitPrice, err = decimal.NewFromString(unitPrice)
	if err != nil {
		return nil, err
	}

	return &product, nil
}

func scanProductRow(row *sql.Row) (*domain.Product, error) {
	var product domain.Product
	var unitPrice string

	err := row.Scan(
		&product.ID,
		&product.SKU,
		&product.Name,
		&product.CategoryID,
		&product.LineID,
		&unitPrice,
		&product.IsActive,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	product.UnitPrice, err = decimal.NewFromString(unitPrice)
	if err != nil {
		return nil, err
	}

	return &product, nil
}

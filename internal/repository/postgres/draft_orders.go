package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tienditamx/orderbot/internal/domain"
	"github.com/tienditamx/orderbot/internal/pricing"
	"github.com/tienditamx/orderbot/pkg/errors"
)

type draftOrderRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDraftOrderRepository creates a new draft order repository
func NewDraftOrderRepository(db *sql.DB, logger *zap.Logger) *draftOrderRepository {
	return &draftOrderRepository{
		db:     db,
		logger: logger,
	}
}

func (r *draftOrderRepository) Create(ctx context.Context, order *domain.DraftOrder) error {
	// Only one open draft order per customer. The early lookup gives a clean
	// error for the common case; the partial unique index on
	// draft_orders(customer_id) WHERE status IN ('OPEN', 'PRICED') makes the
	// invariant hold under concurrent creates.
	existing, err := r.GetOpenByCustomerID(ctx, order.CustomerID)
	if err != nil {
		if _, ok := err.(*errors.ErrNotFound); !ok {
			return err
		}
	}
	if existing != nil {
		return &errors.ErrConflict{Message: "customer already has an open draft order"}
	}

	query := `
		INSERT INTO draft_orders (id, customer_id, status, subtotal, discount_total, final_total, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	now := time.Now()
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.Status == "" {
		order.Status = domain.DraftOrderStatusOpen
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	if order.UpdatedAt.IsZero() {
		order.UpdatedAt = now
	}

	_, err = r.db.ExecContext(ctx, query,
		order.ID,
		order.CustomerID,
		order.Status,
		order.Subtotal.StringFixed(2),
		order.DiscountTotal.StringFixed(2),
		order.FinalTotal.StringFixed(2),
		order.CreatedAt,
		order.UpdatedAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			return &errors.ErrConflict{Message: "customer already has an open draft order"}
		}
		r.logger.Error("Failed to create draft order", zap.Error(err))
		return err
	}

	return nil
}

func (r *draftOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.DraftOrder, error) {
	query := `
		SELECT id, customer_id, status, subtotal, discount_total, final_total, created_at, updated_at
		FROM draft_orders
		WHERE id = $1
	`

	order, err := scanDraftOrder(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "draft_order", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get draft order by ID", zap.Error(err))
		return nil, err
	}

	return order, nil
}

func (r *draftOrderRepository) GetOpenByCustomerID(ctx context.Context, customerID uuid.UUID) (*domain.DraftOrder, error) {
	query := `
		SELECT id, customer_id, status, subtotal, discount_total, final_total, created_at, updated_at
		FROM draft_orders
		WHERE customer_id = $1 AND status IN ($2, $3)
		ORDER BY created_at DESC
		LIMIT 1
	`

	order, err := scanDraftOrder(r.db.QueryRowContext(ctx, query, customerID,
		domain.DraftOrderStatusOpen, domain.DraftOrderStatusPriced))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "draft_order", ID: customerID.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get open draft order", zap.Error(err))
		return nil, err
	}

	return order, nil
}

func (r *draftOrderRepository) GetLines(ctx context.Context, orderID uuid.UUID) ([]*domain.DraftOrderLine, error) {
	query := `
		SELECT id, draft_order_id, product_id, sku, quantity, unit_price,
			category_id, line_id, line_subtotal, discount_amount,
			applied_promotion_id, final_line_total, created_at, updated_at
		FROM draft_order_lines
		WHERE draft_order_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		r.logger.Error("Failed to get draft order lines", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var lines []*domain.DraftOrderLine
	for rows.Next() {
		line, err := scanDraftOrderLine(rows)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}

	return lines, rows.Err()
}

func (r *draftOrderRepository) AddLine(ctx context.Context, line *domain.DraftOrderLine) error {
	query := `
		INSERT INTO draft_order_lines (
			id, draft_order_id, product_id, sku, quantity, unit_price,
			category_id, line_id, line_subtotal, discount_amount,
			applied_promotion_id, final_line_total, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	now := time.Now()
	if line.ID == uuid.Nil {
		line.ID = uuid.New()
	}
	if line.CreatedAt.IsZero() {
		line.CreatedAt = now
	}
	if line.UpdatedAt.IsZero() {
		line.UpdatedAt = now
	}
	line.LineSubtotal = line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
	line.FinalLineTotal = line.LineSubtotal

	_, err := r.db.ExecContext(ctx, query,
		line.ID,
		line.DraftOrderID,
		line.ProductID,
		line.SKU,
		line.Quantity,
		line.UnitPrice.StringFixed(2),
		line.CategoryID,
		line.LineID,
		line.LineSubtotal.StringFixed(2),
		line.DiscountAmount.StringFixed(2),
		line.AppliedPromotionID,
		line.FinalLineTotal.StringFixed(2),
		line.CreatedAt,
		line.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to add draft order line", zap.Error(err))
		return err
	}

	return nil
}

func (r *draftOrderRepository) UpdateLineQuantity(ctx context.Context, lineID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return r.DeleteLine(ctx, lineID)
	}

	query := `
		UPDATE draft_order_lines
		SET quantity = $2,
			line_subtotal = unit_price * $2,
			final_line_total = unit_price * $2 - discount_amount,
			updated_at = $3
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, lineID, quantity, time.Now())
	if err != nil {
		r.logger.Error("Failed to update draft order line quantity", zap.Error(err))
		return err
	}

	return nil
}

func (r *draftOrderRepository) DeleteLine(ctx context.Context, lineID uuid.UUID) error {
	query := `DELETE FROM draft_order_lines WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query, lineID)
	if err != nil {
		r.logger.Error("Failed to delete draft order line", zap.Error(err))
		return err
	}

	return nil
}

func (r *draftOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.DraftOrderStatus) error {
	query := `
		UPDATE draft_orders
		SET status = $2, updated_at = $3
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, status, time.Now())
	if err != nil {
		r.logger.Error("Failed to update draft order status", zap.Error(err))
		return err
	}

	return nil
}

// ApplyPricing writes a pricing result back in one transaction: every line's
// discount fields plus the order totals and PRICED status. A failure at any
// point rolls the whole write-back back and surfaces as a retryable error,
// so totals can never reflect a different set of lines than what was written.
func (r *draftOrderRepository) ApplyPricing(ctx context.Context, orderID uuid.UUID, result *pricing.Result) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return &errors.ErrRetryable{Op: "pricing write-back", Err: err}
	}
	defer tx.Rollback()

	var status domain.DraftOrderStatus
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM draft_orders WHERE id = $1 FOR UPDATE`, orderID,
	).Scan(&status)
	if err == sql.ErrNoRows {
		return &errors.ErrNotFound{Resource: "draft_order", ID: orderID.String()}
	}
	if err != nil {
		return &errors.ErrRetryable{Op: "pricing write-back", Err: err}
	}
	if !status.IsPriceable() {
		return &errors.ErrInvalidStateTransition{From: status, To: domain.DraftOrderStatusPriced}
	}

	now := time.Now()

	lineQuery := `
		UPDATE draft_order_lines
		SET discount_amount = $2,
			applied_promotion_id = $3,
			line_subtotal = $4,
			final_line_total = $5,
			updated_at = $6
		WHERE id = $1
	`
	for _, line := range result.Lines {
		_, err := tx.ExecContext(ctx, lineQuery,
			line.LineID,
			line.DiscountAmount.StringFixed(2),
			line.AppliedPromotionID,
			line.LineSubtotal.StringFixed(2),
			line.FinalLineTotal.StringFixed(2),
			now,
		)
		if err != nil {
			r.logger.Error("Failed to write line pricing, rolling back",
				zap.Error(err),
				zap.String("line_id", line.LineID.String()),
			)
			return &errors.ErrRetryable{Op: "pricing write-back", Err: err}
		}
	}

	orderQuery := `
		UPDATE draft_orders
		SET subtotal = $2, discount_total = $3, final_total = $4,
			status = $5, updated_at = $6
		WHERE id = $1
	`
	_, err = tx.ExecContext(ctx, orderQuery,
		orderID,
		result.Subtotal.StringFixed(2),
		result.DiscountTotal.StringFixed(2),
		result.FinalTotal.StringFixed(2),
		domain.DraftOrderStatusPriced,
		now,
	)
	if err != nil {
		r.logger.Error("Failed to write order totals, rolling back", zap.Error(err))
		return &errors.ErrRetryable{Op: "pricing write-back", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return &errors.ErrRetryable{Op: "pricing write-back", Err: err}
	}

	return nil
}

func scanDraftOrder(row *sql.Row) (*domain.DraftOrder, error) {
	var order domain.DraftOrder
	var subtotal, discountTotal, finalTotal string

	err := row.Scan(
		&order.ID,
		&order.CustomerID,
		&order.Status,
		&subtotal,
		&discountTotal,
		&finalTotal,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if order.Subtotal, err = decimal.NewFromString(subtotal); err != nil {
		return nil, err
	}
	if order.DiscountTotal, err = decimal.NewFromString(discountTotal); err != nil {
		return nil, err
	}
	if order.FinalTotal, err = decimal.NewFromString(finalTotal); err != nil {
		return nil, err
	}

	return &order, nil
}

func scanDraftOrderLine(rows *sql.Rows) (*domain.DraftOrderLine, error) {
	var line domain.DraftOrderLine
	var unitPrice, lineSubtotal, discountAmount, finalLineTotal string
	var appliedPromotionID sql.NullString

	err := rows.Scan(
		&line.ID,
		&line.DraftOrderID,
		&line.ProductID,
		&line.SKU,
		&line.Quantity,
		&unitPrice,
		&line.CategoryID,
		&line.LineID,
		&lineSubtotal,
		&discountAmount,
		&appliedPromotionID,
		&finalLineTotal,
		&line.CreatedAt,
		&line.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if line.UnitPrice, err = decimal.NewFromString(unitPrice); err != nil {
		return nil, err
	}
	if line.LineSubtotal, err = decimal.NewFromString(lineSubtotal); err != nil {
		return nil, err
	}
	if line.DiscountAmount, err = decimal.NewFromString(discountAmount); err != nil {
		return nil, err
	}
	if line.FinalLineTotal, err = decimal.NewFromString(finalLineTotal); err != nil {
		return nil, err
	}
	if appliedPromotionID.Valid {
		id, err := uuid.Parse(appliedPromotionID.String)
		if err != nil {
			return nil, err
		}
		line.AppliedPromotionID = &id
	}

	return &line, nil
}

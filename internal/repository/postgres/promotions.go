package postgres

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tienditamx/orderbot/internal/domain"
)

type promotionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPromotionRepository creates a new promotion repository
func NewPromotionRepository(db *sql.DB, logger *zap.Logger) *promotionRepository {
	return &promotionRepository{
		db:     db,
		logger: logger,
	}
}

// GetActive returns the currently-active promotion catalog, priority-ordered.
// A promotion whose rule or reward fails to decode is skipped with a warning
// so one malformed row never aborts a pricing pass.
func (r *promotionRepository) GetActive(ctx context.Context) ([]*domain.Promotion, error) {
	query := `
		SELECT id, name, promotion_type, is_active, priority_weight,
			rules, reward, max_discount_cap, start_date, end_date,
			created_at, updated_at
		FROM promotions
		WHERE is_active = true
			AND (start_date IS NULL OR start_date <= NOW())
			AND (end_date IS NULL OR end_date >= NOW())
		ORDER BY priority_weight DESC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to get active promotions", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var promotions []*domain.Promotion
	for rows.Next() {
		var promo domain.Promotion
		var promoType string
		var rulesJSON, rewardJSON []byte
		var maxDiscountCap sql.NullString
		var startDate sql.NullTime
		var endDate sql.NullTime

		err := rows.Scan(
			&promo.ID,
			&promo.Name,
			&promoType,
			&promo.IsActive,
			&promo.PriorityWeight,
			&rulesJSON,
			&rewardJSON,
			&maxDiscountCap,
			&startDate,
			&endDate,
			&promo.CreatedAt,
			&promo.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		promo.Type = domain.PromotionType(promoType)
		if startDate.Valid {
			start := startDate.Time
			promo.StartDate = &start
		}
		if endDate.Valid {
			end := endDate.Time
			promo.EndDate = &end
		}
		if maxDiscountCap.Valid {
			cap, err := decimal.NewFromString(maxDiscountCap.String)
			if err != nil {
				r.logger.Warn("Skipping promotion with malformed discount cap",
					zap.String("promotion_id", promo.ID.String()),
					zap.String("cap", maxDiscountCap.String),
				)
				continue
			}
			promo.MaxDiscountCap = &cap
		}

		promo.Rule, err = domain.DecodeRule(promo.Type, rulesJSON)
		if err != nil {
			r.logger.Warn("Skipping promotion with malformed rule",
				zap.String("promotion_id", promo.ID.String()),
				zap.String("name", promo.Name),
				zap.Error(err),
			)
			continue
		}

		promo.Reward, err = domain.DecodeReward(rewardJSON)
		if err != nil {
			r.logger.Warn("Skipping promotion with malformed reward",
				zap.String("promotion_id", promo.ID.String()),
				zap.String("name", promo.Name),
				zap.Error(err),
			)
			continue
		}

		promotions = append(promotions, &promo)
	}

	return promotions, rows.Err()
}

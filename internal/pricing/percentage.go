package pricing

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tienditamx/orderbot/internal/domain"
)

// evaluatePercentage applies a percentage-off-scope (or fixed-off-scope)
// promotion. The discount is pooled over the matching subtotal, capped, then
// attributed proportionally to each matching line's share so the per-line
// discount never exceeds the line subtotal.
func evaluatePercentage(promo *domain.Promotion, rule domain.PercentageRule, lines []Line) evaluation {
	var matched []Line
	scopeSubtotal := decimal.Zero
	for _, line := range lines {
		if matchesScope(line, rule) {
			matched = append(matched, line)
			scopeSubtotal = scopeSubtotal.Add(line.Subtotal())
		}
	}

	if len(matched) == 0 {
		return evaluation{
			perLine: map[uuid.UUID]decimal.Decimal{},
			upsell: &UpsellHint{
				PromotionID: promo.ID,
				Message:     percentageUpsellMessage(promo),
			},
		}
	}

	pool := capTotal(promo, rewardAmount(promo.Reward, scopeSubtotal)).Round(2)
	return evaluation{perLine: distribute(pool, matched)}
}

func percentageUpsellMessage(promo *domain.Promotion) string {
	if promo.Reward.Type == domain.RewardTypeFixed {
		return fmt.Sprintf("Add a qualifying product to unlock $%s off with %s", promo.Reward.Value.StringFixed(2), promo.Name)
	}
	return fmt.Sprintf("Add a qualifying product to unlock %s%% off with %s", promo.Reward.Value.String(), promo.Name)
}

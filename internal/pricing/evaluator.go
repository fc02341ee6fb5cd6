package pricing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tienditamx/orderbot/internal/domain"
)

var oneHundred = decimal.NewFromInt(100)

// UpsellHint suggests what the customer should add to unlock a promotion
type UpsellHint struct {
	PromotionID uuid.UUID
	Message     string
}

// evaluation is the output of running one promotion against the enriched
// cart: a discount per line (possibly empty) and at most one upsell hint.
// Evaluators are pure; they never mutate the cart.
type evaluation struct {
	perLine map[uuid.UUID]decimal.Decimal
	upsell  *UpsellHint
}

func emptyEvaluation() evaluation {
	return evaluation{perLine: map[uuid.UUID]decimal.Decimal{}}
}

// evaluate dispatches on the promotion's rule variant. An unknown variant
// matches nothing.
func evaluate(promo *domain.Promotion, lines []Line) evaluation {
	switch rule := promo.Rule.(type) {
	case domain.PercentageRule:
		return evaluatePercentage(promo, rule, lines)
	case domain.BuyXGetYRule:
		return evaluateBuyXGetY(promo, rule, lines)
	case domain.BundleRule:
		return evaluateBundle(promo, rule, lines)
	default:
		return emptyEvaluation()
	}
}

// rewardAmount computes the reward applied to a matched subtotal: a
// percentage of it, or a fixed amount clamped so it never exceeds it.
func rewardAmount(reward domain.Reward, matchedSubtotal decimal.Decimal) decimal.Decimal {
	switch reward.Type {
	case domain.RewardTypePercentage:
		return matchedSubtotal.Mul(reward.Value).Div(oneHundred)
	case domain.RewardTypeFixed:
		if reward.Value.GreaterThan(matchedSubtotal) {
			return matchedSubtotal
		}
		return reward.Value
	default:
		return decimal.Zero
	}
}

// capTotal clamps a pooled discount to the promotion's max cap, if set
func capTotal(promo *domain.Promotion, total decimal.Decimal) decimal.Decimal {
	if promo.MaxDiscountCap != nil && total.GreaterThan(*promo.MaxDiscountCap) {
		return *promo.MaxDiscountCap
	}
	return total
}

// distribute splits a pooled discount across the matched lines proportionally
// to each line's share of the matched subtotal, rounding to 2 decimal places
// per line. The rounding remainder lands on the last line so the per-line
// amounts sum exactly to the pool. Each share is clamped to its line subtotal.
func distribute(pool decimal.Decimal, matched []Line) map[uuid.UUID]decimal.Decimal {
	perLine := make(map[uuid.UUID]decimal.Decimal, len(matched))
	if pool.LessThanOrEqual(decimal.Zero) || len(matched) == 0 {
		return perLine
	}

	total := decimal.Zero
	for _, line := range matched {
		total = total.Add(line.Subtotal())
	}
	if total.LessThanOrEqual(decimal.Zero) {
		return perLine
	}

	allocated := decimal.Zero
	for i, line := range matched {
		var share decimal.Decimal
		if i == len(matched)-1 {
			share = pool.Sub(allocated)
		} else {
			share = pool.Mul(line.Subtotal()).Div(total).Round(2)
		}
		if share.GreaterThan(line.Subtotal()) {
			share = line.Subtotal()
		}
		if share.LessThanOrEqual(decimal.Zero) {
			continue
		}
		perLine[line.ID] = share
		allocated = allocated.Add(share)
	}
	return perLine
}

package pricing

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tienditamx/orderbot/internal/domain"
)

// pricedUnit is one physical unit of an eligible line
type pricedUnit struct {
	lineID    uuid.UUID
	unitPrice decimal.Decimal
}

// evaluateBuyXGetY expands eligible lines into individual units, sorts them
// cheapest first, and applies the reward to the cheapest reward units. The
// cheapest-first policy maximizes the customer's discount on the reward
// portion and is preserved from the production behavior.
func evaluateBuyXGetY(promo *domain.Promotion, rule domain.BuyXGetYRule, lines []Line) evaluation {
	var units []pricedUnit
	for _, line := range lines {
		if !line.Eligible || !containsString(rule.ProductSKUs, line.SKU) {
			continue
		}
		for i := 0; i < line.Quantity; i++ {
			units = append(units, pricedUnit{lineID: line.ID, unitPrice: line.UnitPrice})
		}
	}

	totalUnits := len(units)
	required := rule.BuyQuantity + rule.RewardQuantity

	if totalUnits < rule.BuyQuantity {
		return evaluation{
			perLine: map[uuid.UUID]decimal.Decimal{},
			upsell: &UpsellHint{
				PromotionID: promo.ID,
				Message: fmt.Sprintf("Add %d more eligible product(s) to qualify for %s",
					rule.BuyQuantity-totalUnits, promo.Name),
			},
		}
	}
	if totalUnits < required {
		return evaluation{
			perLine: map[uuid.UUID]decimal.Decimal{},
			upsell: &UpsellHint{
				PromotionID: promo.ID,
				Message: fmt.Sprintf("You're %d product(s) away from your reward with %s",
					required-totalUnits, promo.Name),
			},
		}
	}

	timesApplicable := totalUnits / required
	rewardUnits := timesApplicable * rule.RewardQuantity
	if rewardUnits > totalUnits {
		rewardUnits = totalUnits
	}

	sort.SliceStable(units, func(i, j int) bool {
		return units[i].unitPrice.LessThan(units[j].unitPrice)
	})

	// Per-line sums in unit order, kept ordered so capping is deterministic
	var order []uuid.UUID
	perLine := make(map[uuid.UUID]decimal.Decimal)
	total := decimal.Zero
	for _, unit := range units[:rewardUnits] {
		discount := unitDiscount(promo.Reward, unit.unitPrice)
		if discount.LessThanOrEqual(decimal.Zero) {
			continue
		}
		if _, seen := perLine[unit.lineID]; !seen {
			order = append(order, unit.lineID)
		}
		perLine[unit.lineID] = perLine[unit.lineID].Add(discount)
		total = total.Add(discount)
	}

	// Clamp to the promotion cap by taking the overflow back from the most
	// recently discounted lines
	if promo.MaxDiscountCap != nil && total.GreaterThan(*promo.MaxDiscountCap) {
		overflow := total.Sub(*promo.MaxDiscountCap)
		for i := len(order) - 1; i >= 0 && overflow.GreaterThan(decimal.Zero); i-- {
			id := order[i]
			take := perLine[id]
			if take.GreaterThan(overflow) {
				take = overflow
			}
			remaining := perLine[id].Sub(take)
			if remaining.LessThanOrEqual(decimal.Zero) {
				delete(perLine, id)
			} else {
				perLine[id] = remaining
			}
			overflow = overflow.Sub(take)
		}
	}

	return evaluation{perLine: perLine}
}

// unitDiscount is the reward applied to a single unit price, rounded to
// cents: a percentage of the unit price, or a fixed amount clamped to it
func unitDiscount(reward domain.Reward, unitPrice decimal.Decimal) decimal.Decimal {
	switch reward.Type {
	case domain.RewardTypePercentage:
		return unitPrice.Mul(reward.Value).Div(oneHundred).Round(2)
	case domain.RewardTypeFixed:
		if reward.Value.GreaterThan(unitPrice) {
			return unitPrice
		}
		return reward.Value
	default:
		return decimal.Zero
	}
}

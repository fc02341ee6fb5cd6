package pricing

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tienditamx/orderbot/internal/domain"
)

// Allocation is the winning discount for one cart line after combination
type Allocation struct {
	PromotionID uuid.UUID
	Amount      decimal.Decimal
}

// promotionResult pairs a promotion with its evaluator output
type promotionResult struct {
	promo *domain.Promotion
	eval  evaluation
}

// sortPromotions orders promotions by priority weight descending, stable on
// promotion ID ascending so evaluation order is deterministic
func sortPromotions(promos []*domain.Promotion) []*domain.Promotion {
	sorted := make([]*domain.Promotion, len(promos))
	copy(sorted, promos)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].PriorityWeight != sorted[j].PriorityWeight {
			return sorted[i].PriorityWeight > sorted[j].PriorityWeight
		}
		return sorted[i].ID.String() < sorted[j].ID.String()
	})
	return sorted
}

// combine resolves competing promotions with the best-of policy: each line
// keeps only the highest-value discount among the promotions that touched
// it. Ties keep the earlier promotion in evaluation order, which is the
// higher priority weight and then the lower promotion ID. Every discount is
// clamped so it never exceeds the line subtotal.
func combine(lines []Line, results []promotionResult) map[uuid.UUID]Allocation {
	best := make(map[uuid.UUID]Allocation)

	subtotals := make(map[uuid.UUID]decimal.Decimal, len(lines))
	for _, line := range lines {
		subtotals[line.ID] = line.Subtotal()
	}

	for _, result := range results {
		for lineID, amount := range result.eval.perLine {
			lineSubtotal, ok := subtotals[lineID]
			if !ok {
				continue
			}
			if amount.GreaterThan(lineSubtotal) {
				amount = lineSubtotal
			}
			if amount.LessThanOrEqual(decimal.Zero) {
				continue
			}
			current, exists := best[lineID]
			if !exists || amount.GreaterThan(current.Amount) {
				best[lineID] = Allocation{
					PromotionID: result.promo.ID,
					Amount:      amount,
				}
			}
		}
	}

	return best
}

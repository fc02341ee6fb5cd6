package pricing

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tienditamx/orderbot/internal/domain"
)

// evaluateBundle applies a trigger/reward promotion: when at least one
// trigger product is in the cart, the reward applies to all reward-eligible
// lines. The trigger, not the reward, gates hint emission: no trigger means
// no discount and no hint.
func evaluateBundle(promo *domain.Promotion, rule domain.BundleRule, lines []Line) evaluation {
	hasTrigger := false
	for _, line := range lines {
		if line.Eligible && containsString(rule.TriggerSKUs, line.SKU) {
			hasTrigger = true
			break
		}
	}
	if !hasTrigger {
		return emptyEvaluation()
	}

	var matched []Line
	rewardSubtotal := decimal.Zero
	for _, line := range lines {
		if line.Eligible && containsString(rule.RewardSKUs, line.SKU) {
			matched = append(matched, line)
			rewardSubtotal = rewardSubtotal.Add(line.Subtotal())
		}
	}

	if len(matched) == 0 {
		return evaluation{
			perLine: map[uuid.UUID]decimal.Decimal{},
			upsell: &UpsellHint{
				PromotionID: promo.ID,
				Message:     bundleUpsellMessage(promo, rule),
			},
		}
	}

	pool := capTotal(promo, rewardAmount(promo.Reward, rewardSubtotal)).Round(2)
	return evaluation{perLine: distribute(pool, matched)}
}

func bundleUpsellMessage(promo *domain.Promotion, rule domain.BundleRule) string {
	what := rule.RewardCategoryName
	if what == "" {
		what = "a complementary product"
	}
	return fmt.Sprintf("Add %s to your order and get a discount with %s", what, promo.Name)
}

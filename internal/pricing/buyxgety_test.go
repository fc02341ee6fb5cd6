package pricing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tienditamx/orderbot/internal/domain"
)

func buyXGetYPromo(buy, reward int, rewardValue int64, rewardType domain.RewardType) *domain.Promotion {
	return &domain.Promotion{
		ID:       uuid.New(),
		Name:     "test bxgy",
		Type:     domain.PromotionTypeBuyXGetY,
		IsActive: true,
		Rule: domain.BuyXGetYRule{
			ProductSKUs:    []string{"SKU-B", "SKU-C"},
			BuyQuantity:    buy,
			RewardQuantity: reward,
		},
		Reward: domain.Reward{Type: rewardType, Value: decimal.NewFromInt(rewardValue)},
	}
}

func TestEvaluateBuyXGetYCheapestUnitsFirst(t *testing.T) {
	cheap := testLine("SKU-B", 2, "5", "cat-pan", "pan-dulce")
	expensive := testLine("SKU-C", 2, "20", "cat-pan", "pan-dulce")

	// 4 units, buy 2 get 1: one reward unit, taken from the cheapest line
	promo := buyXGetYPromo(2, 1, 100, domain.RewardTypePercentage)
	eval := evaluateBuyXGetY(promo, promo.Rule.(domain.BuyXGetYRule), []Line{expensive, cheap})

	require.Len(t, eval.perLine, 1)
	assert.Equal(t, "5.00", eval.perLine[cheap.ID].StringFixed(2))
	assert.Nil(t, eval.upsell)
}

func TestEvaluateBuyXGetYTimesApplicable(t *testing.T) {
	tests := []struct {
		name     string
		quantity int
		buy      int
		reward   int
		want     string
	}{
		{"one full group", 3, 2, 1, "10.00"},
		{"two full groups", 6, 2, 1, "20.00"},
		{"leftover units ignored", 8, 2, 1, "20.00"},
		{"larger group", 10, 4, 1, "20.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := testLine("SKU-B", tt.quantity, "10", "cat-pan", "pan-dulce")
			promo := buyXGetYPromo(tt.buy, tt.reward, 100, domain.RewardTypePercentage)
			eval := evaluateBuyXGetY(promo, promo.Rule.(domain.BuyXGetYRule), []Line{line})
			assert.Equal(t, tt.want, eval.perLine[line.ID].StringFixed(2))
		})
	}
}

func TestEvaluateBuyXGetYUpsellHints(t *testing.T) {
	promo := buyXGetYPromo(3, 1, 100, domain.RewardTypePercentage)
	rule := promo.Rule.(domain.BuyXGetYRule)

	// below buy quantity
	line := testLine("SKU-B", 1, "10", "cat-pan", "pan-dulce")
	eval := evaluateBuyXGetY(promo, rule, []Line{line})
	assert.Empty(t, eval.perLine)
	require.NotNil(t, eval.upsell)
	assert.Contains(t, eval.upsell.Message, "Add 2 more")

	// enough to buy but not enough for the reward unit
	line = testLine("SKU-B", 3, "10", "cat-pan", "pan-dulce")
	eval = evaluateBuyXGetY(promo, rule, []Line{line})
	assert.Empty(t, eval.perLine)
	require.NotNil(t, eval.upsell)
	assert.Contains(t, eval.upsell.Message, "1 product(s) away")
}

func TestEvaluateBuyXGetYIgnoresIneligibleLines(t *testing.T) {
	orphan := testLine("SKU-B", 6, "10", "", "")
	orphan.Eligible = false

	promo := buyXGetYPromo(2, 1, 100, domain.RewardTypePercentage)
	eval := evaluateBuyXGetY(promo, promo.Rule.(domain.BuyXGetYRule), []Line{orphan})

	assert.Empty(t, eval.perLine)
	require.NotNil(t, eval.upsell)
}

func TestEvaluateBuyXGetYCapReducesLatestLines(t *testing.T) {
	cheap := testLine("SKU-B", 3, "4", "cat-pan", "pan-dulce")
	mid := testLine("SKU-C", 3, "6", "cat-pan", "pan-dulce")

	// 6 units, buy 1 get 1: 3 reward units at 100% = 4+4+4 off before the cap
	// takes the overflow back
	cap := decimal.NewFromInt(7)
	promo := buyXGetYPromo(1, 1, 100, domain.RewardTypePercentage)
	promo.MaxDiscountCap = &cap

	eval := evaluateBuyXGetY(promo, promo.Rule.(domain.BuyXGetYRule), []Line{cheap, mid})

	total := decimal.Zero
	for _, amount := range eval.perLine {
		total = total.Add(amount)
	}
	assert.Equal(t, "7.00", total.StringFixed(2))
}

func TestUnitDiscount(t *testing.T) {
	tests := []struct {
		name   string
		reward domain.Reward
		price  string
		want   string
	}{
		{"percentage", domain.Reward{Type: domain.RewardTypePercentage, Value: decimal.NewFromInt(50)}, "10", "5.00"},
		{"percentage rounds", domain.Reward{Type: domain.RewardTypePercentage, Value: decimal.NewFromInt(33)}, "9.99", "3.30"},
		{"fixed", domain.Reward{Type: domain.RewardTypeFixed, Value: decimal.NewFromInt(3)}, "10", "3.00"},
		{"fixed clamped to unit price", domain.Reward{Type: domain.RewardTypeFixed, Value: decimal.NewFromInt(50)}, "10", "10.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := unitDiscount(tt.reward, decimal.RequireFromString(tt.price))
			assert.Equal(t, tt.want, got.StringFixed(2))
		})
	}
}

package pricing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tienditamx/orderbot/internal/domain"
)

func TestSortPromotionsPriorityThenID(t *testing.T) {
	low := &domain.Promotion{ID: uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000000"), PriorityWeight: 1}
	highA := &domain.Promotion{ID: uuid.MustParse("bbbbbbbb-0000-0000-0000-000000000000"), PriorityWeight: 10}
	highB := &domain.Promotion{ID: uuid.MustParse("cccccccc-0000-0000-0000-000000000000"), PriorityWeight: 10}

	sorted := sortPromotions([]*domain.Promotion{low, highB, highA})

	require.Len(t, sorted, 3)
	assert.Equal(t, highA.ID, sorted[0].ID)
	assert.Equal(t, highB.ID, sorted[1].ID)
	assert.Equal(t, low.ID, sorted[2].ID)
}

func TestSortPromotionsDoesNotMutateInput(t *testing.T) {
	first := &domain.Promotion{ID: uuid.New(), PriorityWeight: 1}
	second := &domain.Promotion{ID: uuid.New(), PriorityWeight: 10}
	input := []*domain.Promotion{first, second}

	sortPromotions(input)

	assert.Equal(t, first.ID, input[0].ID)
	assert.Equal(t, second.ID, input[1].ID)
}

func TestCombineBestOfPerLine(t *testing.T) {
	line := testLine("SKU-A", 1, "100", "cat-x", "x")

	weak := &domain.Promotion{ID: uuid.New(), Name: "weak"}
	strong := &domain.Promotion{ID: uuid.New(), Name: "strong"}

	best := combine([]Line{line}, []promotionResult{
		{promo: weak, eval: evaluation{perLine: map[uuid.UUID]decimal.Decimal{line.ID: decimal.NewFromInt(5)}}},
		{promo: strong, eval: evaluation{perLine: map[uuid.UUID]decimal.Decimal{line.ID: decimal.NewFromInt(8)}}},
	})

	require.Contains(t, best, line.ID)
	assert.Equal(t, strong.ID, best[line.ID].PromotionID)
	assert.Equal(t, "8.00", best[line.ID].Amount.StringFixed(2))
}

func TestCombineTieKeepsEarlierPromotion(t *testing.T) {
	line := testLine("SKU-A", 1, "100", "cat-x", "x")

	first := &domain.Promotion{ID: uuid.New(), Name: "first"}
	second := &domain.Promotion{ID: uuid.New(), Name: "second"}
	amount := decimal.NewFromInt(5)

	best := combine([]Line{line}, []promotionResult{
		{promo: first, eval: evaluation{perLine: map[uuid.UUID]decimal.Decimal{line.ID: amount}}},
		{promo: second, eval: evaluation{perLine: map[uuid.UUID]decimal.Decimal{line.ID: amount}}},
	})

	assert.Equal(t, first.ID, best[line.ID].PromotionID)
}

func TestCombineClampsToLineSubtotal(t *testing.T) {
	line := testLine("SKU-A", 1, "10", "cat-x", "x")

	promo := &domain.Promotion{ID: uuid.New(), Name: "oversized"}
	best := combine([]Line{line}, []promotionResult{
		{promo: promo, eval: evaluation{perLine: map[uuid.UUID]decimal.Decimal{line.ID: decimal.NewFromInt(25)}}},
	})

	assert.Equal(t, "10.00", best[line.ID].Amount.StringFixed(2))
}

func TestCombineIgnoresUnknownLinesAndZeroAmounts(t *testing.T) {
	line := testLine("SKU-A", 1, "10", "cat-x", "x")

	promo := &domain.Promotion{ID: uuid.New(), Name: "noise"}
	best := combine([]Line{line}, []promotionResult{
		{promo: promo, eval: evaluation{perLine: map[uuid.UUID]decimal.Decimal{
			uuid.New(): decimal.NewFromInt(5), // not in the cart
			line.ID:    decimal.Zero,
		}}},
	})

	assert.Empty(t, best)
}

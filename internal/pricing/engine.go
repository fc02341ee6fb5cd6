package pricing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tienditamx/orderbot/internal/domain"
)

// AppliedPromotion reports one promotion that contributed to the final price
type AppliedPromotion struct {
	PromotionID uuid.UUID
	Name        string
	Discount    decimal.Decimal
}

// LineResult is the per-line write-back record
type LineResult struct {
	LineID             uuid.UUID
	LineSubtotal       decimal.Decimal
	DiscountAmount     decimal.Decimal
	AppliedPromotionID *uuid.UUID
	FinalLineTotal     decimal.Decimal
}

// Result is the outcome of one pricing pass. Amounts are rounded to 2
// decimal places here, at the reporting edge; all intermediate math is
// exact decimal arithmetic.
type Result struct {
	Subtotal      decimal.Decimal
	DiscountTotal decimal.Decimal
	FinalTotal    decimal.Decimal
	Lines         []LineResult
	Applied       []AppliedPromotion
	Upsell        []UpsellHint
}

// Engine evaluates a promotion catalog against an enriched cart. It holds no
// mutable state and is safe for concurrent use across draft orders.
type Engine struct {
	logger *zap.Logger
}

// NewEngine creates a pricing engine
func NewEngine(logger *zap.Logger) *Engine {
	return &Engine{logger: logger}
}

// Price runs the full pass: evaluate every active promotion, combine with
// the best-of policy, and aggregate totals and upsell hints. It never
// mutates its inputs and returns identical output for identical input.
func (e *Engine) Price(lines []Line, promotions []*domain.Promotion, now time.Time) *Result {
	result := &Result{
		Subtotal:      decimal.Zero,
		DiscountTotal: decimal.Zero,
		FinalTotal:    decimal.Zero,
	}

	if len(lines) == 0 {
		return result
	}

	sorted := sortPromotions(promotions)

	results := make([]promotionResult, 0, len(sorted))
	for _, promo := range sorted {
		if !promo.ActiveAt(now) {
			continue
		}
		if promo.Rule == nil {
			e.logger.Warn("Skipping promotion without a decoded rule",
				zap.String("promotion_id", promo.ID.String()),
				zap.String("name", promo.Name),
			)
			continue
		}
		results = append(results, promotionResult{promo: promo, eval: evaluate(promo, lines)})
	}

	best := combine(lines, results)

	// Per-line write-back records in cart order; subtotal includes lines
	// without product metadata
	appliedTotals := make(map[uuid.UUID]decimal.Decimal)
	subtotal := decimal.Zero
	discountTotal := decimal.Zero
	for _, line := range lines {
		lineSubtotal := line.Subtotal()
		subtotal = subtotal.Add(lineSubtotal)

		lineResult := LineResult{
			LineID:         line.ID,
			LineSubtotal:   lineSubtotal.Round(2),
			DiscountAmount: decimal.Zero,
			FinalLineTotal: lineSubtotal.Round(2),
		}
		if alloc, ok := best[line.ID]; ok {
			promoID := alloc.PromotionID
			lineResult.DiscountAmount = alloc.Amount.Round(2)
			lineResult.AppliedPromotionID = &promoID
			lineResult.FinalLineTotal = lineSubtotal.Sub(alloc.Amount).Round(2)
			discountTotal = discountTotal.Add(alloc.Amount)
			appliedTotals[promoID] = appliedTotals[promoID].Add(alloc.Amount)
		}
		result.Lines = append(result.Lines, lineResult)
	}

	result.Subtotal = subtotal.Round(2)
	result.DiscountTotal = discountTotal.Round(2)
	result.FinalTotal = subtotal.Sub(discountTotal).Round(2)

	// Applied promotions and deduplicated upsell hints, in priority order
	seenHints := make(map[uuid.UUID]bool)
	for _, pr := range results {
		if total, ok := appliedTotals[pr.promo.ID]; ok {
			result.Applied = append(result.Applied, AppliedPromotion{
				PromotionID: pr.promo.ID,
				Name:        pr.promo.Name,
				Discount:    total.Round(2),
			})
		}
		if pr.eval.upsell != nil && !seenHints[pr.promo.ID] {
			seenHints[pr.promo.ID] = true
			result.Upsell = append(result.Upsell, *pr.eval.upsell)
		}
	}

	return result
}

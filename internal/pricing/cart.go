package pricing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tienditamx/orderbot/internal/domain"
)

// Line is a self-contained cart line enriched with the product metadata the
// scope matcher needs. Eligible is false when metadata was missing at
// materialization time: the line still counts toward the subtotal but is
// never matched by a promotion.
type Line struct {
	ID            uuid.UUID
	ProductID     uuid.UUID
	SKU           string
	Quantity      int
	UnitPrice     decimal.Decimal
	CategoryID    string
	ProductLineID string
	Eligible      bool
}

// Subtotal is quantity x unit price, exact
func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Materialize joins raw draft order lines with bulk product metadata. A line
// whose product is missing from the lookup is kept (fail-soft) but flagged
// ineligible; an empty cart produces an empty slice, not an error.
func Materialize(lines []*domain.DraftOrderLine, products map[uuid.UUID]*domain.Product, logger *zap.Logger) []Line {
	enriched := make([]Line, 0, len(lines))
	for _, raw := range lines {
		line := Line{
			ID:        raw.ID,
			ProductID: raw.ProductID,
			SKU:       raw.SKU,
			Quantity:  raw.Quantity,
			UnitPrice: raw.UnitPrice,
		}

		product, ok := products[raw.ProductID]
		if !ok {
			logger.Warn("Product metadata missing for cart line, excluding from promotion matching",
				zap.String("line_id", raw.ID.String()),
				zap.String("product_id", raw.ProductID.String()),
				zap.String("sku", raw.SKU),
			)
			enriched = append(enriched, line)
			continue
		}

		line.CategoryID = product.CategoryID
		line.ProductLineID = product.LineID
		line.Eligible = true
		enriched = append(enriched, line)
	}
	return enriched
}

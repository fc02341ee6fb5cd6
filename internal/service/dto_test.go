package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tienditamx/orderbot/internal/pricing"
)

func TestParseOrderItems(t *testing.T) {
	entities := map[string]interface{}{
		"products": []interface{}{
			map[string]interface{}{"product": "coca cola", "quantity": float64(3)},
			map[string]interface{}{"name": "pan blanco"},
			map[string]interface{}{"sku": "SKU-A", "quantity": "2"},
			map[string]interface{}{"quantity": float64(5)}, // no reference, dropped
			"not an object",
		},
	}

	items := parseOrderItems(entities)

	require.Len(t, items, 3)
	assert.Equal(t, OrderItemRequest{ProductRef: "coca cola", Quantity: 3}, items[0])
	assert.Equal(t, OrderItemRequest{ProductRef: "pan blanco", Quantity: 1}, items[1])
	assert.Equal(t, OrderItemRequest{ProductRef: "SKU-A", Quantity: 2}, items[2])
}

func TestParseOrderItemsBadShapes(t *testing.T) {
	assert.Nil(t, parseOrderItems(map[string]interface{}{}))
	assert.Nil(t, parseOrderItems(map[string]interface{}{"products": "coca"}))
	assert.Empty(t, parseOrderItems(map[string]interface{}{"products": []interface{}{}}))
}

func TestParseOrderItemsInvalidQuantityDefaultsToOne(t *testing.T) {
	entities := map[string]interface{}{
		"products": []interface{}{
			map[string]interface{}{"product": "leche", "quantity": float64(0)},
			map[string]interface{}{"product": "cafe", "quantity": "muchos"},
		},
	}

	items := parseOrderItems(entities)

	require.Len(t, items, 2)
	assert.Equal(t, 1, items[0].Quantity)
	assert.Equal(t, 1, items[1].Quantity)
}

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Café  con   Leche", "cafe con leche"},
		{"JAMÓN", "jamon"},
		{"  azúcar ", "azucar"},
		{"pan", "pan"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeText(tt.in))
	}
}

func TestRenderPricingSummary(t *testing.T) {
	result := &pricing.Result{
		Subtotal:      decimal.RequireFromString("100.00"),
		DiscountTotal: decimal.RequireFromString("20.00"),
		FinalTotal:    decimal.RequireFromString("80.00"),
		Applied: []pricing.AppliedPromotion{
			{Name: "20% bebidas", Discount: decimal.RequireFromString("20.00")},
		},
		Upsell: []pricing.UpsellHint{
			{Message: "Add pan dulce to your order"},
		},
	}

	summary := renderPricingSummary(result)

	assert.Contains(t, summary, "Subtotal: $100.00")
	assert.Contains(t, summary, "Descuentos: -$20.00")
	assert.Contains(t, summary, "20% bebidas")
	assert.Contains(t, summary, "Total: $80.00")
	assert.Contains(t, summary, "Add pan dulce")
	assert.Contains(t, summary, "¿Confirmamos tu pedido?")
}

func TestRenderPricingSummaryNoDiscounts(t *testing.T) {
	result := &pricing.Result{
		Subtotal:      decimal.RequireFromString("50.00"),
		DiscountTotal: decimal.Zero,
		FinalTotal:    decimal.RequireFromString("50.00"),
	}

	summary := renderPricingSummary(result)

	assert.NotContains(t, summary, "Descuentos")
	assert.Contains(t, summary, "Total: $50.00")
}

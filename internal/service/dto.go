package service

import (
	"fmt"
	"strings"

	"github.com/tienditamx/orderbot/internal/pricing"
)

// OrderItemRequest is one product reference extracted from intent entities
type OrderItemRequest struct {
	ProductRef string
	Quantity   int
}

// parseOrderItems reads the loosely-typed `products` entity the classifier
// extracts: a list of objects with a product reference and a quantity.
// Anything unreadable is dropped; quantity defaults to 1.
func parseOrderItems(entities map[string]interface{}) []OrderItemRequest {
	raw, ok := entities["products"].([]interface{})
	if !ok {
		return nil
	}

	var items []OrderItemRequest
	for _, entry := range raw {
		m, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}

		ref, _ := m["product"].(string)
		if ref == "" {
			ref, _ = m["name"].(string)
		}
		if ref == "" {
			ref, _ = m["sku"].(string)
		}
		if ref == "" {
			continue
		}

		quantity := 1
		switch q := m["quantity"].(type) {
		case float64:
			if q >= 1 {
				quantity = int(q)
			}
		case string:
			var parsed int
			if _, err := fmt.Sscanf(q, "%d", &parsed); err == nil && parsed >= 1 {
				quantity = parsed
			}
		}

		items = append(items, OrderItemRequest{ProductRef: strings.TrimSpace(ref), Quantity: quantity})
	}
	return items
}

var accentReplacer = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ü", "u",
	"Á", "a", "É", "e", "Í", "i", "Ó", "o", "Ú", "u", "Ü", "u",
)

// normalizeText lowercases, folds Spanish accents, and collapses whitespace
// so free-text product references match catalog names
func normalizeText(text string) string {
	text = accentReplacer.Replace(strings.ToLower(text))
	return strings.Join(strings.Fields(text), " ")
}

// renderPricingSummary composes the WhatsApp reply for a priced draft order
func renderPricingSummary(result *pricing.Result) string {
	var sb strings.Builder
	sb.WriteString("¡Listo! Este es tu pedido:\n")
	sb.WriteString(fmt.Sprintf("Subtotal: $%s\n", result.Subtotal.StringFixed(2)))

	if result.DiscountTotal.IsPositive() {
		sb.WriteString(fmt.Sprintf("Descuentos: -$%s\n", result.DiscountTotal.StringFixed(2)))
		for _, applied := range result.Applied {
			sb.WriteString(fmt.Sprintf("  • %s: -$%s\n", applied.Name, applied.Discount.StringFixed(2)))
		}
	}

	sb.WriteString(fmt.Sprintf("Total: $%s", result.FinalTotal.StringFixed(2)))

	for _, hint := range result.Upsell {
		sb.WriteString(fmt.Sprintf("\n💡 %s", hint.Message))
	}

	sb.WriteString("\n¿Confirmamos tu pedido?")
	return sb.String()
}

package pricing

import (
	"github.com/tienditamx/orderbot/internal/domain"
)

// matchesScope reports whether a line is eligible for a percentage rule's
// scope. An unrecognized scope kind matches nothing.
func matchesScope(line Line, rule domain.PercentageRule) bool {
	if !line.Eligible {
		return false
	}

	switch rule.Scope {
	case domain.ScopeKindProduct:
		return containsString(rule.ProductSKUs, line.SKU)
	case domain.ScopeKindCategory:
		return containsString(rule.CategoryIDs, line.CategoryID)
	case domain.ScopeKindLine:
		return containsString(rule.LineIDs, line.ProductLineID)
	default:
		return false
	}
}

func containsString(set []string, value string) bool {
	for _, s := range set {
		if s == value {
			return true
		}
	}
	return false
}

package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRulePercentage(t *testing.T) {
	raw := []byte(`{"scope":"category","category_ids":["cat-pan","cat-bebidas"]}`)

	rule, err := DecodeRule(PromotionTypePercentage, raw)

	require.NoError(t, err)
	pct, ok := rule.(PercentageRule)
	require.True(t, ok)
	assert.Equal(t, ScopeKindCategory, pct.Scope)
	assert.Equal(t, []string{"cat-pan", "cat-bebidas"}, pct.ScopeValues())
}

func TestDecodeRuleBuyXGetY(t *testing.T) {
	raw := []byte(`{"product_skus":["SKU-B"],"buy_quantity":2,"reward_quantity":1}`)

	rule, err := DecodeRule(PromotionTypeBuyXGetY, raw)

	require.NoError(t, err)
	bxgy, ok := rule.(BuyXGetYRule)
	require.True(t, ok)
	assert.Equal(t, 2, bxgy.BuyQuantity)
	assert.Equal(t, 1, bxgy.RewardQuantity)
}

func TestDecodeRuleBundle(t *testing.T) {
	raw := []byte(`{"trigger_products":["SKU-CAFE"],"reward_products":["SKU-PAN"],"reward_category_name":"pan dulce"}`)

	rule, err := DecodeRule(PromotionTypeBundle, raw)

	require.NoError(t, err)
	bundle, ok := rule.(BundleRule)
	require.True(t, ok)
	assert.Equal(t, []string{"SKU-CAFE"}, bundle.TriggerSKUs)
	assert.Equal(t, "pan dulce", bundle.RewardCategoryName)
}

func TestDecodeRuleRejectsMalformed(t *testing.T) {
	tests := []struct {
		name      string
		promoType PromotionType
		raw       string
	}{
		{"invalid json", PromotionTypePercentage, `{`},
		{"unknown scope", PromotionTypePercentage, `{"scope":"brand","product_skus":["SKU-A"]}`},
		{"empty scope set", PromotionTypePercentage, `{"scope":"product"}`},
		{"bxgy empty skus", PromotionTypeBuyXGetY, `{"buy_quantity":2,"reward_quantity":1}`},
		{"bxgy zero quantity", PromotionTypeBuyXGetY, `{"product_skus":["SKU-B"],"buy_quantity":0,"reward_quantity":1}`},
		{"bundle missing reward", PromotionTypeBundle, `{"trigger_products":["SKU-CAFE"]}`},
		{"unknown promotion type", PromotionType("loyalty"), `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRule(tt.promoType, []byte(tt.raw))
			assert.Error(t, err)
		})
	}
}

func TestDecodeReward(t *testing.T) {
	reward, err := DecodeReward([]byte(`{"type":"percentage","value":20}`))
	require.NoError(t, err)
	assert.Equal(t, RewardTypePercentage, reward.Type)
	assert.True(t, reward.Value.Equal(decimal.NewFromInt(20)))

	tests := []struct {
		name string
		raw  string
	}{
		{"percentage over 100", `{"type":"percentage","value":150}`},
		{"percentage zero", `{"type":"percentage","value":0}`},
		{"fixed negative", `{"type":"fixed","value":-5}`},
		{"unknown type", `{"type":"points","value":10}`},
		{"invalid json", `nope`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeReward([]byte(tt.raw))
			assert.Error(t, err)
		})
	}
}

func TestPromotionActiveAt(t *testing.T) {
	now := time.Now()
	yesterday := now.Add(-24 * time.Hour)
	tomorrow := now.Add(24 * time.Hour)

	tests := []struct {
		name  string
		promo Promotion
		want  bool
	}{
		{"active no window", Promotion{IsActive: true}, true},
		{"inactive", Promotion{IsActive: false}, false},
		{"inside window", Promotion{IsActive: true, StartDate: &yesterday, EndDate: &tomorrow}, true},
		{"not started", Promotion{IsActive: true, StartDate: &tomorrow}, false},
		{"already ended", Promotion{IsActive: true, EndDate: &yesterday}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.promo.ActiveAt(now))
		})
	}
}

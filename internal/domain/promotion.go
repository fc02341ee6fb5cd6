package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PromotionType tags the rule variant of a promotion
type PromotionType string

const (
	PromotionTypePercentage PromotionType = "percentage"
	PromotionTypeBuyXGetY   PromotionType = "buy_x_get_y"
	PromotionTypeBundle     PromotionType = "bundle"
)

// ScopeKind selects how a rule matches cart lines
type ScopeKind string

const (
	ScopeKindProduct  ScopeKind = "product"
	ScopeKindCategory ScopeKind = "category"
	ScopeKindLine     ScopeKind = "line"
)

// RewardType is the discount shape attached to a promotion
type RewardType string

const (
	RewardTypePercentage RewardType = "percentage"
	RewardTypeFixed      RewardType = "fixed"
)

// Promotion is a read-only pricing input. Rule and Reward are decoded from
// JSONB and validated at load time; a promotion that fails validation is
// skipped by the loader, never evaluated.
type Promotion struct {
	ID             uuid.UUID
	Name           string
	Type           PromotionType
	IsActive       bool
	PriorityWeight int // higher evaluated first
	Rule           PromotionRule
	Reward         Reward
	MaxDiscountCap *decimal.Decimal
	StartDate      *time.Time
	EndDate        *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PromotionRule is the tagged rule variant. Exactly one concrete type exists
// per PromotionType.
type PromotionRule interface {
	Kind() PromotionType
}

// PercentageRule matches lines by scope and discounts their subtotal
type PercentageRule struct {
	Scope       ScopeKind `json:"scope"`
	ProductSKUs []string  `json:"product_skus,omitempty"`
	CategoryIDs []string  `json:"category_ids,omitempty"`
	LineIDs     []string  `json:"line_ids,omitempty"`
}

func (PercentageRule) Kind() PromotionType { return PromotionTypePercentage }

// ScopeValues returns the identifier set the rule's scope kind matches against
func (r PercentageRule) ScopeValues() []string {
	switch r.Scope {
	case ScopeKindProduct:
		return r.ProductSKUs
	case ScopeKindCategory:
		return r.CategoryIDs
	case ScopeKindLine:
		return r.LineIDs
	default:
		return nil
	}
}

// BuyXGetYRule discounts reward units once buy_quantity eligible units are in the cart
type BuyXGetYRule struct {
	ProductSKUs    []string `json:"product_skus"`
	BuyQuantity    int      `json:"buy_quantity"`
	RewardQuantity int      `json:"reward_quantity"`
}

func (BuyXGetYRule) Kind() PromotionType { return PromotionTypeBuyXGetY }

// BundleRule applies the reward to reward products when a trigger product is present
type BundleRule struct {
	TriggerSKUs        []string `json:"trigger_products"`
	RewardSKUs         []string `json:"reward_products"`
	RewardCategoryName string   `json:"reward_category_name,omitempty"` // named in the upsell hint
}

func (BundleRule) Kind() PromotionType { return PromotionTypeBundle }

// Reward is the discount shape: a percentage of the matched amount or a fixed amount
type Reward struct {
	Type  RewardType      `json:"type"`
	Value decimal.Decimal `json:"value"`
}

// Validate checks the reward encoding
func (r Reward) Validate() error {
	switch r.Type {
	case RewardTypePercentage:
		if r.Value.LessThanOrEqual(decimal.Zero) || r.Value.GreaterThan(decimal.NewFromInt(100)) {
			return fmt.Errorf("percentage reward value must be in (0, 100], got %s", r.Value)
		}
	case RewardTypeFixed:
		if r.Value.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("fixed reward value must be positive, got %s", r.Value)
		}
	default:
		return fmt.Errorf("unknown reward type %q", r.Type)
	}
	return nil
}

// DecodeRule parses and validates the JSONB rules column for a promotion type.
// A malformed encoding is a recoverable error: the caller skips the promotion
// and continues.
func DecodeRule(promoType PromotionType, raw []byte) (PromotionRule, error) {
	switch promoType {
	case PromotionTypePercentage:
		var rule PercentageRule
		if err := json.Unmarshal(raw, &rule); err != nil {
			return nil, fmt.Errorf("percentage rule: %w", err)
		}
		switch rule.Scope {
		case ScopeKindProduct, ScopeKindCategory, ScopeKindLine:
		default:
			return nil, fmt.Errorf("percentage rule: unknown scope %q", rule.Scope)
		}
		if len(rule.ScopeValues()) == 0 {
			return nil, fmt.Errorf("percentage rule: empty %s set", rule.Scope)
		}
		return rule, nil

	case PromotionTypeBuyXGetY:
		var rule BuyXGetYRule
		if err := json.Unmarshal(raw, &rule); err != nil {
			return nil, fmt.Errorf("buy_x_get_y rule: %w", err)
		}
		if len(rule.ProductSKUs) == 0 {
			return nil, fmt.Errorf("buy_x_get_y rule: empty product_skus")
		}
		if rule.BuyQuantity < 1 || rule.RewardQuantity < 1 {
			return nil, fmt.Errorf("buy_x_get_y rule: quantities must be >= 1, got buy=%d reward=%d",
				rule.BuyQuantity, rule.RewardQuantity)
		}
		return rule, nil

	case PromotionTypeBundle:
		var rule BundleRule
		if err := json.Unmarshal(raw, &rule); err != nil {
			return nil, fmt.Errorf("bundle rule: %w", err)
		}
		if len(rule.TriggerSKUs) == 0 || len(rule.RewardSKUs) == 0 {
			return nil, fmt.Errorf("bundle rule: trigger_products and reward_products must be non-empty")
		}
		return rule, nil

	default:
		return nil, fmt.Errorf("unknown promotion type %q", promoType)
	}
}

// DecodeReward parses and validates the JSONB reward column
func DecodeReward(raw []byte) (Reward, error) {
	var reward Reward
	if err := json.Unmarshal(raw, &reward); err != nil {
		return Reward{}, fmt.Errorf("reward: %w", err)
	}
	if err := reward.Validate(); err != nil {
		return Reward{}, err
	}
	return reward, nil
}

// ActiveAt reports whether the promotion's validity window covers t. The
// loader already filters on is_active; this guards the optional window.
func (p *Promotion) ActiveAt(t time.Time) bool {
	if !p.IsActive {
		return false
	}
	if p.StartDate != nil && t.Before(*p.StartDate) {
		return false
	}
	if p.EndDate != nil && t.After(*p.EndDate) {
		return false
	}
	return true
}

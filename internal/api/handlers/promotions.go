package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tienditamx/orderbot/internal/repository"
)

// PromotionResponse is the admin view of one active promotion
type PromotionResponse struct {
	ID             string  `json:"promotion_id"`
	Name           string  `json:"name"`
	Type           string  `json:"promotion_type"`
	PriorityWeight int     `json:"priority_weight"`
	RewardType     string  `json:"reward_type"`
	RewardValue    string  `json:"reward_value"`
	MaxDiscountCap *string `json:"max_discount_cap"`
}

// HandleListPromotions returns the active promotion catalog as the pricing
// engine will see it (malformed promotions are already filtered out)
func HandleListPromotions(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		promotions, err := repos.Promotion.GetActive(c.Request.Context())
		if err != nil {
			respondError(c, err, logger)
			return
		}

		resp := make([]PromotionResponse, 0, len(promotions))
		for _, promo := range promotions {
			entry := PromotionResponse{
				ID:             promo.ID.String(),
				Name:           promo.Name,
				Type:           string(promo.Type),
				PriorityWeight: promo.PriorityWeight,
				RewardType:     string(promo.Reward.Type),
				RewardValue:    promo.Reward.Value.String(),
			}
			if promo.MaxDiscountCap != nil {
				cap := promo.MaxDiscountCap.StringFixed(2)
				entry.MaxDiscountCap = &cap
			}
			resp = append(resp, entry)
		}

		c.JSON(http.StatusOK, gin.H{"promotions": resp})
	}
}

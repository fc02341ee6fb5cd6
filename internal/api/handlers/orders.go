package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tienditamx/orderbot/internal/pricing"
	"github.com/tienditamx/orderbot/internal/repository"
	"github.com/tienditamx/orderbot/internal/service"
	"github.com/tienditamx/orderbot/pkg/errors"
)

// OrderResponse is the draft order payload returned by the API
type OrderResponse struct {
	ID            string              `json:"id"`
	CustomerID    string              `json:"customer_id"`
	Status        string              `json:"status"`
	Subtotal      string              `json:"subtotal"`
	DiscountTotal string              `json:"discount_total"`
	FinalTotal    string              `json:"final_total"`
	Lines         []OrderLineResponse `json:"lines"`
}

type OrderLineResponse struct {
	ID                 string  `json:"line_id"`
	SKU                string  `json:"sku"`
	Quantity           int     `json:"quantity"`
	UnitPrice          string  `json:"unit_price"`
	LineSubtotal       string  `json:"line_subtotal"`
	DiscountAmount     string  `json:"discount_amount"`
	AppliedPromotionID *string `json:"applied_promotion_id"`
	FinalLineTotal     string  `json:"final_line_total"`
}

// PricingResponse mirrors the engine's result shape
type PricingResponse struct {
	Subtotal      string                     `json:"subtotal"`
	DiscountTotal string                     `json:"discount_total"`
	FinalTotal    string                     `json:"final_total"`
	Applied       []AppliedPromotionResponse `json:"applied"`
	Upsell        []UpsellResponse           `json:"upsell"`
}

type AppliedPromotionResponse struct {
	PromotionID string `json:"promotion_id"`
	Name        string `json:"name"`
	Discount    string `json:"discount"`
}

type UpsellResponse struct {
	PromotionID string `json:"promotion_id"`
	Message     string `json:"message"`
}

// HandleGetOrder returns a draft order with its lines
func HandleGetOrder(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order ID"})
			return
		}

		order, err := repos.DraftOrder.GetByID(c.Request.Context(), orderID)
		if err != nil {
			respondError(c, err, logger)
			return
		}
		lines, err := repos.DraftOrder.GetLines(c.Request.Context(), orderID)
		if err != nil {
			respondError(c, err, logger)
			return
		}

		resp := OrderResponse{
			ID:            order.ID.String(),
			CustomerID:    order.CustomerID.String(),
			Status:        string(order.Status),
			Subtotal:      order.Subtotal.StringFixed(2),
			DiscountTotal: order.DiscountTotal.StringFixed(2),
			FinalTotal:    order.FinalTotal.StringFixed(2),
			Lines:         make([]OrderLineResponse, 0, len(lines)),
		}
		for _, line := range lines {
			lineResp := OrderLineResponse{
				ID:             line.ID.String(),
				SKU:            line.SKU,
				Quantity:       line.Quantity,
				UnitPrice:      line.UnitPrice.StringFixed(2),
				LineSubtotal:   line.LineSubtotal.StringFixed(2),
				DiscountAmount: line.DiscountAmount.StringFixed(2),
				FinalLineTotal: line.FinalLineTotal.StringFixed(2),
			}
			if line.AppliedPromotionID != nil {
				id := line.AppliedPromotionID.String()
				lineResp.AppliedPromotionID = &id
			}
			resp.Lines = append(resp.Lines, lineResp)
		}

		c.JSON(http.StatusOK, resp)
	}
}

// HandlePriceOrder runs a pricing pass against a draft order
func HandlePriceOrder(pricingSvc *service.PricingService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order ID"})
			return
		}

		result, err := pricingSvc.PriceDraftOrder(c.Request.Context(), orderID)
		if err != nil {
			respondError(c, err, logger)
			return
		}

		c.JSON(http.StatusOK, toPricingResponse(result))
	}
}

// HandleConfirmOrder converts a priced draft order
func HandleConfirmOrder(orders *service.OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order ID"})
			return
		}

		if err := orders.Confirm(c.Request.Context(), orderID); err != nil {
			respondError(c, err, logger)
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "CONVERTED"})
	}
}

// HandleCancelOrder cancels a draft order
func HandleCancelOrder(orders *service.OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order ID"})
			return
		}

		if err := orders.Cancel(c.Request.Context(), orderID); err != nil {
			respondError(c, err, logger)
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "CANCELLED"})
	}
}

func toPricingResponse(result *pricing.Result) PricingResponse {
	resp := PricingResponse{
		Subtotal:      result.Subtotal.StringFixed(2),
		DiscountTotal: result.DiscountTotal.StringFixed(2),
		FinalTotal:    result.FinalTotal.StringFixed(2),
		Applied:       make([]AppliedPromotionResponse, 0, len(result.Applied)),
		Upsell:        make([]UpsellResponse, 0, len(result.Upsell)),
	}
	for _, applied := range result.Applied {
		resp.Applied = append(resp.Applied, AppliedPromotionResponse{
			PromotionID: applied.PromotionID.String(),
			Name:        applied.Name,
			Discount:    applied.Discount.StringFixed(2),
		})
	}
	for _, hint := range result.Upsell {
		resp.Upsell = append(resp.Upsell, UpsellResponse{
			PromotionID: hint.PromotionID.String(),
			Message:     hint.Message,
		})
	}
	return resp
}

func respondError(c *gin.Context, err error, logger *zap.Logger) {
	switch e := err.(type) {
	case *errors.ErrNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": e.Error()})
	case *errors.ErrValidation:
		c.JSON(http.StatusBadRequest, gin.H{"error": e.Error(), "fields": e.Fields})
	case *errors.ErrConflict:
		c.JSON(http.StatusConflict, gin.H{"error": e.Error()})
	case *errors.ErrInvalidStateTransition:
		c.JSON(http.StatusConflict, gin.H{"error": e.Error()})
	case *errors.ErrRetryable:
		logger.Error("Retryable failure", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": e.Error(), "retryable": true})
	default:
		logger.Error("Unhandled error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tienditamx/orderbot/internal/domain"
	"github.com/tienditamx/orderbot/internal/pricing"
	"github.com/tienditamx/orderbot/internal/repository"
	"github.com/tienditamx/orderbot/pkg/errors"
)

// PricingService runs the read-modify-price-write sequence for a draft
// order. The engine itself is pure; this service owns the per-order lock and
// the transactional write-back around it.
type PricingService struct {
	repos  *repository.Repositories
	engine *pricing.Engine
	locks  *keyedLocks
	logger *zap.Logger
}

// NewPricingService creates a new pricing service
func NewPricingService(repos *repository.Repositories, logger *zap.Logger) *PricingService {
	return &PricingService{
		repos:  repos,
		engine: pricing.NewEngine(logger),
		locks:  newKeyedLocks(),
		logger: logger,
	}
}

// PriceDraftOrder prices one draft order end to end: load lines, join
// product metadata, evaluate the active promotion catalog, and persist the
// result atomically. Concurrent calls for the same order are serialized;
// calls for different orders run independently.
func (s *PricingService) PriceDraftOrder(ctx context.Context, orderID uuid.UUID) (*pricing.Result, error) {
	unlock := s.locks.Lock(orderID)
	defer unlock()

	order, err := s.repos.DraftOrder.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.Status.IsPriceable() {
		return nil, &errors.ErrInvalidStateTransition{
			From: order.Status,
			To:   domain.DraftOrderStatusPriced,
		}
	}

	rawLines, err := s.repos.DraftOrder.GetLines(ctx, orderID)
	if err != nil {
		return nil, err
	}

	productIDs := make([]uuid.UUID, 0, len(rawLines))
	for _, line := range rawLines {
		productIDs = append(productIDs, line.ProductID)
	}
	products, err := s.repos.Product.GetByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}

	promotions, err := s.repos.Promotion.GetActive(ctx)
	if err != nil {
		return nil, err
	}

	lines := pricing.Materialize(rawLines, products, s.logger)
	result := s.engine.Price(lines, promotions, time.Now())

	if err := s.repos.DraftOrder.ApplyPricing(ctx, orderID, result); err != nil {
		return nil, err
	}

	s.logger.Info("Priced draft order",
		zap.String("order_id", orderID.String()),
		zap.String("subtotal", result.Subtotal.String()),
		zap.String("discount_total", result.DiscountTotal.String()),
		zap.String("final_total", result.FinalTotal.String()),
		zap.Int("applied_promotions", len(result.Applied)),
	)

	return result, nil
}

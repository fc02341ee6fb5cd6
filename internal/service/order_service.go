package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tienditamx/orderbot/internal/domain"
	"github.com/tienditamx/orderbot/internal/repository"
	"github.com/tienditamx/orderbot/pkg/errors"
)

// OrderService owns the draft order lifecycle: open, mutate lines, confirm,
// cancel. Pricing is the PricingService's job. Cart mutation is serialized
// per customer so duplicate webhook deliveries cannot interleave the
// read-modify-write sequence and lose quantity updates.
type OrderService struct {
	repos  *repository.Repositories
	locks  *keyedLocks
	logger *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(repos *repository.Repositories, logger *zap.Logger) *OrderService {
	return &OrderService{
		repos:  repos,
		locks:  newKeyedLocks(),
		logger: logger,
	}
}

// GetOrCreateOpenOrder returns the customer's open draft order, creating one
// if none exists. The repository enforces the one-open-order invariant.
func (s *OrderService) GetOrCreateOpenOrder(ctx context.Context, customerID uuid.UUID) (*domain.DraftOrder, error) {
	unlock := s.locks.Lock(customerID)
	defer unlock()

	return s.getOrCreateOpenOrder(ctx, customerID)
}

// getOrCreateOpenOrder is the unlocked body; callers hold the customer lock.
func (s *OrderService) getOrCreateOpenOrder(ctx context.Context, customerID uuid.UUID) (*domain.DraftOrder, error) {
	order, err := s.repos.DraftOrder.GetOpenByCustomerID(ctx, customerID)
	if err == nil {
		return order, nil
	}
	if _, ok := err.(*errors.ErrNotFound); !ok {
		return nil, err
	}

	order = &domain.DraftOrder{
		CustomerID:    customerID,
		Status:        domain.DraftOrderStatusOpen,
		Subtotal:      decimal.Zero,
		DiscountTotal: decimal.Zero,
		FinalTotal:    decimal.Zero,
	}
	if err := s.repos.DraftOrder.Create(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("Opened draft order",
		zap.String("order_id", order.ID.String()),
		zap.String("customer_id", customerID.String()),
	)
	return order, nil
}

// AddItem adds quantity units of a product (by SKU or free-text name) to the
// customer's open draft order. Category and product-line identifiers are
// copied from the product so later catalog edits don't change this cart.
func (s *OrderService) AddItem(ctx context.Context, customerID uuid.UUID, productRef string, quantity int) (*domain.DraftOrderLine, error) {
	if quantity <= 0 {
		return nil, &errors.ErrValidation{Message: "quantity must be positive"}
	}

	product, err := s.repos.Product.GetBySKU(ctx, productRef)
	if err != nil {
		if _, ok := err.(*errors.ErrNotFound); !ok {
			return nil, err
		}
		product, err = s.repos.Product.SearchByNameOrSKU(ctx, productRef)
		if err != nil {
			return nil, err
		}
	}

	unlock := s.locks.Lock(customerID)
	defer unlock()

	order, err := s.getOrCreateOpenOrder(ctx, customerID)
	if err != nil {
		return nil, err
	}

	lines, err := s.repos.DraftOrder.GetLines(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	for _, line := range lines {
		if line.ProductID == product.ID {
			if err := s.repos.DraftOrder.UpdateLineQuantity(ctx, line.ID, line.Quantity+quantity); err != nil {
				return nil, err
			}
			line.Quantity += quantity
			return line, nil
		}
	}

	line := &domain.DraftOrderLine{
		DraftOrderID:   order.ID,
		ProductID:      product.ID,
		SKU:            product.SKU,
		Quantity:       quantity,
		UnitPrice:      product.UnitPrice,
		CategoryID:     product.CategoryID,
		LineID:         product.LineID,
		DiscountAmount: decimal.Zero,
	}
	if err := s.repos.DraftOrder.AddLine(ctx, line); err != nil {
		return nil, err
	}

	return line, nil
}

// RemoveItem removes quantity units of a product from the open draft order.
// The line is deleted when its quantity reaches zero.
func (s *OrderService) RemoveItem(ctx context.Context, customerID uuid.UUID, sku string, quantity int) error {
	unlock := s.locks.Lock(customerID)
	defer unlock()

	order, err := s.repos.DraftOrder.GetOpenByCustomerID(ctx, customerID)
	if err != nil {
		return err
	}

	lines, err := s.repos.DraftOrder.GetLines(ctx, order.ID)
	if err != nil {
		return err
	}
	for _, line := range lines {
		if line.SKU == sku {
			remaining := line.Quantity - quantity
			if remaining <= 0 {
				return s.repos.DraftOrder.DeleteLine(ctx, line.ID)
			}
			return s.repos.DraftOrder.UpdateLineQuantity(ctx, line.ID, remaining)
		}
	}

	return &errors.ErrNotFound{Resource: "draft_order_line", ID: sku}
}

// Confirm converts a priced draft order into a confirmed order
func (s *OrderService) Confirm(ctx context.Context, orderID uuid.UUID) error {
	order, err := s.repos.DraftOrder.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if !order.Status.CanTransitionTo(domain.DraftOrderStatusConverted) {
		return &errors.ErrInvalidStateTransition{From: order.Status, To: domain.DraftOrderStatusConverted}
	}

	if err := s.repos.DraftOrder.UpdateStatus(ctx, orderID, domain.DraftOrderStatusConverted); err != nil {
		return err
	}

	s.logger.Info("Draft order converted", zap.String("order_id", orderID.String()))
	return nil
}

// Cancel cancels an open or priced draft order
func (s *OrderService) Cancel(ctx context.Context, orderID uuid.UUID) error {
	order, err := s.repos.DraftOrder.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if !order.Status.CanTransitionTo(domain.DraftOrderStatusCancelled) {
		return &errors.ErrInvalidStateTransition{From: order.Status, To: domain.DraftOrderStatusCancelled}
	}

	if err := s.repos.DraftOrder.UpdateStatus(ctx, orderID, domain.DraftOrderStatusCancelled); err != nil {
		return err
	}

	s.logger.Info("Draft order cancelled", zap.String("order_id", orderID.String()))
	return nil
}

package service

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/tienditamx/orderbot/internal/ai"
	"github.com/tienditamx/orderbot/internal/domain"
	"github.com/tienditamx/orderbot/internal/pricing"
	"github.com/tienditamx/orderbot/internal/repository"
	"github.com/tienditamx/orderbot/pkg/errors"
)

type fakeCustomerRepo struct {
	byPhone map[string]*domain.Customer
}

func (f *fakeCustomerRepo) GetByPhone(_ context.Context, phone string) (*domain.Customer, error) {
	if c, ok := f.byPhone[phone]; ok {
		return c, nil
	}
	return nil, &errors.ErrNotFound{Resource: "customer", ID: phone}
}

func (f *fakeCustomerRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Customer, error) {
	for _, c := range f.byPhone {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "customer", ID: id.String()}
}

func (f *fakeCustomerRepo) Create(_ context.Context, customer *domain.Customer) error {
	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}
	f.byPhone[customer.Phone] = customer
	return nil
}

type fakeProductRepo struct {
	products []*domain.Product
}

func (f *fakeProductRepo) GetByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Product, error) {
	result := make(map[uuid.UUID]*domain.Product)
	for _, id := range ids {
		for _, p := range f.products {
			if p.ID == id {
				result[id] = p
			}
		}
	}
	return result, nil
}

func (f *fakeProductRepo) GetBySKU(_ context.Context, sku string) (*domain.Product, error) {
	for _, p := range f.products {
		if p.SKU == sku {
			return p, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "product", ID: sku}
}

func (f *fakeProductRepo) SearchByNameOrSKU(_ context.Context, term string) (*domain.Product, error) {
	needle := normalizeText(term)
	for _, p := range f.products {
		if p.SKU == term || strings.Contains(normalizeText(p.Name), needle) {
			return p, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "product", ID: term}
}

func (f *fakeProductRepo) ListActive(_ context.Context) ([]*domain.Product, error) {
	return f.products, nil
}

type fakePromotionRepo struct {
	promotions []*domain.Promotion
	err        error
}

func (f *fakePromotionRepo) GetActive(_ context.Context) ([]*domain.Promotion, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.promotions, nil
}

type fakeDraftOrderRepo struct {
	mu         sync.Mutex
	orders     map[uuid.UUID]*domain.DraftOrder
	lines      map[uuid.UUID][]*domain.DraftOrderLine
	applyCalls int
	applyErr   error
}

func newFakeDraftOrderRepo() *fakeDraftOrderRepo {
	return &fakeDraftOrderRepo{
		orders: make(map[uuid.UUID]*domain.DraftOrder),
		lines:  make(map[uuid.UUID][]*domain.DraftOrderLine),
	}
}

func (f *fakeDraftOrderRepo) Create(_ context.Context, order *domain.DraftOrder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.orders {
		if existing.CustomerID == order.CustomerID && existing.Status == domain.DraftOrderStatusOpen {
			return &errors.ErrConflict{Message: "customer already has an open draft order"}
		}
	}
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	f.orders[order.ID] = order
	return nil
}

func (f *fakeDraftOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.DraftOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if order, ok := f.orders[id]; ok {
		return order, nil
	}
	return nil, &errors.ErrNotFound{Resource: "draft_order", ID: id.String()}
}

func (f *fakeDraftOrderRepo) GetOpenByCustomerID(_ context.Context, customerID uuid.UUID) (*domain.DraftOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, order := range f.orders {
		if order.CustomerID == customerID && order.Status.IsPriceable() {
			return order, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "draft_order", ID: customerID.String()}
}

func (f *fakeDraftOrderRepo) GetLines(_ context.Context, orderID uuid.UUID) ([]*domain.DraftOrderLine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	// Return copies of the line structs so callers cannot alias the store,
	// matching the SQL repository's contract of scanning fresh structs.
	lines := make([]*domain.DraftOrderLine, 0, len(f.lines[orderID]))
	for _, line := range f.lines[orderID] {
		copied := *line
		lines = append(lines, &copied)
	}
	return lines, nil
}

func (f *fakeDraftOrderRepo) AddLine(_ context.Context, line *domain.DraftOrderLine) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if line.ID == uuid.Nil {
		line.ID = uuid.New()
	}
	f.lines[line.DraftOrderID] = append(f.lines[line.DraftOrderID], line)
	return nil
}

func (f *fakeDraftOrderRepo) UpdateLineQuantity(_ context.Context, lineID uuid.UUID, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, lines := range f.lines {
		for _, line := range lines {
			if line.ID == lineID {
				line.Quantity = quantity
				return nil
			}
		}
	}
	return &errors.ErrNotFound{Resource: "draft_order_line", ID: lineID.String()}
}

func (f *fakeDraftOrderRepo) DeleteLine(_ context.Context, lineID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for orderID, lines := range f.lines {
		for i, line := range lines {
			if line.ID == lineID {
				f.lines[orderID] = append(lines[:i], lines[i+1:]...)
				return nil
			}
		}
	}
	return &errors.ErrNotFound{Resource: "draft_order_line", ID: lineID.String()}
}

func (f *fakeDraftOrderRepo) UpdateStatus(_ context.Context, id uuid.UUID, status domain.DraftOrderStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[id]
	if !ok {
		return &errors.ErrNotFound{Resource: "draft_order", ID: id.String()}
	}
	order.Status = status
	return nil
}

func (f *fakeDraftOrderRepo) ApplyPricing(_ context.Context, orderID uuid.UUID, result *pricing.Result) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applyCalls++
	if f.applyErr != nil {
		return f.applyErr
	}
	order, ok := f.orders[orderID]
	if !ok {
		return &errors.ErrNotFound{Resource: "draft_order", ID: orderID.String()}
	}
	order.Subtotal = result.Subtotal
	order.DiscountTotal = result.DiscountTotal
	order.FinalTotal = result.FinalTotal
	order.Status = domain.DraftOrderStatusPriced
	for _, lr := range result.Lines {
		for _, line := range f.lines[orderID] {
			if line.ID == lr.LineID {
				line.DiscountAmount = lr.DiscountAmount
				line.AppliedPromotionID = lr.AppliedPromotionID
				line.FinalLineTotal = lr.FinalLineTotal
			}
		}
	}
	return nil
}

type fakeConversationRepo struct {
	mu       sync.Mutex
	states   map[uuid.UUID]*domain.ConversationState
	messages []*domain.Message
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{states: make(map[uuid.UUID]*domain.ConversationState)}
}

func (f *fakeConversationRepo) GetState(_ context.Context, customerID uuid.UUID) (*domain.ConversationState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if state, ok := f.states[customerID]; ok {
		return state, nil
	}
	return nil, &errors.ErrNotFound{Resource: "conversation_state", ID: customerID.String()}
}

func (f *fakeConversationRepo) UpsertState(_ context.Context, state *domain.ConversationState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states[state.CustomerID] = state
	return nil
}

func (f *fakeConversationRepo) SaveMessage(_ context.Context, message *domain.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, message)
	return nil
}

type fakeClassifier struct {
	result *ai.IntentResult
	err    error
}

func (f *fakeClassifier) AnalyzeIntent(_ context.Context, _ string, _ map[string]interface{}) (*ai.IntentResult, error) {
	return f.result, f.err
}

func newTestRepos(products []*domain.Product, promotions []*domain.Promotion) (*repository.Repositories, *fakeDraftOrderRepo, *fakeConversationRepo) {
	draftOrders := newFakeDraftOrderRepo()
	conversations := newFakeConversationRepo()
	repos := &repository.Repositories{
		Customer:     &fakeCustomerRepo{byPhone: make(map[string]*domain.Customer)},
		Product:      &fakeProductRepo{products: products},
		Promotion:    &fakePromotionRepo{promotions: promotions},
		DraftOrder:   draftOrders,
		Conversation: conversations,
	}
	return repos, draftOrders, conversations
}

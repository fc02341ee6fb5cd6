package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tienditamx/orderbot/internal/ai"
	"github.com/tienditamx/orderbot/internal/domain"
	"github.com/tienditamx/orderbot/internal/repository"
	"github.com/tienditamx/orderbot/pkg/errors"
)

// ConversationService is the thin shell between the webhook and the pricing
// core: classify the message, run the matching flow, and compose exactly one
// reply. It owns no pricing logic.
type ConversationService struct {
	repos      *repository.Repositories
	orders     *OrderService
	pricing    *PricingService
	classifier ai.IntentClassifier
	logger     *zap.Logger
}

// NewConversationService creates a new conversation service
func NewConversationService(
	repos *repository.Repositories,
	orders *OrderService,
	pricing *PricingService,
	classifier ai.IntentClassifier,
	logger *zap.Logger,
) *ConversationService {
	return &ConversationService{
		repos:      repos,
		orders:     orders,
		pricing:    pricing,
		classifier: classifier,
		logger:     logger,
	}
}

// HandleInbound processes one inbound message for a known customer and
// returns the reply body. Messages and conversation state are persisted as a
// side effect; a classification failure degrades to the unknown-intent reply.
func (s *ConversationService) HandleInbound(ctx context.Context, customer *domain.Customer, body string) (string, error) {
	var stateContext map[string]interface{}
	state, err := s.repos.Conversation.GetState(ctx, customer.ID)
	if err == nil {
		stateContext = state.Context
	} else if _, ok := err.(*errors.ErrNotFound); !ok {
		return "", err
	}

	intentData, err := s.classifier.AnalyzeIntent(ctx, body, stateContext)
	if err != nil {
		s.logger.Error("Intent classification failed", zap.Error(err))
		intentData = &ai.IntentResult{Intent: ai.IntentUnknown, Entities: map[string]interface{}{}}
	}

	s.logger.Info("Intent detected",
		zap.String("customer_id", customer.ID.String()),
		zap.String("intent", intentData.Intent),
		zap.Float64("confidence", intentData.Confidence),
	)

	intent := intentData.Intent
	s.saveMessage(ctx, customer.ID, domain.MessageDirectionInbound, body, &intent)

	reply := s.handleIntent(ctx, customer, intentData)

	if err := s.repos.Conversation.UpsertState(ctx, &domain.ConversationState{
		CustomerID:  customer.ID,
		CurrentFlow: intentData.Intent,
		CurrentStep: intentData.NextAction,
		Context:     intentData.Entities,
	}); err != nil {
		s.logger.Error("Failed to update conversation state", zap.Error(err))
	}

	s.saveMessage(ctx, customer.ID, domain.MessageDirectionOutbound, reply, &intent)

	return reply, nil
}

func (s *ConversationService) handleIntent(ctx context.Context, customer *domain.Customer, intentData *ai.IntentResult) string {
	switch intentData.Intent {
	case ai.IntentGreeting:
		return "¡Hola! 👋 ¿En qué te puedo ayudar hoy?"

	case ai.IntentAskPrices:
		return s.handleAskPrices(ctx, intentData.Entities)

	case ai.IntentAskPromotions:
		return s.handleAskPromotions(ctx)

	case ai.IntentCreateOrder:
		return s.handleCreateOrder(ctx, customer, intentData.Entities)

	case ai.IntentTrackOrder:
		return s.handleTrackOrder(ctx, customer)

	default:
		return "Perdón, no entendí bien. ¿Me lo puedes repetir?"
	}
}

func (s *ConversationService) handleAskPrices(ctx context.Context, entities map[string]interface{}) string {
	productName, _ := entities["product_name"].(string)
	if productName == "" {
		return "Claro 😊 ¿De qué producto necesitas el precio?"
	}

	product, err := s.repos.Product.SearchByNameOrSKU(ctx, normalizeText(productName))
	if err != nil {
		if _, ok := err.(*errors.ErrNotFound); ok {
			return fmt.Sprintf("No encontré el producto '%s'. ¿Podrías confirmar el nombre?", productName)
		}
		s.logger.Error("Product search failed", zap.Error(err))
		return "No pude consultar el catálogo en este momento, inténtalo de nuevo."
	}

	return fmt.Sprintf("El precio de *%s* es $%s.", product.Name, product.UnitPrice.StringFixed(2))
}

func (s *ConversationService) handleAskPromotions(ctx context.Context) string {
	promotions, err := s.repos.Promotion.GetActive(ctx)
	if err != nil {
		s.logger.Error("Failed to load promotions", zap.Error(err))
		return "No pude consultar las promociones en este momento."
	}
	if len(promotions) == 0 {
		return "Por ahora no tenemos promociones activas, pero pronto habrá novedades."
	}

	var sb strings.Builder
	sb.WriteString("Estas son nuestras promociones activas:\n")
	for _, promo := range promotions {
		sb.WriteString(fmt.Sprintf("• %s\n", promo.Name))
	}
	sb.WriteString("¿Qué te gustaría ordenar?")
	return sb.String()
}

func (s *ConversationService) handleCreateOrder(ctx context.Context, customer *domain.Customer, entities map[string]interface{}) string {
	items := parseOrderItems(entities)
	if len(items) == 0 {
		return "Con gusto. ¿Qué productos y cantidades te gustaría ordenar?"
	}

	var notFound []string
	added := 0
	for _, item := range items {
		if _, err := s.orders.AddItem(ctx, customer.ID, item.ProductRef, item.Quantity); err != nil {
			if _, ok := err.(*errors.ErrNotFound); ok {
				notFound = append(notFound, item.ProductRef)
				continue
			}
			s.logger.Error("Failed to add item to draft order", zap.Error(err))
			return "No pude agregar los productos a tu pedido, inténtalo de nuevo."
		}
		added++
	}

	if added == 0 {
		return fmt.Sprintf("No encontré estos productos: %s. ¿Podrías confirmar los nombres?",
			strings.Join(notFound, ", "))
	}

	order, err := s.orders.GetOrCreateOpenOrder(ctx, customer.ID)
	if err != nil {
		s.logger.Error("Failed to load open draft order", zap.Error(err))
		return "No pude preparar tu pedido, inténtalo de nuevo."
	}

	result, err := s.pricing.PriceDraftOrder(ctx, order.ID)
	if err != nil {
		s.logger.Error("Pricing pass failed", zap.Error(err))
		return "Agregué tus productos, pero no pude calcular el total. Inténtalo de nuevo en un momento."
	}

	reply := renderPricingSummary(result)
	if len(notFound) > 0 {
		reply += fmt.Sprintf("\n\nNo encontré: %s.", strings.Join(notFound, ", "))
	}
	return reply
}

func (s *ConversationService) handleTrackOrder(ctx context.Context, customer *domain.Customer) string {
	order, err := s.repos.DraftOrder.GetOpenByCustomerID(ctx, customer.ID)
	if err != nil {
		if _, ok := err.(*errors.ErrNotFound); ok {
			return "No tienes ningún pedido en curso. ¿Quieres empezar uno?"
		}
		s.logger.Error("Failed to load draft order", zap.Error(err))
		return "No pude consultar tu pedido en este momento."
	}

	switch order.Status {
	case domain.DraftOrderStatusOpen:
		return "Tu pedido sigue abierto, aún puedes agregar o quitar productos."
	case domain.DraftOrderStatusPriced:
		return fmt.Sprintf("Tu pedido está listo para confirmar. Total: $%s.", order.FinalTotal.StringFixed(2))
	default:
		return fmt.Sprintf("Tu pedido está en estado %s.", order.Status)
	}
}

func (s *ConversationService) saveMessage(ctx context.Context, customerID uuid.UUID, direction domain.MessageDirection, body string, intent *string) {
	if err := s.repos.Conversation.SaveMessage(ctx, &domain.Message{
		CustomerID: customerID,
		Direction:  direction,
		Body:       body,
		Intent:     intent,
	}); err != nil {
		s.logger.Error("Failed to save message", zap.Error(err), zap.String("customer_id", customerID.String()))
	}
}

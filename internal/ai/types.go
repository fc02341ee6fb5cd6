package ai

import "context"

// IntentClassifier turns a free-text customer message into a structured
// intent. Implementations live at the process edge; business logic depends
// only on this interface.
type IntentClassifier interface {
	AnalyzeIntent(ctx context.Context, messageText string, conversationContext map[string]interface{}) (*IntentResult, error)
}

// IntentResult is the structured output of intent classification
type IntentResult struct {
	Intent     string                 `json:"intent"`
	Confidence float64                `json:"confidence"`
	Entities   map[string]interface{} `json:"entities"`
	NextAction string                 `json:"next_action"`
}

// Known intents. Anything else is treated as unknown.
const (
	IntentGreeting      = "greeting"
	IntentAskPrices     = "ask_prices"
	IntentAskPromotions = "ask_promotions"
	IntentCreateOrder   = "create_order"
	IntentTrackOrder    = "track_order"
	IntentUnknown       = "unknown"
)

package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/tienditamx/orderbot/internal/config"
)

const intentSystemPrompt = `You are an intent classification engine for a WhatsApp ordering assistant.

Your job:
- Identify the user's intent
- Extract relevant entities
- Decide the next logical action

Rules:
- Messages will most likely be in Mexican Spanish
- Return ONLY valid JSON
- Do NOT include explanations
- If unsure, use intent = "unknown"

Possible intents:
- greeting
- create_order
- ask_prices
- ask_promotions
- track_order
- unknown

JSON format:
{
  "intent": string,
  "confidence": number between 0 and 1,
  "entities": object,
  "next_action": string
}`

// Client calls the OpenAI chat completions API for intent classification
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new intent-classification client
func NewClient(cfg config.OpenAIConfig, logger *zap.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}

	return &Client{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// AnalyzeIntent classifies one customer message. A malformed model response
// degrades to the unknown intent instead of failing the webhook.
func (c *Client) AnalyzeIntent(ctx context.Context, messageText string, conversationContext map[string]interface{}) (*IntentResult, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"message": messageText,
		"context": conversationContext,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	reqBody := chatRequest{
		Model:       c.model,
		Temperature: 0.2,
		Messages: []chatMessage{
			{Role: "system", Content: intentSystemPrompt},
			{Role: "user", Content: string(payload)},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.baseURL + "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openai API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("openai response has no choices")
	}

	var result IntentResult
	if err := json.Unmarshal([]byte(chatResp.Choices[0].Message.Content), &result); err != nil {
		c.logger.Warn("Model returned non-JSON intent, falling back to unknown",
			zap.String("content", chatResp.Choices[0].Message.Content),
		)
		return &IntentResult{
			Intent:     IntentUnknown,
			Confidence: 0,
			Entities:   map[string]interface{}{},
			NextAction: "fallback",
		}, nil
	}
	if result.Entities == nil {
		result.Entities = map[string]interface{}{}
	}

	return &result, nil
}

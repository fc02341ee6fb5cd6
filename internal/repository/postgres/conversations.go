package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tienditamx/orderbot/internal/domain"
	"github.com/tienditamx/orderbot/pkg/errors"
)

type conversationRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewConversationRepository creates a new conversation repository
func NewConversationRepository(db *sql.DB, logger *zap.Logger) *conversationRepository {
	return &conversationRepository{
		db:     db,
		logger: logger,
	}
}

func (r *conversationRepository) GetState(ctx context.Context, customerID uuid.UUID) (*domain.ConversationState, error) {
	query := `
		SELECT customer_id, current_flow, current_step, context, updated_at
		FROM conversation_states
		WHERE customer_id = $1
	`

	var state domain.ConversationState
	var contextJSON []byte

	err := r.db.QueryRowContext(ctx, query, customerID).Scan(
		&state.CustomerID,
		&state.CurrentFlow,
		&state.CurrentStep,
		&contextJSON,
		&state.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "conversation_state", ID: customerID.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get conversation state", zap.Error(err))
		return nil, err
	}

	// A NULL context column scans as a nil slice; treat it as an empty map
	// rather than a broken row
	if len(contextJSON) > 0 {
		if err := json.Unmarshal(contextJSON, &state.Context); err != nil {
			return nil, err
		}
	}
	if state.Context == nil {
		state.Context = map[string]interface{}{}
	}

	return &state, nil
}

func (r *conversationRepository) UpsertState(ctx context.Context, state *domain.ConversationState) error {
	query := `
		INSERT INTO conversation_states (customer_id, current_flow, current_step, context, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (customer_id)
		DO UPDATE SET current_flow = $2, current_step = $3, context = $4, updated_at = $5
	`

	state.UpdatedAt = time.Now()
	contextJSON, err := json.Marshal(state.Context)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, query,
		state.CustomerID,
		state.CurrentFlow,
		state.CurrentStep,
		contextJSON,
		state.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to upsert conversation state", zap.Error(err))
		return err
	}

	return nil
}

func (r *conversationRepository) SaveMessage(ctx context.Context, message *domain.Message) error {
	query := `
		INSERT INTO messages (id, customer_id, direction, body, intent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, query,
		message.ID,
		message.CustomerID,
		message.Direction,
		message.Body,
		message.Intent,
		message.CreatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to save message", zap.Error(err))
		return err
	}

	return nil
}

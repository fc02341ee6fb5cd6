package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const stateColumns = "customer_id, current_flow, current_step, context, updated_at"

func TestGetStateNullContext(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewConversationRepository(db, zap.NewNop())
	customerID := uuid.New()

	rows := sqlmock.NewRows([]string{"customer_id", "current_flow", "current_step", "context", "updated_at"}).
		AddRow(customerID.String(), "greeting", "", nil, time.Now())
	mock.ExpectQuery("SELECT " + stateColumns).WithArgs(customerID).WillReturnRows(rows)

	state, err := repo.GetState(context.Background(), customerID)

	require.NoError(t, err)
	assert.Equal(t, "greeting", state.CurrentFlow)
	require.NotNil(t, state.Context)
	assert.Empty(t, state.Context)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetStateDecodesContext(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewConversationRepository(db, zap.NewNop())
	customerID := uuid.New()

	rows := sqlmock.NewRows([]string{"customer_id", "current_flow", "current_step", "context", "updated_at"}).
		AddRow(customerID.String(), "create_order", "confirm_items", []byte(`{"pending_sku":"SKU-A"}`), time.Now())
	mock.ExpectQuery("SELECT " + stateColumns).WithArgs(customerID).WillReturnRows(rows)

	state, err := repo.GetState(context.Background(), customerID)

	require.NoError(t, err)
	assert.Equal(t, "SKU-A", state.Context["pending_sku"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joyworks/workshop-api/internal/models"
	appErrors "github.com/joyworks/workshop-api/pkg/errors"
)

func (m *mockJoyCoinLedger) Balance(ctx context.Context, participantID string) (int, error) {
	return m.balances[participantID], nil
}

func (m *mockJoyCoinLedger) ListByParticipant(ctx context.Context, participantID string) ([]models.JoyCoinTransaction, error) {
	var list []models.JoyCoinTransaction
	for _, txn := range m.transactions {
		if txn.ParticipantID == participantID {
			list = append(list, txn)
		}
	}
	return list, nil
}

func seedBalance(t *testing.T, ledger *mockJoyCoinLedger, participantID string, amount int) {
	t.Helper()
	workshopID := "ws-seed"
	require.NoError(t, ledger.Append(context.Background(), &models.JoyCoinTransaction{
		ParticipantID: participantID,
		Type:          models.JoyCoinTypeWorkshopAttendance,
		Amount:        amount,
		WorkshopID:    &workshopID,
	}))
}

func TestStatement(t *testing.T) {
	ledger := &mockJoyCoinLedger{}
	seedBalance(t, ledger, "p-1", 50)
	svc := NewJoyCoinService(ledger, nil, nil)

	statement, err := svc.Statement(context.Background(), "p-1")
	require.NoError(t, err)
	assert.Equal(t, 50, statement.Balance)
	assert.Len(t, statement.Transactions, 1)
}

func TestStatementEmpty(t *testing.T) {
	svc := NewJoyCoinService(&mockJoyCoinLedger{}, nil, nil)

	statement, err := svc.Statement(context.Background(), "p-unknown")
	require.NoError(t, err)
	assert.Equal(t, 0, statement.Balance)
	assert.Empty(t, statement.Transactions)
}

func TestDeduct(t *testing.T) {
	ledger := &mockJoyCoinLedger{}
	seedBalance(t, ledger, "p-1", 50)
	svc := NewJoyCoinService(ledger, nil, nil)

	txn, err := svc.Deduct(context.Background(), "p-1", DeductRequest{Amount: 20})
	require.NoError(t, err)
	assert.Equal(t, -20, txn.Amount)
	assert.Equal(t, 30, txn.Balance)
	assert.Equal(t, models.JoyCoinTypeDeduction, txn.Type)
}

func TestDeductBelowZeroRejected(t *testing.T) {
	ledger := &mockJoyCoinLedger{}
	seedBalance(t, ledger, "p-1", 10)
	svc := NewJoyCoinService(ledger, nil, nil)

	_, err := svc.Deduct(context.Background(), "p-1", DeductRequest{Amount: 11})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInsufficientCoins))
	assert.Len(t, ledger.transactions, 1, "the rejected deduction must not append")
}

func TestDeductInvalidAmount(t *testing.T) {
	svc := NewJoyCoinService(&mockJoyCoinLedger{}, nil, nil)

	_, err := svc.Deduct(context.Background(), "p-1", DeductRequest{Amount: 0})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = svc.Deduct(context.Background(), "p-1", DeductRequest{Amount: -5})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/joyworks/workshop-api/internal/models"
	appErrors "github.com/joyworks/workshop-api/pkg/errors"
)

// JoyCoinRepository handles the append-only reward ledger.
type JoyCoinRepository struct {
	db *sqlx.DB
}

// NewJoyCoinRepository constructs the repository.
func NewJoyCoinRepository(db *sqlx.DB) *JoyCoinRepository {
	return &JoyCoinRepository{db: db}
}

// Append writes a ledger entry and the updated running balance in one
// transaction. The balance row is locked for the duration of the append
// so concurrent awards for the same participant serialize.
func (r *JoyCoinRepository) Append(ctx context.Context, txn *models.JoyCoinTransaction) error {
	if txn.ID == "" {
		txn.ID = uuid.NewString()
	}
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin ledger append: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var balance int
	err = tx.GetContext(ctx, &balance,
		`SELECT balance FROM joycoin_balances WHERE participant_id = $1 FOR UPDATE`, txn.ParticipantID)
	if err == sql.ErrNoRows {
		balance = 0
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO joycoin_balances (participant_id, balance, updated_at) VALUES ($1, 0, $2)`,
			txn.ParticipantID, time.Now().UTC()); err != nil {
			return fmt.Errorf("init balance row: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("lock balance row: %w", err)
	}

	txn.Balance = balance + txn.Amount
	if txn.Balance < 0 {
		return appErrors.Clone(appErrors.ErrInsufficientCoins, "ledger balance cannot go negative")
	}

	const insert = `INSERT INTO joycoin_transactions (id, participant_id, type, amount, balance,
        workshop_id, registration_id, note, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	if _, err := tx.ExecContext(ctx, insert, txn.ID, txn.ParticipantID, txn.Type, txn.Amount,
		txn.Balance, txn.WorkshopID, txn.RegistrationID, txn.Note, txn.CreatedAt); err != nil {
		return fmt.Errorf("append ledger entry: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE joycoin_balances SET balance = $2, updated_at = $3 WHERE participant_id = $1`,
		txn.ParticipantID, txn.Balance, time.Now().UTC()); err != nil {
		return fmt.Errorf("update balance: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit ledger append: %w", err)
	}
	return nil
}

// ExistsForWorkshop reports whether an entry of the given type already
// references the (workshop, participant) pair. Backs issuance idempotence.
func (r *JoyCoinRepository) ExistsForWorkshop(ctx context.Context, participantID, workshopID string, txnType models.JoyCoinTransactionType) (bool, error) {
	const query = `SELECT 1 FROM joycoin_transactions
        WHERE participant_id = $1 AND workshop_id = $2 AND type = $3 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, participantID, workshopID, txnType); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check ledger entry: %w", err)
	}
	return true, nil
}

// Balance returns a participant's current balance; zero when no entries exist.
func (r *JoyCoinRepository) Balance(ctx context.Context, participantID string) (int, error) {
	const query = `SELECT balance FROM joycoin_balances WHERE participant_id = $1`
	var balance int
	if err := r.db.GetContext(ctx, &balance, query, participantID); err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("load balance: %w", err)
	}
	return balance, nil
}

// ListByParticipant returns a participant's ledger history, newest first.
func (r *JoyCoinRepository) ListByParticipant(ctx context.Context, participantID string) ([]models.JoyCoinTransaction, error) {
	const query = `SELECT id, participant_id, type, amount, balance, workshop_id,
        registration_id, note, created_at
        FROM joycoin_transactions WHERE participant_id = $1 ORDER BY created_at DESC`
	var transactions []models.JoyCoinTransaction
	if err := r.db.SelectContext(ctx, &transactions, query, participantID); err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	return transactions, nil
}

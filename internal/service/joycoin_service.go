package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/joyworks/workshop-api/internal/models"
	appErrors "github.com/joyworks/workshop-api/pkg/errors"
)

type joycoinRepository interface {
	Append(ctx context.Context, txn *models.JoyCoinTransaction) error
	Balance(ctx context.Context, participantID string) (int, error)
	ListByParticipant(ctx context.Context, participantID string) ([]models.JoyCoinTransaction, error)
}

// DeductRequest is an organizer-authorized balance deduction.
type DeductRequest struct {
	Amount int     `json:"amount" validate:"required,min=1"`
	Note   *string `json:"note" validate:"omitempty,max=500"`
}

// JoyCoinService exposes the JoyCoin ledger to participants and
// organizers. Awards come from the completion flow; this service only
// reads statements and applies deductions.
type JoyCoinService struct {
	repo      joycoinRepository
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewJoyCoinService constructs the JoyCoin service.
func NewJoyCoinService(repo joycoinRepository, validate *validator.Validate, logger *zap.Logger) *JoyCoinService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JoyCoinService{
		repo:      repo,
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Statement returns a participant's transaction history with the
// current balance.
func (s *JoyCoinService) Statement(ctx context.Context, participantID string) (*models.JoyCoinStatement, error) {
	balance, err := s.repo.Balance(ctx, participantID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load balance")
	}
	transactions, err := s.repo.ListByParticipant(ctx, participantID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load transactions")
	}
	return &models.JoyCoinStatement{Balance: balance, Transactions: transactions}, nil
}

// Deduct appends a negative ledger entry. The deduction is rejected
// when it would push the balance below zero.
func (s *JoyCoinService) Deduct(ctx context.Context, participantID string, req DeductRequest) (*models.JoyCoinTransaction, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid deduction payload")
	}

	balance, err := s.repo.Balance(ctx, participantID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load balance")
	}
	if balance < req.Amount {
		return nil, appErrors.Clone(appErrors.ErrInsufficientCoins, "deduction exceeds current balance")
	}

	txn := &models.JoyCoinTransaction{
		ID:            uuid.NewString(),
		ParticipantID: participantID,
		Type:          models.JoyCoinTypeDeduction,
		Amount:        -req.Amount,
		Note:          req.Note,
		CreatedAt:     s.now(),
	}
	if err := s.repo.Append(ctx, txn); err != nil {
		if appErrors.Is(err, appErrors.ErrInsufficientCoins) {
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to append deduction")
	}

	s.logger.Info("joycoins deducted",
		zap.String("participant_id", participantID),
		zap.Int("amount", req.Amount),
		zap.Int("balance", txn.Balance),
	)
	return txn, nil
}

package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/joyworks/workshop-api/internal/events"
	"github.com/joyworks/workshop-api/internal/models"
	appErrors "github.com/joyworks/workshop-api/pkg/errors"
)

type certificateRepository interface {
	FindByPair(ctx context.Context, workshopID, participantID string) (*models.Certificate, error)
	NextSequence(ctx context.Context, workshopID string) (int, error)
	Create(ctx context.Context, certificate *models.Certificate) error
}

type joycoinLedger interface {
	ExistsForWorkshop(ctx context.Context, participantID, workshopID string, txnType models.JoyCoinTransactionType) (bool, error)
	Append(ctx context.Context, txn *models.JoyCoinTransaction) error
}

// IssueResult reports what a single evaluation produced.
type IssueResult struct {
	Eligibility       models.EligibilityResult `json:"eligibility"`
	CertificateIssued bool                     `json:"certificate_issued"`
	CertificateNumber string                   `json:"certificate_number,omitempty"`
	RewardIssued      bool                     `json:"reward_issued"`
	RewardAmount      int                      `json:"reward_amount,omitempty"`
}

// CompletionService issues certificates and JoyCoin rewards for
// qualifying attendance. Issuance is idempotent per (workshop,
// participant) pair: retries after a persistence failure can never
// create duplicate artifacts.
type CompletionService struct {
	workshops        workshopReader
	certificates     certificateRepository
	coins            joycoinLedger
	bus              eventPublisher
	metrics          *MetricsService
	certificateBonus int
	logger           *zap.Logger
}

// NewCompletionService constructs the completion issuer.
func NewCompletionService(workshops workshopReader, certificates certificateRepository, coins joycoinLedger, bus eventPublisher, metrics *MetricsService, certificateBonus int, logger *zap.Logger) *CompletionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CompletionService{
		workshops:        workshops,
		certificates:     certificates,
		coins:            coins,
		bus:              bus,
		metrics:          metrics,
		certificateBonus: certificateBonus,
		logger:           logger,
	}
}

// EvaluateAndIssue evaluates eligibility for a registration and creates
// any artifacts it newly qualifies for. Safe to call repeatedly.
func (s *CompletionService) EvaluateAndIssue(ctx context.Context, registration *models.Registration) (*IssueResult, error) {
	workshop, err := s.workshops.FindByID(ctx, registration.WorkshopID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "workshop not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load workshop")
	}

	result := &IssueResult{Eligibility: Evaluate(registration, workshop)}

	if result.Eligibility.CertificateEligible {
		number, issued, err := s.issueCertificate(ctx, workshop, registration)
		if err != nil {
			return result, err
		}
		result.CertificateIssued = issued
		result.CertificateNumber = number
	}

	if result.Eligibility.RewardEligible {
		amount, issued, err := s.issueReward(ctx, workshop, registration)
		if err != nil {
			return result, err
		}
		result.RewardIssued = issued
		result.RewardAmount = amount
	}

	return result, nil
}

func (s *CompletionService) issueCertificate(ctx context.Context, workshop *models.Workshop, registration *models.Registration) (string, bool, error) {
	existing, err := s.certificates.FindByPair(ctx, workshop.ID, registration.ParticipantID)
	if err == nil {
		// Already issued; absorbed, never surfaced to the caller.
		return existing.Number, false, nil
	}
	if err != sql.ErrNoRows {
		return "", false, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to check existing certificate")
	}

	seq, err := s.certificates.NextSequence(ctx, workshop.ID)
	if err != nil {
		return "", false, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to allocate certificate sequence")
	}

	certificate := &models.Certificate{
		WorkshopID:    workshop.ID,
		ParticipantID: registration.ParticipantID,
		Number:        CertificateNumber(workshop.Code, seq),
	}
	if err := s.certificates.Create(ctx, certificate); err != nil {
		return "", false, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to persist certificate")
	}

	if s.metrics != nil {
		s.metrics.CertificateIssued()
	}
	if s.bus != nil {
		s.bus.Publish(events.Event{
			Type:          events.TypeCertificateIssued,
			WorkshopID:    workshop.ID,
			ParticipantID: registration.ParticipantID,
			Payload:       events.CertificatePayload{CertificateID: certificate.ID, Number: certificate.Number},
		})
	}

	if s.certificateBonus > 0 {
		if err := s.appendAward(ctx, workshop, registration, models.JoyCoinTypeCertificateEarned, s.certificateBonus); err != nil {
			return certificate.Number, true, err
		}
	}

	return certificate.Number, true, nil
}

func (s *CompletionService) issueReward(ctx context.Context, workshop *models.Workshop, registration *models.Registration) (int, bool, error) {
	if workshop.RewardAmount <= 0 {
		return 0, false, nil
	}

	exists, err := s.coins.ExistsForWorkshop(ctx, registration.ParticipantID, workshop.ID, models.JoyCoinTypeWorkshopAttendance)
	if err != nil {
		return 0, false, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to check existing reward")
	}
	if exists {
		return 0, false, nil
	}

	if err := s.appendAward(ctx, workshop, registration, models.JoyCoinTypeWorkshopAttendance, workshop.RewardAmount); err != nil {
		return 0, false, err
	}
	return workshop.RewardAmount, true, nil
}

func (s *CompletionService) appendAward(ctx context.Context, workshop *models.Workshop, registration *models.Registration, txnType models.JoyCoinTransactionType, amount int) error {
	exists, err := s.coins.ExistsForWorkshop(ctx, registration.ParticipantID, workshop.ID, txnType)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to check existing award")
	}
	if exists {
		return nil
	}

	note := fmt.Sprintf("%s: %s", strings.ToLower(string(txnType)), workshop.Title)
	txn := &models.JoyCoinTransaction{
		ParticipantID:  registration.ParticipantID,
		Type:           txnType,
		Amount:         amount,
		WorkshopID:     &workshop.ID,
		RegistrationID: &registration.ID,
		Note:           &note,
	}
	if err := s.coins.Append(ctx, txn); err != nil {
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to append reward transaction")
	}

	if s.metrics != nil {
		s.metrics.CoinsAwarded(amount)
	}
	if s.bus != nil {
		s.bus.Publish(events.Event{
			Type:          events.TypeRewardIssued,
			WorkshopID:    workshop.ID,
			ParticipantID: registration.ParticipantID,
			Payload:       events.RewardPayload{TransactionID: txn.ID, Amount: txn.Amount, Balance: txn.Balance},
		})
	}
	return nil
}

// CertificateNumber builds a human-readable, collision-resistant
// certificate number: workshop code, per-workshop sequence and a mod-97
// checksum over the base string.
func CertificateNumber(workshopCode string, sequence int) string {
	base := fmt.Sprintf("CERT-%s-%04d", strings.ToUpper(workshopCode), sequence)
	var sum int
	for _, b := range []byte(base) {
		sum = (sum*10 + int(b)) % 97
	}
	return fmt.Sprintf("%s-%02d", base, sum)
}

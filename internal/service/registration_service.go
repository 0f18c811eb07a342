package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/joyworks/workshop-api/internal/events"
	"github.com/joyworks/workshop-api/internal/models"
	appErrors "github.com/joyworks/workshop-api/pkg/errors"
)

type registrationRepository interface {
	FindByID(ctx context.Context, id string) (*models.Registration, error)
	FindActive(ctx context.Context, workshopID, participantID string) (*models.Registration, error)
	FindLatest(ctx context.Context, workshopID, participantID string) (*models.Registration, error)
	Create(ctx context.Context, registration *models.Registration) error
	UpdateStatus(ctx context.Context, id string, from, to models.RegistrationStatus, cancelledAt *time.Time) error
	List(ctx context.Context, filter models.RegistrationFilter) ([]models.RegistrationDetail, int, error)
}

type workshopReader interface {
	FindByID(ctx context.Context, id string) (*models.Workshop, error)
}

type eventPublisher interface {
	Publish(event events.Event)
}

// allowedTransitions is the registration state machine. Any transition
// absent from this table is rejected; callers never mutate status
// directly.
var allowedTransitions = map[models.RegistrationStatus]map[models.RegistrationStatus]bool{
	models.RegistrationStatusInterested: {
		models.RegistrationStatusBooked:    true,
		models.RegistrationStatusCancelled: true,
	},
	models.RegistrationStatusBooked: {
		models.RegistrationStatusAttended:  true,
		models.RegistrationStatusCancelled: true,
	},
	models.RegistrationStatusAttended: {
		// Only the administrative unmark reverses attendance.
		models.RegistrationStatusBooked: true,
	},
}

// CanTransition reports whether the state machine permits from → to.
func CanTransition(from, to models.RegistrationStatus) bool {
	return allowedTransitions[from][to]
}

// RegistrationService governs the registration lifecycle for a single
// (workshop, participant) pair.
type RegistrationService struct {
	repo      registrationRepository
	workshops workshopReader
	ledger    *CapacityLedger
	bus       eventPublisher
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRegistrationService constructs the registration service.
func NewRegistrationService(repo registrationRepository, workshops workshopReader, ledger *CapacityLedger, bus eventPublisher, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *RegistrationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistrationService{repo: repo, workshops: workshops, ledger: ledger, bus: bus, metrics: metrics, validator: validate, logger: logger}
}

func (s *RegistrationService) loadOpenWorkshop(ctx context.Context, workshopID string) (*models.Workshop, error) {
	workshop, err := s.workshops.FindByID(ctx, workshopID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "workshop not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load workshop")
	}
	if workshop.Status != models.WorkshopStatusPublished {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "workshop is not open for registration")
	}
	return workshop, nil
}

// ExpressInterest records interest without consuming a seat. Repeating
// the call returns the existing registration.
func (s *RegistrationService) ExpressInterest(ctx context.Context, workshopID, participantID string) (*models.Registration, error) {
	if _, err := s.loadOpenWorkshop(ctx, workshopID); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindActive(ctx, workshopID, participantID)
	if err == nil {
		return existing, nil
	}
	if err != sql.ErrNoRows {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registration")
	}

	registration := &models.Registration{
		WorkshopID:    workshopID,
		ParticipantID: participantID,
		Status:        models.RegistrationStatusInterested,
		RegisteredAt:  time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, registration); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to create registration")
	}
	return registration, nil
}

// Book admits a participant to a seat. The capacity check and the seat
// claim are atomic; a failed registration write rolls the claim back so
// no seat leaks. Booking an already-booked pair is an idempotent no-op
// that returns the existing registration.
func (s *RegistrationService) Book(ctx context.Context, workshopID, participantID string) (*models.Registration, error) {
	if _, err := s.loadOpenWorkshop(ctx, workshopID); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindActive(ctx, workshopID, participantID)
	switch {
	case err == nil:
		if existing.Status.Seated() {
			return existing, nil
		}
		// interested → booked
		return s.promote(ctx, existing)
	case err == sql.ErrNoRows:
		return s.admit(ctx, workshopID, participantID)
	default:
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registration")
	}
}

func (s *RegistrationService) admit(ctx context.Context, workshopID, participantID string) (*models.Registration, error) {
	reservation, err := s.ledger.TryReserve(ctx, workshopID)
	if err != nil {
		if appErrors.Is(err, appErrors.ErrCapacityExceeded) && s.metrics != nil {
			s.metrics.CapacityRejection(workshopID)
		}
		return nil, err
	}

	registration := &models.Registration{
		WorkshopID:    workshopID,
		ParticipantID: participantID,
		Status:        models.RegistrationStatusBooked,
		RegisteredAt:  time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, registration); err != nil {
		reservation.Rollback()
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to create registration")
	}

	s.booked(registration)
	return registration, nil
}

func (s *RegistrationService) promote(ctx context.Context, registration *models.Registration) (*models.Registration, error) {
	if !CanTransition(registration.Status, models.RegistrationStatusBooked) {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "")
	}

	reservation, err := s.ledger.TryReserve(ctx, registration.WorkshopID)
	if err != nil {
		if appErrors.Is(err, appErrors.ErrCapacityExceeded) && s.metrics != nil {
			s.metrics.CapacityRejection(registration.WorkshopID)
		}
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, registration.ID, registration.Status, models.RegistrationStatusBooked, nil); err != nil {
		reservation.Rollback()
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "registration changed concurrently")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to update registration")
	}

	registration.Status = models.RegistrationStatusBooked
	s.booked(registration)
	return registration, nil
}

func (s *RegistrationService) booked(registration *models.Registration) {
	if s.metrics != nil {
		s.metrics.RegistrationBooked()
	}
	if s.bus != nil {
		s.bus.Publish(events.Event{
			Type:          events.TypeRegistrationBooked,
			WorkshopID:    registration.WorkshopID,
			ParticipantID: registration.ParticipantID,
		})
	}
}

// Cancel transitions a registration to cancelled, releasing the seat
// exactly once when the prior status held one. Cancelling an
// already-cancelled pair is a no-op; cancelling an attended registration
// is rejected.
func (s *RegistrationService) Cancel(ctx context.Context, workshopID, participantID string) (*models.Registration, error) {
	registration, err := s.repo.FindActive(ctx, workshopID, participantID)
	if err == sql.ErrNoRows {
		latest, latestErr := s.repo.FindLatest(ctx, workshopID, participantID)
		if latestErr == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "registration not found")
		}
		if latestErr != nil {
			return nil, appErrors.Wrap(latestErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registration")
		}
		// Already cancelled; repeating the cancel must not release
		// another seat.
		return latest, nil
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registration")
	}

	if !CanTransition(registration.Status, models.RegistrationStatusCancelled) {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "attended registrations cannot be cancelled")
	}

	wasSeated := registration.Status.Seated()
	now := time.Now().UTC()
	if err := s.repo.UpdateStatus(ctx, registration.ID, registration.Status, models.RegistrationStatusCancelled, &now); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "registration changed concurrently")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to cancel registration")
	}

	if wasSeated {
		s.ledger.Release(workshopID)
	}

	registration.Status = models.RegistrationStatusCancelled
	registration.CancelledAt = &now
	if s.bus != nil {
		s.bus.Publish(events.Event{
			Type:          events.TypeRegistrationCancelled,
			WorkshopID:    workshopID,
			ParticipantID: participantID,
		})
	}
	return registration, nil
}

// List returns registrations with pagination metadata.
func (s *RegistrationService) List(ctx context.Context, filter models.RegistrationFilter) ([]models.RegistrationDetail, *models.Pagination, error) {
	registrations, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list registrations")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return registrations, pagination, nil
}

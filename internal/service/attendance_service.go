package service

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/joyworks/workshop-api/internal/events"
	"github.com/joyworks/workshop-api/internal/models"
	appErrors "github.com/joyworks/workshop-api/pkg/errors"
)

type attendanceRegistrationRepository interface {
	FindActive(ctx context.Context, workshopID, participantID string) (*models.Registration, error)
	RecordOutcome(ctx context.Context, id string, from, to models.RegistrationStatus, outcome models.AttendanceOutcome, durationMinutes *int) error
	ClearOutcome(ctx context.Context, id string) error
}

type certificateChecker interface {
	FindByPair(ctx context.Context, workshopID, participantID string) (*models.Certificate, error)
}

type completionIssuer interface {
	EvaluateAndIssue(ctx context.Context, registration *models.Registration) (*IssueResult, error)
}

// AttendanceItem is one participant's outcome within a batch.
type AttendanceItem struct {
	ParticipantID   string `json:"participant_id" validate:"required"`
	Outcome         string `json:"outcome" validate:"required,attendance_outcome"`
	DurationMinutes *int   `json:"duration_minutes" validate:"omitempty,min=0"`
}

// BulkRecordRequest describes a bulk attendance payload for one workshop.
type BulkRecordRequest struct {
	Items []AttendanceItem `json:"items" validate:"required,min=1,dive"`
}

// AttendanceEntryResult reports the outcome of a single batch entry.
// IssueError is set when the attendance record was applied but
// certificate/reward issuance failed; the caller retries via Reissue.
type AttendanceEntryResult struct {
	ParticipantID string           `json:"participant_id"`
	Applied       bool             `json:"applied"`
	Warning       string           `json:"warning,omitempty"`
	Error         *appErrors.Error `json:"error,omitempty"`
	Issue         *IssueResult     `json:"issue,omitempty"`
	IssueError    *appErrors.Error `json:"issue_error,omitempty"`
}

// BulkRecordResult summarises a batch application.
type BulkRecordResult struct {
	Processed int                     `json:"processed"`
	Applied   int                     `json:"applied"`
	Entries   []AttendanceEntryResult `json:"entries"`
}

// AttendanceService applies attendance outcomes to booked registrations.
// Entries in a batch are independent: one failure never aborts the rest.
type AttendanceService struct {
	repo         attendanceRegistrationRepository
	workshops    workshopReader
	certificates certificateChecker
	issuer       completionIssuer
	bus          eventPublisher
	metrics      *MetricsService
	validator    *validator.Validate
	logger       *zap.Logger
	now          func() time.Time
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(repo attendanceRegistrationRepository, workshops workshopReader, certificates certificateChecker, issuer completionIssuer, bus eventPublisher, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &AttendanceService{
		repo:         repo,
		workshops:    workshops,
		certificates: certificates,
		issuer:       issuer,
		bus:          bus,
		metrics:      metrics,
		validator:    validate,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
	svc.validator.RegisterValidation("attendance_outcome", func(fl validator.FieldLevel) bool {
		return models.AttendanceOutcome(strings.ToUpper(fl.Field().String())).Valid()
	})
	return svc
}

// BulkRecord applies a set of attendance outcomes for one workshop.
// When the same participant appears more than once, only the last entry
// is applied; earlier entries are skipped with a warning.
func (s *AttendanceService) BulkRecord(ctx context.Context, workshopID string, req BulkRecordRequest) (*BulkRecordResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}

	workshop, err := s.workshops.FindByID(ctx, workshopID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "workshop not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load workshop")
	}
	if workshop.Status == models.WorkshopStatusCancelled {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "workshop is cancelled")
	}
	if !workshop.InProgressOrPast(s.now()) {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "workshop has not started")
	}

	lastIndex := make(map[string]int, len(req.Items))
	for i, item := range req.Items {
		lastIndex[item.ParticipantID] = i
	}

	result := &BulkRecordResult{
		Processed: len(req.Items),
		Entries:   make([]AttendanceEntryResult, len(req.Items)),
	}

	for i, item := range req.Items {
		entry := AttendanceEntryResult{ParticipantID: item.ParticipantID}
		if lastIndex[item.ParticipantID] != i {
			entry.Warning = "superseded by a later entry for the same participant"
			result.Entries[i] = entry
			continue
		}

		issue, issueErr, err := s.applyOutcome(ctx, workshop, item)
		if err != nil {
			entry.Error = appErrors.FromError(err)
		} else {
			entry.Applied = true
			entry.Issue = issue
			if issueErr != nil {
				entry.IssueError = appErrors.FromError(issueErr)
			}
			result.Applied++
		}
		result.Entries[i] = entry
	}

	return result, nil
}

// applyOutcome records one entry. The second return value carries an
// issuance failure for an otherwise applied attendance record.
func (s *AttendanceService) applyOutcome(ctx context.Context, workshop *models.Workshop, item AttendanceItem) (*IssueResult, error, error) {
	registration, err := s.repo.FindActive(ctx, workshop.ID, item.ParticipantID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "no active registration for participant")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registration")
	}
	if registration.Status != models.RegistrationStatusBooked {
		return nil, nil, appErrors.Clone(appErrors.ErrInvalidTransition, "attendance requires a booked registration")
	}

	outcome := models.AttendanceOutcome(strings.ToUpper(item.Outcome))
	switch outcome {
	case models.OutcomeAbsent:
		// Absence keeps the seat and the booked status; eligibility
		// treats it as zero minutes present.
		zero := 0
		if err := s.repo.RecordOutcome(ctx, registration.ID, registration.Status, models.RegistrationStatusBooked, outcome, &zero); err != nil {
			return nil, nil, s.outcomeError(err)
		}
		registration.Outcome = &outcome
		registration.DurationMinutes = &zero
	case models.OutcomeAttended:
		duration := workshop.DurationMinutes
		if item.DurationMinutes != nil {
			duration = clamp(*item.DurationMinutes, 0, workshop.DurationMinutes)
		}
		if err := s.repo.RecordOutcome(ctx, registration.ID, registration.Status, models.RegistrationStatusAttended, outcome, &duration); err != nil {
			return nil, nil, s.outcomeError(err)
		}
		registration.Status = models.RegistrationStatusAttended
		registration.Outcome = &outcome
		registration.DurationMinutes = &duration
	default:
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unsupported attendance outcome")
	}

	if s.metrics != nil {
		s.metrics.AttendanceRecorded(string(outcome))
	}
	if s.bus != nil {
		s.bus.Publish(events.Event{
			Type:          events.TypeAttendanceRecorded,
			WorkshopID:    workshop.ID,
			ParticipantID: item.ParticipantID,
			Payload: events.AttendancePayload{
				Outcome:         string(outcome),
				DurationMinutes: registration.AttendedMinutes(),
			},
		})
	}

	if registration.Status != models.RegistrationStatusAttended || s.issuer == nil {
		return nil, nil, nil
	}

	issue, err := s.issuer.EvaluateAndIssue(ctx, registration)
	if err != nil {
		// The attendance record itself stands; the failure is surfaced
		// on the entry so the caller knows a Reissue is needed.
		s.logger.Warn("issuance failed after attendance record",
			zap.String("workshop_id", workshop.ID),
			zap.String("participant_id", item.ParticipantID),
			zap.Error(err),
		)
		return issue, err, nil
	}
	return issue, nil, nil
}

// Reissue re-runs certificate and reward issuance for an attended
// registration. Issuance is idempotent, so this is safe to call after
// a reported issue_error or at any later point.
func (s *AttendanceService) Reissue(ctx context.Context, workshopID, participantID string) (*IssueResult, error) {
	if s.issuer == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "issuance is not configured")
	}
	registration, err := s.repo.FindActive(ctx, workshopID, participantID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no active registration for participant")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registration")
	}
	if registration.Status != models.RegistrationStatusAttended {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "issuance requires an attended registration")
	}
	return s.issuer.EvaluateAndIssue(ctx, registration)
}

func (s *AttendanceService) outcomeError(err error) error {
	if err == sql.ErrNoRows {
		return appErrors.Clone(appErrors.ErrInvalidTransition, "registration changed concurrently")
	}
	return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to record attendance")
}

// Unmark reverses an attended registration back to booked. Refused once
// a certificate exists for the pair: issued artifacts are never revoked.
func (s *AttendanceService) Unmark(ctx context.Context, workshopID, participantID string) (*models.Registration, error) {
	registration, err := s.repo.FindActive(ctx, workshopID, participantID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no active registration for participant")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registration")
	}
	if registration.Status != models.RegistrationStatusAttended {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "registration is not attended")
	}

	if _, err := s.certificates.FindByPair(ctx, workshopID, participantID); err == nil {
		return nil, appErrors.Clone(appErrors.ErrFinalized, "certificate already issued for this participation")
	} else if err != sql.ErrNoRows {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check certificate")
	}

	if err := s.repo.ClearOutcome(ctx, registration.ID); err != nil {
		return nil, s.outcomeError(err)
	}

	registration.Status = models.RegistrationStatusBooked
	registration.Outcome = nil
	registration.DurationMinutes = nil
	return registration, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

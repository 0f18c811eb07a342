package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/joyworks/workshop-api/internal/models"
)

// RegistrationRepository handles persistence of registrations.
type RegistrationRepository struct {
	db *sqlx.DB
}

// NewRegistrationRepository constructs the repository.
func NewRegistrationRepository(db *sqlx.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

const registrationColumns = `id, workshop_id, participant_id, status, outcome,
        duration_minutes, registered_at, cancelled_at, updated_at`

// FindByID returns a registration by its ID.
func (r *RegistrationRepository) FindByID(ctx context.Context, id string) (*models.Registration, error) {
	query := fmt.Sprintf(`SELECT %s FROM registrations WHERE id = $1`, registrationColumns)
	var registration models.Registration
	if err := r.db.GetContext(ctx, &registration, query, id); err != nil {
		return nil, err
	}
	return &registration, nil
}

// FindActive returns the non-cancelled registration for a pair, or
// sql.ErrNoRows when none exists.
func (r *RegistrationRepository) FindActive(ctx context.Context, workshopID, participantID string) (*models.Registration, error) {
	query := fmt.Sprintf(`SELECT %s FROM registrations
        WHERE workshop_id = $1 AND participant_id = $2 AND status <> $3`, registrationColumns)
	var registration models.Registration
	if err := r.db.GetContext(ctx, &registration, query, workshopID, participantID, models.RegistrationStatusCancelled); err != nil {
		return nil, err
	}
	return &registration, nil
}

// FindLatest returns the newest registration for a pair regardless of
// status, or sql.ErrNoRows when the pair has no history.
func (r *RegistrationRepository) FindLatest(ctx context.Context, workshopID, participantID string) (*models.Registration, error) {
	query := fmt.Sprintf(`SELECT %s FROM registrations
        WHERE workshop_id = $1 AND participant_id = $2
        ORDER BY registered_at DESC LIMIT 1`, registrationColumns)
	var registration models.Registration
	if err := r.db.GetContext(ctx, &registration, query, workshopID, participantID); err != nil {
		return nil, err
	}
	return &registration, nil
}

// CountSeated counts registrations occupying a seat (booked or attended).
func (r *RegistrationRepository) CountSeated(ctx context.Context, workshopID string) (int, error) {
	const query = `SELECT COUNT(*) FROM registrations
        WHERE workshop_id = $1 AND status IN ($2, $3)`
	var count int
	if err := r.db.GetContext(ctx, &count, query, workshopID, models.RegistrationStatusBooked, models.RegistrationStatusAttended); err != nil {
		return 0, fmt.Errorf("count seated registrations: %w", err)
	}
	return count, nil
}

// Create persists a new registration.
func (r *RegistrationRepository) Create(ctx context.Context, registration *models.Registration) error {
	now := time.Now().UTC()
	if registration.ID == "" {
		registration.ID = uuid.NewString()
	}
	if registration.RegisteredAt.IsZero() {
		registration.RegisteredAt = now
	}
	registration.UpdatedAt = now
	const query = `INSERT INTO registrations (id, workshop_id, participant_id, status, outcome,
        duration_minutes, registered_at, cancelled_at, updated_at)
        VALUES (:id, :workshop_id, :participant_id, :status, :outcome,
        :duration_minutes, :registered_at, :cancelled_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, registration); err != nil {
		return fmt.Errorf("create registration: %w", err)
	}
	return nil
}

// UpdateStatus transitions a registration, guarded by its current status
// so concurrent transitions for the same pair cannot produce lost
// updates. Returns sql.ErrNoRows when the guard no longer matches.
func (r *RegistrationRepository) UpdateStatus(ctx context.Context, id string, from, to models.RegistrationStatus, cancelledAt *time.Time) error {
	const query = `UPDATE registrations SET status = $3, cancelled_at = $4, updated_at = $5
        WHERE id = $1 AND status = $2`
	result, err := r.db.ExecContext(ctx, query, id, from, to, cancelledAt, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update registration status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update registration status: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// RecordOutcome stores the attendance outcome and duration, guarded by
// the current status like UpdateStatus.
func (r *RegistrationRepository) RecordOutcome(ctx context.Context, id string, from, to models.RegistrationStatus, outcome models.AttendanceOutcome, durationMinutes *int) error {
	const query = `UPDATE registrations SET status = $3, outcome = $4, duration_minutes = $5, updated_at = $6
        WHERE id = $1 AND status = $2`
	result, err := r.db.ExecContext(ctx, query, id, from, to, outcome, durationMinutes, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("record attendance outcome: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("record attendance outcome: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ClearOutcome reverses an attendance record back to booked.
func (r *RegistrationRepository) ClearOutcome(ctx context.Context, id string) error {
	const query = `UPDATE registrations SET status = $2, outcome = NULL, duration_minutes = NULL, updated_at = $3
        WHERE id = $1 AND status = $4`
	result, err := r.db.ExecContext(ctx, query, id, models.RegistrationStatusBooked, time.Now().UTC(), models.RegistrationStatusAttended)
	if err != nil {
		return fmt.Errorf("clear attendance outcome: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("clear attendance outcome: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// List returns registrations filtered by the provided criteria.
func (r *RegistrationRepository) List(ctx context.Context, filter models.RegistrationFilter) ([]models.RegistrationDetail, int, error) {
	base := `FROM registrations r JOIN workshops w ON w.id = r.workshop_id`
	var conditions []string
	var args []interface{}

	if filter.WorkshopID != "" {
		conditions = append(conditions, fmt.Sprintf("r.workshop_id = $%d", len(args)+1))
		args = append(args, filter.WorkshopID)
	}
	if filter.ParticipantID != "" {
		conditions = append(conditions, fmt.Sprintf("r.participant_id = $%d", len(args)+1))
		args = append(args, filter.ParticipantID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("r.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"registered_at": "r.registered_at",
		"starts_at":     "w.starts_at",
		"status":        "r.status",
	}
	orderBy := allowedSorts[filter.SortBy]
	if orderBy == "" {
		orderBy = "r.registered_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT r.id, r.workshop_id, r.participant_id, r.status, r.outcome,
        r.duration_minutes, r.registered_at, r.cancelled_at, r.updated_at,
        w.title AS workshop_title, w.starts_at AS workshop_starts_at, w.status AS workshop_status
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, base+clause, orderBy, order, size, offset)

	var registrations []models.RegistrationDetail
	if err := r.db.SelectContext(ctx, &registrations, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list registrations: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count registrations: %w", err)
	}
	return registrations, total, nil
}

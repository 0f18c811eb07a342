package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/joyworks/workshop-api/internal/models"
)

// WorkshopRepository handles persistence of workshops.
type WorkshopRepository struct {
	db *sqlx.DB
}

// NewWorkshopRepository constructs the repository.
func NewWorkshopRepository(db *sqlx.DB) *WorkshopRepository {
	return &WorkshopRepository{db: db}
}

const workshopColumns = `w.id, w.code, w.title, w.description, w.organizer_id, w.starts_at,
        w.duration_minutes, w.capacity, w.status, w.reward_amount, w.created_at, w.updated_at`

const seatsBookedExpr = `(SELECT COUNT(*) FROM registrations r
        WHERE r.workshop_id = w.id AND r.status IN ('BOOKED', 'ATTENDED')) AS seats_booked`

// List returns workshops filtered by the provided criteria.
func (r *WorkshopRepository) List(ctx context.Context, filter models.WorkshopFilter) ([]models.WorkshopDetail, int, error) {
	base := "FROM workshops w"
	var conditions []string
	var args []interface{}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("w.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.OrganizerID != "" {
		conditions = append(conditions, fmt.Sprintf("w.organizer_id = $%d", len(args)+1))
		args = append(args, filter.OrganizerID)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("w.title ILIKE $%d", len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("w.starts_at >= $%d", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("w.starts_at <= $%d", len(args)+1))
		args = append(args, *filter.To)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"starts_at":  "w.starts_at",
		"title":      "w.title",
		"created_at": "w.created_at",
	}
	orderBy := allowedSorts[filter.SortBy]
	if orderBy == "" {
		orderBy = "w.starts_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
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

	query := fmt.Sprintf(`SELECT %s, %s %s ORDER BY %s %s LIMIT %d OFFSET %d`,
		workshopColumns, seatsBookedExpr, base+clause, orderBy, order, size, offset)

	var workshops []models.WorkshopDetail
	if err := r.db.SelectContext(ctx, &workshops, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list workshops: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count workshops: %w", err)
	}
	return workshops, total, nil
}

// FindByID returns a workshop by its ID.
func (r *WorkshopRepository) FindByID(ctx context.Context, id string) (*models.Workshop, error) {
	query := fmt.Sprintf(`SELECT %s FROM workshops w WHERE w.id = $1`, workshopColumns)
	var workshop models.Workshop
	if err := r.db.GetContext(ctx, &workshop, query, id); err != nil {
		return nil, err
	}
	return &workshop, nil
}

// FindDetailByID returns a workshop with its seat usage.
func (r *WorkshopRepository) FindDetailByID(ctx context.Context, id string) (*models.WorkshopDetail, error) {
	query := fmt.Sprintf(`SELECT %s, %s FROM workshops w WHERE w.id = $1`, workshopColumns, seatsBookedExpr)
	var detail models.WorkshopDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// Create persists a new workshop.
func (r *WorkshopRepository) Create(ctx context.Context, workshop *models.Workshop) error {
	now := time.Now().UTC()
	if workshop.ID == "" {
		workshop.ID = uuid.NewString()
	}
	if workshop.Status == "" {
		workshop.Status = models.WorkshopStatusDraft
	}
	workshop.CreatedAt = now
	workshop.UpdatedAt = now
	const query = `INSERT INTO workshops (id, code, title, description, organizer_id, starts_at,
        duration_minutes, capacity, status, reward_amount, created_at, updated_at)
        VALUES (:id, :code, :title, :description, :organizer_id, :starts_at,
        :duration_minutes, :capacity, :status, :reward_amount, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, workshop); err != nil {
		return fmt.Errorf("create workshop: %w", err)
	}
	return nil
}

// Update persists schedule and descriptive changes.
func (r *WorkshopRepository) Update(ctx context.Context, workshop *models.Workshop) error {
	workshop.UpdatedAt = time.Now().UTC()
	const query = `UPDATE workshops SET title = :title, description = :description,
        starts_at = :starts_at, duration_minutes = :duration_minutes,
        reward_amount = :reward_amount, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, workshop); err != nil {
		return fmt.Errorf("update workshop: %w", err)
	}
	return nil
}

// UpdateStatus moves the workshop through its lifecycle.
func (r *WorkshopRepository) UpdateStatus(ctx context.Context, id string, status models.WorkshopStatus) error {
	const query = `UPDATE workshops SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update workshop status: %w", err)
	}
	return nil
}

// UpdateCapacity resizes the workshop. Validation against current
// enrollment is the capacity ledger's job.
func (r *WorkshopRepository) UpdateCapacity(ctx context.Context, id string, capacity int) error {
	const query = `UPDATE workshops SET capacity = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, capacity, time.Now().UTC()); err != nil {
		return fmt.Errorf("update workshop capacity: %w", err)
	}
	return nil
}

package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/joyworks/workshop-api/internal/models"
	"github.com/joyworks/workshop-api/internal/repository"
	appErrors "github.com/joyworks/workshop-api/pkg/errors"
)

type workshopRepository interface {
	List(ctx context.Context, filter models.WorkshopFilter) ([]models.WorkshopDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.Workshop, error)
	FindDetailByID(ctx context.Context, id string) (*models.WorkshopDetail, error)
	Create(ctx context.Context, workshop *models.Workshop) error
	Update(ctx context.Context, workshop *models.Workshop) error
	UpdateStatus(ctx context.Context, id string, status models.WorkshopStatus) error
	UpdateCapacity(ctx context.Context, id string, capacity int) error
}

// CreateWorkshopRequest is the payload for creating a workshop draft.
type CreateWorkshopRequest struct {
	Title           string  `json:"title" validate:"required,min=3,max=200"`
	Description     *string `json:"description" validate:"omitempty,max=2000"`
	OrganizerID     string  `json:"organizer_id" validate:"required"`
	StartsAt        string  `json:"starts_at" validate:"required"`
	DurationMinutes int     `json:"duration_minutes" validate:"required,min=1"`
	Capacity        int     `json:"capacity" validate:"required,min=1"`
	RewardAmount    *int    `json:"reward_amount" validate:"omitempty,min=0"`
}

// UpdateWorkshopRequest is the payload for editing workshop details.
// Capacity changes go through ResizeCapacity, not through here.
type UpdateWorkshopRequest struct {
	Title           *string `json:"title" validate:"omitempty,min=3,max=200"`
	Description     *string `json:"description" validate:"omitempty,max=2000"`
	StartsAt        *string `json:"starts_at"`
	DurationMinutes *int    `json:"duration_minutes" validate:"omitempty,min=1"`
	RewardAmount    *int    `json:"reward_amount" validate:"omitempty,min=0"`
}

var workshopTransitions = map[models.WorkshopStatus][]models.WorkshopStatus{
	models.WorkshopStatusDraft:     {models.WorkshopStatusPublished, models.WorkshopStatusCancelled},
	models.WorkshopStatusPublished: {models.WorkshopStatusCompleted, models.WorkshopStatusCancelled},
}

func workshopCanTransition(from, to models.WorkshopStatus) bool {
	for _, next := range workshopTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// WorkshopService manages the workshop lifecycle and capacity.
type WorkshopService struct {
	repo          workshopRepository
	cache         *repository.CacheRepository
	ledger        *CapacityLedger
	cacheTTL      time.Duration
	defaultReward int
	validator     *validator.Validate
	logger        *zap.Logger
	now           func() time.Time
}

// NewWorkshopService constructs the workshop service. defaultReward is
// applied to new workshops that do not specify a reward amount.
func NewWorkshopService(repo workshopRepository, cache *repository.CacheRepository, ledger *CapacityLedger, cacheTTL time.Duration, defaultReward int, validate *validator.Validate, logger *zap.Logger) *WorkshopService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkshopService{
		repo:          repo,
		cache:         cache,
		ledger:        ledger,
		cacheTTL:      cacheTTL,
		defaultReward: defaultReward,
		validator:     validate,
		logger:        logger,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func workshopCacheKey(id string) string {
	return "workshop:" + id
}

// Create registers a new workshop in DRAFT status and assigns its code.
func (s *WorkshopService) Create(ctx context.Context, req CreateWorkshopRequest) (*models.Workshop, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid workshop payload")
	}
	startsAt, err := time.Parse(time.RFC3339, req.StartsAt)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "starts_at must be RFC3339")
	}

	reward := s.defaultReward
	if req.RewardAmount != nil {
		reward = *req.RewardAmount
	}

	now := s.now()
	workshop := &models.Workshop{
		ID:              uuid.NewString(),
		Code:            generateWorkshopCode(),
		Title:           req.Title,
		Description:     req.Description,
		OrganizerID:     req.OrganizerID,
		StartsAt:        startsAt.UTC(),
		DurationMinutes: req.DurationMinutes,
		Capacity:        req.Capacity,
		Status:          models.WorkshopStatusDraft,
		RewardAmount:    reward,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Create(ctx, workshop); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to create workshop")
	}

	s.logger.Info("workshop created",
		zap.String("workshop_id", workshop.ID),
		zap.String("code", workshop.Code),
	)
	return workshop, nil
}

// Get returns one workshop with its derived seat usage, served from
// cache when possible.
func (s *WorkshopService) Get(ctx context.Context, id string) (*models.WorkshopDetail, error) {
	var cached models.WorkshopDetail
	if s.cache != nil {
		if err := s.cache.Get(ctx, workshopCacheKey(id), &cached); err == nil {
			return &cached, nil
		}
	}

	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "workshop not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load workshop")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, workshopCacheKey(id), detail, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache workshop", zap.String("workshop_id", id), zap.Error(err))
		}
	}
	return detail, nil
}

// List returns workshops matching the filter with pagination info.
func (s *WorkshopService) List(ctx context.Context, filter models.WorkshopFilter) ([]models.WorkshopDetail, *models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list workshops")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return items, pagination, nil
}

// Update edits the mutable details of a workshop. Completed and
// cancelled workshops are frozen.
func (s *WorkshopService) Update(ctx context.Context, id string, req UpdateWorkshopRequest) (*models.Workshop, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid workshop payload")
	}

	workshop, err := s.loadWorkshop(ctx, id)
	if err != nil {
		return nil, err
	}
	if workshop.Status == models.WorkshopStatusCompleted || workshop.Status == models.WorkshopStatusCancelled {
		return nil, appErrors.Clone(appErrors.ErrFinalized, "workshop can no longer be edited")
	}

	if req.Title != nil {
		workshop.Title = *req.Title
	}
	if req.Description != nil {
		workshop.Description = req.Description
	}
	if req.StartsAt != nil {
		startsAt, err := time.Parse(time.RFC3339, *req.StartsAt)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "starts_at must be RFC3339")
		}
		workshop.StartsAt = startsAt.UTC()
	}
	if req.DurationMinutes != nil {
		workshop.DurationMinutes = *req.DurationMinutes
	}
	if req.RewardAmount != nil {
		workshop.RewardAmount = *req.RewardAmount
	}
	workshop.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, workshop); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to update workshop")
	}
	s.invalidate(ctx, id)
	return workshop, nil
}

// ChangeStatus moves a workshop along its lifecycle.
func (s *WorkshopService) ChangeStatus(ctx context.Context, id string, to models.WorkshopStatus) (*models.Workshop, error) {
	if !to.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown workshop status")
	}

	workshop, err := s.loadWorkshop(ctx, id)
	if err != nil {
		return nil, err
	}
	if workshop.Status == to {
		return workshop, nil
	}
	if !workshopCanTransition(workshop.Status, to) {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition,
			fmt.Sprintf("cannot move workshop from %s to %s", workshop.Status, to))
	}
	if to == models.WorkshopStatusCompleted && !workshop.InProgressOrPast(s.now()) {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "workshop has not started")
	}

	if err := s.repo.UpdateStatus(ctx, id, to); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to change workshop status")
	}
	workshop.Status = to
	workshop.UpdatedAt = s.now()
	s.invalidate(ctx, id)

	s.logger.Info("workshop status changed",
		zap.String("workshop_id", id),
		zap.String("status", string(to)),
	)
	return workshop, nil
}

// ResizeCapacity changes the seat capacity, refusing any shrink below
// the number of currently seated registrations.
func (s *WorkshopService) ResizeCapacity(ctx context.Context, id string, capacity int) (*models.Workshop, error) {
	if capacity < 1 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "capacity must be at least 1")
	}

	workshop, err := s.loadWorkshop(ctx, id)
	if err != nil {
		return nil, err
	}
	if workshop.Status == models.WorkshopStatusCompleted || workshop.Status == models.WorkshopStatusCancelled {
		return nil, appErrors.Clone(appErrors.ErrFinalized, "workshop can no longer be edited")
	}

	err = s.ledger.Resize(ctx, id, capacity, func(resizeCtx context.Context) error {
		return s.repo.UpdateCapacity(resizeCtx, id, capacity)
	})
	if err != nil {
		return nil, err
	}

	workshop.Capacity = capacity
	workshop.UpdatedAt = s.now()
	s.invalidate(ctx, id)
	return workshop, nil
}

func (s *WorkshopService) loadWorkshop(ctx context.Context, id string) (*models.Workshop, error) {
	workshop, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "workshop not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load workshop")
	}
	return workshop, nil
}

func (s *WorkshopService) invalidate(ctx context.Context, id string) {
	if s.cache != nil {
		s.cache.Delete(ctx, workshopCacheKey(id))
	}
}

func generateWorkshopCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "WS-" + strings.ToUpper(raw[:8])
}

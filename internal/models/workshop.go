package models

import "time"

// WorkshopStatus represents the lifecycle of a workshop.
type WorkshopStatus string

// Possible workshop statuses.
const (
	WorkshopStatusDraft     WorkshopStatus = "DRAFT"
	WorkshopStatusPublished WorkshopStatus = "PUBLISHED"
	WorkshopStatusCompleted WorkshopStatus = "COMPLETED"
	WorkshopStatusCancelled WorkshopStatus = "CANCELLED"
)

// Valid returns true when the status is a supported value.
func (s WorkshopStatus) Valid() bool {
	switch s {
	case WorkshopStatusDraft, WorkshopStatusPublished, WorkshopStatusCompleted, WorkshopStatusCancelled:
		return true
	default:
		return false
	}
}

// Workshop is a scheduled group session with a fixed seat capacity.
// Workshops are never physically deleted while registrations reference
// them; cancellation is a status change.
type Workshop struct {
	ID              string         `db:"id" json:"id"`
	Code            string         `db:"code" json:"code"`
	Title           string         `db:"title" json:"title"`
	Description     *string        `db:"description" json:"description,omitempty"`
	OrganizerID     string         `db:"organizer_id" json:"organizer_id"`
	StartsAt        time.Time      `db:"starts_at" json:"starts_at"`
	DurationMinutes int            `db:"duration_minutes" json:"duration_minutes"`
	Capacity        int            `db:"capacity" json:"capacity"`
	Status          WorkshopStatus `db:"status" json:"status"`
	RewardAmount    int            `db:"reward_amount" json:"reward_amount"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}

// InProgressOrPast reports whether the scheduled start has been reached.
func (w *Workshop) InProgressOrPast(now time.Time) bool {
	return !now.Before(w.StartsAt)
}

// WorkshopDetail extends Workshop with derived seat usage.
type WorkshopDetail struct {
	Workshop
	SeatsBooked int `db:"seats_booked" json:"seats_booked"`
}

// WorkshopFilter defines filter criteria for listing workshops.
type WorkshopFilter struct {
	Status      WorkshopStatus
	OrganizerID string
	Search      string
	From        *time.Time
	To          *time.Time
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   string
}

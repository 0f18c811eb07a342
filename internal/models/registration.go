package models

import "time"

// RegistrationStatus represents the lifecycle of a registration.
type RegistrationStatus string

// Possible registration statuses.
const (
	RegistrationStatusInterested RegistrationStatus = "INTERESTED"
	RegistrationStatusBooked     RegistrationStatus = "BOOKED"
	RegistrationStatusAttended   RegistrationStatus = "ATTENDED"
	RegistrationStatusCancelled  RegistrationStatus = "CANCELLED"
)

// Valid returns true when the status is a supported value.
func (s RegistrationStatus) Valid() bool {
	switch s {
	case RegistrationStatusInterested, RegistrationStatusBooked, RegistrationStatusAttended, RegistrationStatusCancelled:
		return true
	default:
		return false
	}
}

// Seated reports whether the status occupies a workshop seat.
func (s RegistrationStatus) Seated() bool {
	return s == RegistrationStatusBooked || s == RegistrationStatusAttended
}

// AttendanceOutcome is the terminal attendance result attached to a
// booked registration at session time.
type AttendanceOutcome string

const (
	OutcomeAttended AttendanceOutcome = "ATTENDED"
	OutcomeAbsent   AttendanceOutcome = "ABSENT"
)

// Valid returns true when the outcome is a supported value.
func (o AttendanceOutcome) Valid() bool {
	return o == OutcomeAttended || o == OutcomeAbsent
}

// Registration pairs a participant with a workshop. At most one active
// (non-cancelled) registration exists per (workshop, participant) pair;
// cancelled rows are kept for history and a fresh registration is created
// on re-registration.
type Registration struct {
	ID              string             `db:"id" json:"id"`
	WorkshopID      string             `db:"workshop_id" json:"workshop_id"`
	ParticipantID   string             `db:"participant_id" json:"participant_id"`
	Status          RegistrationStatus `db:"status" json:"status"`
	Outcome         *AttendanceOutcome `db:"outcome" json:"outcome,omitempty"`
	DurationMinutes *int               `db:"duration_minutes" json:"duration_minutes,omitempty"`
	RegisteredAt    time.Time          `db:"registered_at" json:"registered_at"`
	CancelledAt     *time.Time         `db:"cancelled_at" json:"cancelled_at,omitempty"`
	UpdatedAt       time.Time          `db:"updated_at" json:"updated_at"`
}

// AttendedMinutes returns the recorded duration, treating missing
// records and absences as zero minutes present.
func (r *Registration) AttendedMinutes() int {
	if r.Outcome != nil && *r.Outcome == OutcomeAbsent {
		return 0
	}
	if r.DurationMinutes == nil {
		return 0
	}
	return *r.DurationMinutes
}

// RegistrationDetail enriches Registration with workshop info for
// participant history views.
type RegistrationDetail struct {
	Registration
	WorkshopTitle    string         `db:"workshop_title" json:"workshop_title"`
	WorkshopStartsAt time.Time      `db:"workshop_starts_at" json:"workshop_starts_at"`
	WorkshopStatus   WorkshopStatus `db:"workshop_status" json:"workshop_status"`
}

// RegistrationFilter provides filters for listing registrations.
type RegistrationFilter struct {
	WorkshopID    string
	ParticipantID string
	Status        RegistrationStatus
	Page          int
	PageSize      int
	SortBy        string
	SortOrder     string
}

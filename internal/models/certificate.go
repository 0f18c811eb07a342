package models

import "time"

// Certificate records a certified workshop participation. At most one
// certificate exists per (workshop, participant) pair; issuance is
// idempotent.
type Certificate struct {
	ID            string    `db:"id" json:"id"`
	WorkshopID    string    `db:"workshop_id" json:"workshop_id"`
	ParticipantID string    `db:"participant_id" json:"participant_id"`
	Number        string    `db:"number" json:"number"`
	IssuedAt      time.Time `db:"issued_at" json:"issued_at"`
}

// CertificateDetail extends Certificate with workshop context.
type CertificateDetail struct {
	Certificate
	WorkshopTitle    string    `db:"workshop_title" json:"workshop_title"`
	WorkshopStartsAt time.Time `db:"workshop_starts_at" json:"workshop_starts_at"`
}

// EligibilityResult is a computed judgment about certificate and reward
// qualification. It is derived from attendance data and never stored.
type EligibilityResult struct {
	AttendancePercentage float64 `json:"attendance_percentage"`
	CertificateEligible  bool    `json:"certificate_eligible"`
	RewardEligible       bool    `json:"reward_eligible"`
}

package events

import "time"

// Type identifies a domain event.
type Type string

// Domain events emitted by the registration lifecycle. Consumers such as
// the notification dispatcher subscribe independently; publishers never
// block on their processing.
const (
	TypeRegistrationBooked    Type = "registration.booked"
	TypeRegistrationCancelled Type = "registration.cancelled"
	TypeAttendanceRecorded    Type = "attendance.recorded"
	TypeCertificateIssued     Type = "certificate.issued"
	TypeRewardIssued          Type = "reward.issued"
)

// Event carries the workshop/participant identifiers and an optional
// payload for a single domain occurrence.
type Event struct {
	Type          Type        `json:"type"`
	WorkshopID    string      `json:"workshop_id"`
	ParticipantID string      `json:"participant_id"`
	OccurredAt    time.Time   `json:"occurred_at"`
	Payload       interface{} `json:"payload,omitempty"`
}

// CertificatePayload accompanies TypeCertificateIssued.
type CertificatePayload struct {
	CertificateID string `json:"certificate_id"`
	Number        string `json:"number"`
}

// RewardPayload accompanies TypeRewardIssued.
type RewardPayload struct {
	TransactionID string `json:"transaction_id"`
	Amount        int    `json:"amount"`
	Balance       int    `json:"balance"`
}

// AttendancePayload accompanies TypeAttendanceRecorded.
type AttendancePayload struct {
	Outcome         string `json:"outcome"`
	DurationMinutes int    `json:"duration_minutes"`
}

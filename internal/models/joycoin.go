package models

import "time"

// JoyCoinTransactionType is the business reason for a ledger entry.
type JoyCoinTransactionType string

const (
	JoyCoinTypeWorkshopAttendance JoyCoinTransactionType = "WORKSHOP_ATTENDANCE"
	JoyCoinTypeCertificateEarned  JoyCoinTransactionType = "CERTIFICATE_EARNED"
	JoyCoinTypeReward             JoyCoinTransactionType = "REWARD"
	JoyCoinTypeDeduction          JoyCoinTransactionType = "DEDUCTION"
)

// Valid returns true when the type is a supported value.
func (t JoyCoinTransactionType) Valid() bool {
	switch t {
	case JoyCoinTypeWorkshopAttendance, JoyCoinTypeCertificateEarned, JoyCoinTypeReward, JoyCoinTypeDeduction:
		return true
	default:
		return false
	}
}

// JoyCoinTransaction is an append-only ledger entry. The running balance
// for a participant equals the sum of all their transaction amounts.
type JoyCoinTransaction struct {
	ID             string                 `db:"id" json:"id"`
	ParticipantID  string                 `db:"participant_id" json:"participant_id"`
	Type           JoyCoinTransactionType `db:"type" json:"type"`
	Amount         int                    `db:"amount" json:"amount"`
	Balance        int                    `db:"balance" json:"balance"`
	WorkshopID     *string                `db:"workshop_id" json:"workshop_id,omitempty"`
	RegistrationID *string                `db:"registration_id" json:"registration_id,omitempty"`
	Note           *string                `db:"note" json:"note,omitempty"`
	CreatedAt      time.Time              `db:"created_at" json:"created_at"`
}

// JoyCoinStatement bundles a participant's history with the current balance.
type JoyCoinStatement struct {
	Balance      int                  `json:"balance"`
	Transactions []JoyCoinTransaction `json:"transactions"`
}

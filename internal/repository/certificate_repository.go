package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/joyworks/workshop-api/internal/models"
)

// CertificateRepository handles persistence of certificates.
type CertificateRepository struct {
	db *sqlx.DB
}

// NewCertificateRepository constructs the repository.
func NewCertificateRepository(db *sqlx.DB) *CertificateRepository {
	return &CertificateRepository{db: db}
}

// FindByPair returns the certificate for a (workshop, participant) pair.
func (r *CertificateRepository) FindByPair(ctx context.Context, workshopID, participantID string) (*models.Certificate, error) {
	const query = `SELECT id, workshop_id, participant_id, number, issued_at FROM certificates
        WHERE workshop_id = $1 AND participant_id = $2`
	var certificate models.Certificate
	if err := r.db.GetContext(ctx, &certificate, query, workshopID, participantID); err != nil {
		return nil, err
	}
	return &certificate, nil
}

// FindByNumber looks a certificate up by its public number.
func (r *CertificateRepository) FindByNumber(ctx context.Context, number string) (*models.CertificateDetail, error) {
	const query = `SELECT c.id, c.workshop_id, c.participant_id, c.number, c.issued_at,
        w.title AS workshop_title, w.starts_at AS workshop_starts_at
        FROM certificates c JOIN workshops w ON w.id = c.workshop_id
        WHERE c.number = $1`
	var detail models.CertificateDetail
	if err := r.db.GetContext(ctx, &detail, query, number); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ListByParticipant returns a participant's certificates, newest first.
func (r *CertificateRepository) ListByParticipant(ctx context.Context, participantID string) ([]models.CertificateDetail, error) {
	const query = `SELECT c.id, c.workshop_id, c.participant_id, c.number, c.issued_at,
        w.title AS workshop_title, w.starts_at AS workshop_starts_at
        FROM certificates c JOIN workshops w ON w.id = c.workshop_id
        WHERE c.participant_id = $1 ORDER BY c.issued_at DESC`
	var certificates []models.CertificateDetail
	if err := r.db.SelectContext(ctx, &certificates, query, participantID); err != nil {
		return nil, fmt.Errorf("list certificates: %w", err)
	}
	return certificates, nil
}

// NextSequence allocates the next per-workshop certificate sequence
// number. The upsert increments the counter row atomically, so two
// concurrent issuances in one workshop can never draw the same number.
func (r *CertificateRepository) NextSequence(ctx context.Context, workshopID string) (int, error) {
	const query = `INSERT INTO certificate_sequences (workshop_id, last_seq) VALUES ($1, 1)
        ON CONFLICT (workshop_id) DO UPDATE SET last_seq = certificate_sequences.last_seq + 1
        RETURNING last_seq`
	var seq int
	if err := r.db.GetContext(ctx, &seq, query, workshopID); err != nil {
		return 0, fmt.Errorf("certificate sequence: %w", err)
	}
	return seq, nil
}

// Create persists a new certificate. The unique constraint on
// (workshop_id, participant_id) backs the issuance idempotence check.
func (r *CertificateRepository) Create(ctx context.Context, certificate *models.Certificate) error {
	if certificate.ID == "" {
		certificate.ID = uuid.NewString()
	}
	if certificate.IssuedAt.IsZero() {
		certificate.IssuedAt = time.Now().UTC()
	}
	const query = `INSERT INTO certificates (id, workshop_id, participant_id, number, issued_at)
        VALUES (:id, :workshop_id, :participant_id, :number, :issued_at)`
	if _, err := r.db.NamedExecContext(ctx, query, certificate); err != nil {
		return fmt.Errorf("create certificate: %w", err)
	}
	return nil
}

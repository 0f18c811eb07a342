package service

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/joyworks/workshop-api/internal/models"
	appErrors "github.com/joyworks/workshop-api/pkg/errors"
)

type certificateReader interface {
	FindByNumber(ctx context.Context, number string) (*models.CertificateDetail, error)
	ListByParticipant(ctx context.Context, participantID string) ([]models.CertificateDetail, error)
}

// CertificateService serves issued certificates. Issuance lives in the
// completion flow; this is the read side.
type CertificateService struct {
	repo   certificateReader
	logger *zap.Logger
}

// NewCertificateService constructs the certificate service.
func NewCertificateService(repo certificateReader, logger *zap.Logger) *CertificateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CertificateService{repo: repo, logger: logger}
}

// GetByNumber resolves a certificate by its public number, for
// verification by third parties.
func (s *CertificateService) GetByNumber(ctx context.Context, number string) (*models.CertificateDetail, error) {
	certificate, err := s.repo.FindByNumber(ctx, number)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "certificate not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load certificate")
	}
	return certificate, nil
}

// ListForParticipant returns all certificates a participant has earned.
func (s *CertificateService) ListForParticipant(ctx context.Context, participantID string) ([]models.CertificateDetail, error) {
	certificates, err := s.repo.ListByParticipant(ctx, participantID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list certificates")
	}
	return certificates, nil
}

package handler

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/joyworks/workshop-api/internal/models"
	"github.com/joyworks/workshop-api/internal/service"
)

type stubCertificateReader struct {
	byNumber map[string]*models.CertificateDetail
}

func (s *stubCertificateReader) FindByNumber(ctx context.Context, number string) (*models.CertificateDetail, error) {
	if detail, ok := s.byNumber[number]; ok {
		return detail, nil
	}
	return nil, sql.ErrNoRows
}

func (s *stubCertificateReader) ListByParticipant(ctx context.Context, participantID string) ([]models.CertificateDetail, error) {
	var list []models.CertificateDetail
	for _, detail := range s.byNumber {
		if detail.ParticipantID == participantID {
			list = append(list, *detail)
		}
	}
	return list, nil
}

func certificateRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	reader := &stubCertificateReader{byNumber: map[string]*models.CertificateDetail{
		"CERT-GO101-0001-42": {
			Certificate: models.Certificate{
				ID:            "cert-1",
				WorkshopID:    "ws-1",
				ParticipantID: "p-1",
				Number:        "CERT-GO101-0001-42",
				IssuedAt:      time.Now().UTC(),
			},
			WorkshopTitle: "Go Workshop",
		},
	}}
	h := NewCertificateHandler(service.NewCertificateService(reader, nil))
	r := gin.New()
	r.GET("/certificates/:number", h.GetByNumber)
	r.GET("/participants/:participantId/certificates", h.ListForParticipant)
	return r
}

func TestCertificateVerification(t *testing.T) {
	r := certificateRouter()
	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/certificates/CERT-GO101-0001-42", nil)

	r.ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "Go Workshop")
}

func TestCertificateVerificationUnknownNumber(t *testing.T) {
	r := certificateRouter()
	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/certificates/CERT-XX-9999-00", nil)

	r.ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "NOT_FOUND")
}

func TestCertificateListForParticipant(t *testing.T) {
	r := certificateRouter()
	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/participants/p-1/certificates", nil)

	r.ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "CERT-GO101-0001-42")
}

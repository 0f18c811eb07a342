package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joyworks/workshop-api/internal/models"
)

func newCertificateMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestCertificateRepositoryFindByPair(t *testing.T) {
	db, mock, cleanup := newCertificateMock(t)
	defer cleanup()
	repo := NewCertificateRepository(db)

	rows := sqlmock.NewRows([]string{"id", "workshop_id", "participant_id", "number", "issued_at"}).
		AddRow("cert-1", "ws-1", "p-1", "CERT-GO101-0001-42", time.Now())
	mock.ExpectQuery(`SELECT id, workshop_id, participant_id, number, issued_at FROM certificates\s+WHERE workshop_id = \$1 AND participant_id = \$2`).
		WithArgs("ws-1", "p-1").
		WillReturnRows(rows)

	certificate, err := repo.FindByPair(context.Background(), "ws-1", "p-1")
	require.NoError(t, err)
	assert.Equal(t, "CERT-GO101-0001-42", certificate.Number)
}

func TestCertificateRepositoryFindByPairMiss(t *testing.T) {
	db, mock, cleanup := newCertificateMock(t)
	defer cleanup()
	repo := NewCertificateRepository(db)

	mock.ExpectQuery("SELECT id, workshop_id, participant_id, number, issued_at FROM certificates").
		WithArgs("ws-1", "p-404").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByPair(context.Background(), "ws-1", "p-404")
	assert.Equal(t, sql.ErrNoRows, err, "the miss surfaces unwrapped for callers to branch on")
}

func TestCertificateRepositoryNextSequence(t *testing.T) {
	db, mock, cleanup := newCertificateMock(t)
	defer cleanup()
	repo := NewCertificateRepository(db)

	mock.ExpectQuery(`INSERT INTO certificate_sequences \(workshop_id, last_seq\) VALUES \(\$1, 1\)\s+ON CONFLICT \(workshop_id\) DO UPDATE SET last_seq = certificate_sequences\.last_seq \+ 1\s+RETURNING last_seq`).
		WithArgs("ws-1").
		WillReturnRows(sqlmock.NewRows([]string{"last_seq"}).AddRow(7))

	seq, err := repo.NextSequence(context.Background(), "ws-1")
	require.NoError(t, err)
	assert.Equal(t, 7, seq)
}

func TestCertificateRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newCertificateMock(t)
	defer cleanup()
	repo := NewCertificateRepository(db)

	mock.ExpectExec("INSERT INTO certificates").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	certificate := &models.Certificate{
		WorkshopID:    "ws-1",
		ParticipantID: "p-1",
		Number:        "CERT-GO101-0007-13",
	}
	err := repo.Create(context.Background(), certificate)
	require.NoError(t, err)
	assert.NotEmpty(t, certificate.ID)
	assert.False(t, certificate.IssuedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

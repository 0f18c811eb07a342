package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joyworks/workshop-api/internal/models"
	appErrors "github.com/joyworks/workshop-api/pkg/errors"
)

func (m *mockRegistrationRepo) RecordOutcome(ctx context.Context, id string, from, to models.RegistrationStatus, outcome models.AttendanceOutcome, durationMinutes *int) error {
	for key, reg := range m.registrations {
		if reg.ID == id {
			if reg.Status != from {
				return sql.ErrNoRows
			}
			reg.Status = to
			reg.Outcome = &outcome
			reg.DurationMinutes = durationMinutes
			m.registrations[key] = reg
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *mockRegistrationRepo) ClearOutcome(ctx context.Context, id string) error {
	for key, reg := range m.registrations {
		if reg.ID == id {
			if reg.Status != models.RegistrationStatusAttended {
				return sql.ErrNoRows
			}
			reg.Status = models.RegistrationStatusBooked
			reg.Outcome = nil
			reg.DurationMinutes = nil
			m.registrations[key] = reg
			return nil
		}
	}
	return sql.ErrNoRows
}

type mockIssuer struct {
	calls   []string
	err     error
	results map[string]*IssueResult
}

func (m *mockIssuer) EvaluateAndIssue(ctx context.Context, registration *models.Registration) (*IssueResult, error) {
	m.calls = append(m.calls, registration.ParticipantID)
	if m.err != nil {
		return nil, m.err
	}
	if result, ok := m.results[registration.ParticipantID]; ok {
		return result, nil
	}
	return &IssueResult{}, nil
}

type attendanceFixture struct {
	svc    *AttendanceService
	repo   *mockRegistrationRepo
	certs  *mockCertificateRepo
	issuer *mockIssuer
}

func newAttendanceFixture(t *testing.T, booked ...string) *attendanceFixture {
	t.Helper()
	repo := &mockRegistrationRepo{registrations: make(map[string]models.Registration)}
	workshops := &mockWorkshopReader{workshops: map[string]*models.Workshop{
		"ws-1": {
			ID:              "ws-1",
			Code:            "GO101",
			Status:          models.WorkshopStatusPublished,
			StartsAt:        time.Now().UTC().Add(-2 * time.Hour),
			DurationMinutes: 120,
			Capacity:        10,
		},
	}}
	certs := &mockCertificateRepo{certificates: make(map[string]models.Certificate)}
	issuer := &mockIssuer{}
	svc := NewAttendanceService(repo, workshops, certs, issuer, nil, nil, nil, nil)

	ctx := context.Background()
	for _, participantID := range booked {
		require.NoError(t, repo.Create(ctx, &models.Registration{
			WorkshopID:    "ws-1",
			ParticipantID: participantID,
			Status:        models.RegistrationStatusBooked,
			RegisteredAt:  time.Now().UTC(),
		}))
	}
	return &attendanceFixture{svc: svc, repo: repo, certs: certs, issuer: issuer}
}

func TestBulkRecordMixedOutcomes(t *testing.T) {
	f := newAttendanceFixture(t, "p-1", "p-2")
	ctx := context.Background()

	minutes := 100
	result, err := f.svc.BulkRecord(ctx, "ws-1", BulkRecordRequest{Items: []AttendanceItem{
		{ParticipantID: "p-1", Outcome: "ATTENDED", DurationMinutes: &minutes},
		{ParticipantID: "p-2", Outcome: "ABSENT"},
	}})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 2, result.Applied)

	attended, err := f.repo.FindActive(ctx, "ws-1", "p-1")
	require.NoError(t, err)
	assert.Equal(t, models.RegistrationStatusAttended, attended.Status)
	assert.Equal(t, 100, *attended.DurationMinutes)

	absent, err := f.repo.FindActive(ctx, "ws-1", "p-2")
	require.NoError(t, err)
	assert.Equal(t, models.RegistrationStatusBooked, absent.Status, "absence keeps the booked status")
	assert.Equal(t, models.OutcomeAbsent, *absent.Outcome)
	assert.Equal(t, 0, *absent.DurationMinutes)

	assert.Equal(t, []string{"p-1"}, f.issuer.calls, "only attended entries trigger issuance")
}

func TestBulkRecordPartialFailure(t *testing.T) {
	f := newAttendanceFixture(t, "p-1")
	ctx := context.Background()

	result, err := f.svc.BulkRecord(ctx, "ws-1", BulkRecordRequest{Items: []AttendanceItem{
		{ParticipantID: "p-unknown", Outcome: "ATTENDED"},
		{ParticipantID: "p-1", Outcome: "ATTENDED"},
	}})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Applied)
	require.NotNil(t, result.Entries[0].Error)
	assert.Equal(t, appErrors.ErrNotFound.Code, result.Entries[0].Error.Code)
	assert.True(t, result.Entries[1].Applied, "one bad entry must not abort the rest")
}

func TestBulkRecordDuplicateParticipantLastWins(t *testing.T) {
	f := newAttendanceFixture(t, "p-1")
	ctx := context.Background()

	early := 30
	late := 110
	result, err := f.svc.BulkRecord(ctx, "ws-1", BulkRecordRequest{Items: []AttendanceItem{
		{ParticipantID: "p-1", Outcome: "ATTENDED", DurationMinutes: &early},
		{ParticipantID: "p-1", Outcome: "ATTENDED", DurationMinutes: &late},
	}})
	require.NoError(t, err)

	assert.False(t, result.Entries[0].Applied)
	assert.NotEmpty(t, result.Entries[0].Warning)
	assert.True(t, result.Entries[1].Applied)

	reg, err := f.repo.FindActive(ctx, "ws-1", "p-1")
	require.NoError(t, err)
	assert.Equal(t, 110, *reg.DurationMinutes)
}

func TestBulkRecordClampsDuration(t *testing.T) {
	f := newAttendanceFixture(t, "p-1")
	ctx := context.Background()

	minutes := 500
	_, err := f.svc.BulkRecord(ctx, "ws-1", BulkRecordRequest{Items: []AttendanceItem{
		{ParticipantID: "p-1", Outcome: "ATTENDED", DurationMinutes: &minutes},
	}})
	require.NoError(t, err)

	reg, err := f.repo.FindActive(ctx, "ws-1", "p-1")
	require.NoError(t, err)
	assert.Equal(t, 120, *reg.DurationMinutes, "duration is clamped to the workshop length")
}

func TestBulkRecordDefaultsDurationToFullLength(t *testing.T) {
	f := newAttendanceFixture(t, "p-1")
	ctx := context.Background()

	_, err := f.svc.BulkRecord(ctx, "ws-1", BulkRecordRequest{Items: []AttendanceItem{
		{ParticipantID: "p-1", Outcome: "ATTENDED"},
	}})
	require.NoError(t, err)

	reg, err := f.repo.FindActive(ctx, "ws-1", "p-1")
	require.NoError(t, err)
	assert.Equal(t, 120, *reg.DurationMinutes)
}

func TestBulkRecordRejectsFutureWorkshop(t *testing.T) {
	f := newAttendanceFixture(t, "p-1")
	f.svc.workshops.(*mockWorkshopReader).workshops["ws-1"].StartsAt = time.Now().UTC().Add(time.Hour)
	ctx := context.Background()

	_, err := f.svc.BulkRecord(ctx, "ws-1", BulkRecordRequest{Items: []AttendanceItem{
		{ParticipantID: "p-1", Outcome: "ATTENDED"},
	}})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrPreconditionFailed))
}

func TestBulkRecordRequiresBookedRegistration(t *testing.T) {
	f := newAttendanceFixture(t)
	ctx := context.Background()
	require.NoError(t, f.repo.Create(ctx, &models.Registration{
		WorkshopID:    "ws-1",
		ParticipantID: "p-1",
		Status:        models.RegistrationStatusInterested,
	}))

	result, err := f.svc.BulkRecord(ctx, "ws-1", BulkRecordRequest{Items: []AttendanceItem{
		{ParticipantID: "p-1", Outcome: "ATTENDED"},
	}})
	require.NoError(t, err)
	require.NotNil(t, result.Entries[0].Error)
	assert.Equal(t, appErrors.ErrInvalidTransition.Code, result.Entries[0].Error.Code)
}

func TestBulkRecordIssuanceFailureSurfacedOnEntry(t *testing.T) {
	f := newAttendanceFixture(t, "p-1")
	f.issuer.err = appErrors.Clone(appErrors.ErrPersistence, "certificate store down")
	ctx := context.Background()

	result, err := f.svc.BulkRecord(ctx, "ws-1", BulkRecordRequest{Items: []AttendanceItem{
		{ParticipantID: "p-1", Outcome: "ATTENDED"},
	}})
	require.NoError(t, err)

	entry := result.Entries[0]
	assert.True(t, entry.Applied, "the attendance record stands even when issuance fails")
	assert.Nil(t, entry.Error)
	require.NotNil(t, entry.IssueError, "issuance failures must be visible to the caller")
	assert.Equal(t, appErrors.ErrPersistence.Code, entry.IssueError.Code)

	attended, err := f.repo.FindActive(ctx, "ws-1", "p-1")
	require.NoError(t, err)
	assert.Equal(t, models.RegistrationStatusAttended, attended.Status)
}

func TestReissueAfterFailedIssuance(t *testing.T) {
	f := newAttendanceFixture(t, "p-1")
	f.issuer.err = appErrors.Clone(appErrors.ErrPersistence, "certificate store down")
	ctx := context.Background()

	result, err := f.svc.BulkRecord(ctx, "ws-1", BulkRecordRequest{Items: []AttendanceItem{
		{ParticipantID: "p-1", Outcome: "ATTENDED"},
	}})
	require.NoError(t, err)
	require.NotNil(t, result.Entries[0].IssueError)

	f.issuer.err = nil
	f.issuer.results = map[string]*IssueResult{
		"p-1": {CertificateIssued: true, CertificateNumber: "CERT-GO101-0001-11"},
	}

	issue, err := f.svc.Reissue(ctx, "ws-1", "p-1")
	require.NoError(t, err)
	assert.True(t, issue.CertificateIssued)
	assert.Equal(t, []string{"p-1", "p-1"}, f.issuer.calls)
}

func TestReissueRequiresAttended(t *testing.T) {
	f := newAttendanceFixture(t, "p-1")
	ctx := context.Background()

	_, err := f.svc.Reissue(ctx, "ws-1", "p-1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrPreconditionFailed))
	assert.Empty(t, f.issuer.calls)
}

func TestUnmarkRevertsToBooked(t *testing.T) {
	f := newAttendanceFixture(t, "p-1")
	ctx := context.Background()

	_, err := f.svc.BulkRecord(ctx, "ws-1", BulkRecordRequest{Items: []AttendanceItem{
		{ParticipantID: "p-1", Outcome: "ATTENDED"},
	}})
	require.NoError(t, err)

	reg, err := f.svc.Unmark(ctx, "ws-1", "p-1")
	require.NoError(t, err)
	assert.Equal(t, models.RegistrationStatusBooked, reg.Status)
	assert.Nil(t, reg.Outcome)
	assert.Nil(t, reg.DurationMinutes)
}

func TestUnmarkThenRemarkKeepsLatestDuration(t *testing.T) {
	f := newAttendanceFixture(t, "p-1")
	ctx := context.Background()

	first := 90
	_, err := f.svc.BulkRecord(ctx, "ws-1", BulkRecordRequest{Items: []AttendanceItem{
		{ParticipantID: "p-1", Outcome: "ATTENDED", DurationMinutes: &first},
	}})
	require.NoError(t, err)

	_, err = f.svc.Unmark(ctx, "ws-1", "p-1")
	require.NoError(t, err)

	second := 110
	_, err = f.svc.BulkRecord(ctx, "ws-1", BulkRecordRequest{Items: []AttendanceItem{
		{ParticipantID: "p-1", Outcome: "ATTENDED", DurationMinutes: &second},
	}})
	require.NoError(t, err)

	reg, err := f.repo.FindActive(ctx, "ws-1", "p-1")
	require.NoError(t, err)
	assert.Equal(t, 110, *reg.DurationMinutes)
}

func TestUnmarkRefusedOnceCertificateIssued(t *testing.T) {
	f := newAttendanceFixture(t, "p-1")
	ctx := context.Background()

	_, err := f.svc.BulkRecord(ctx, "ws-1", BulkRecordRequest{Items: []AttendanceItem{
		{ParticipantID: "p-1", Outcome: "ATTENDED"},
	}})
	require.NoError(t, err)

	require.NoError(t, f.certs.Create(ctx, &models.Certificate{
		WorkshopID:    "ws-1",
		ParticipantID: "p-1",
		Number:        "CERT-GO101-0001-42",
	}))

	_, err = f.svc.Unmark(ctx, "ws-1", "p-1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrFinalized))
}

func TestUnmarkRequiresAttendedStatus(t *testing.T) {
	f := newAttendanceFixture(t, "p-1")
	ctx := context.Background()

	_, err := f.svc.Unmark(ctx, "ws-1", "p-1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidTransition))
}

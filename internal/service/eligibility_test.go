package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joyworks/workshop-api/internal/models"
)

func attendedRegistration(minutes int) *models.Registration {
	outcome := models.OutcomeAttended
	return &models.Registration{
		Status:          models.RegistrationStatusAttended,
		Outcome:         &outcome,
		DurationMinutes: &minutes,
	}
}

func TestAttendancePercentage(t *testing.T) {
	assert.InDelta(t, 83.33, AttendancePercentage(100, 120), 0.01)
	assert.InDelta(t, 100, AttendancePercentage(120, 120), 0.001)
	assert.InDelta(t, 0, AttendancePercentage(0, 120), 0.001)
}

func TestAttendancePercentageClamps(t *testing.T) {
	assert.Equal(t, 100.0, AttendancePercentage(500, 120))
	assert.Equal(t, 0.0, AttendancePercentage(-10, 120))
}

func TestAttendancePercentageZeroLengthWorkshop(t *testing.T) {
	assert.Equal(t, 0.0, AttendancePercentage(60, 0))
	assert.Equal(t, 0.0, AttendancePercentage(60, -5))
}

func TestEvaluateCertificateThreshold(t *testing.T) {
	workshop := &models.Workshop{DurationMinutes: 120}

	result := Evaluate(attendedRegistration(90), workshop)
	assert.True(t, result.CertificateEligible, "90/120 is exactly 75%%")

	result = Evaluate(attendedRegistration(89), workshop)
	assert.False(t, result.CertificateEligible)
	assert.True(t, result.RewardEligible, "reward does not require the threshold")
}

func TestEvaluateMonotonic(t *testing.T) {
	workshop := &models.Workshop{DurationMinutes: 120}
	prev := false
	for minutes := 0; minutes <= 120; minutes += 5 {
		result := Evaluate(attendedRegistration(minutes), workshop)
		if prev {
			assert.True(t, result.CertificateEligible, "eligibility must not flip back off as minutes grow (at %d)", minutes)
		}
		prev = result.CertificateEligible
	}
}

func TestEvaluateRequiresAttendedStatus(t *testing.T) {
	workshop := &models.Workshop{DurationMinutes: 60}
	minutes := 60
	registration := &models.Registration{
		Status:          models.RegistrationStatusBooked,
		DurationMinutes: &minutes,
	}

	result := Evaluate(registration, workshop)
	assert.False(t, result.CertificateEligible)
	assert.False(t, result.RewardEligible)
}

func TestEvaluateAbsentCountsAsZero(t *testing.T) {
	workshop := &models.Workshop{DurationMinutes: 60}
	outcome := models.OutcomeAbsent
	minutes := 60
	registration := &models.Registration{
		Status:          models.RegistrationStatusBooked,
		Outcome:         &outcome,
		DurationMinutes: &minutes,
	}

	result := Evaluate(registration, workshop)
	assert.Equal(t, 0.0, result.AttendancePercentage)
}

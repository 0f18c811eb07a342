package service

import "github.com/joyworks/workshop-api/internal/models"

// CertificateThresholdPercent is the minimum attendance percentage for
// certificate eligibility.
const CertificateThresholdPercent = 75.0

// AttendancePercentage derives how much of the workshop a participant
// was present for, clamped to [0, 100]. A zero-length workshop yields 0.
func AttendancePercentage(durationMinutes, workshopMinutes int) float64 {
	if workshopMinutes <= 0 {
		return 0
	}
	pct := float64(durationMinutes) / float64(workshopMinutes) * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// Evaluate computes certificate and reward eligibility for a
// registration. It is a pure function: no writes, and the same inputs
// always yield the same result. Certificate eligibility requires the
// attendance threshold; the reward only requires attended status. The
// two policies are independent.
func Evaluate(registration *models.Registration, workshop *models.Workshop) models.EligibilityResult {
	pct := AttendancePercentage(registration.AttendedMinutes(), workshop.DurationMinutes)
	return models.EligibilityResult{
		AttendancePercentage: pct,
		CertificateEligible:  registration.Status == models.RegistrationStatusAttended && pct >= CertificateThresholdPercent,
		RewardEligible:       registration.Status == models.RegistrationStatusAttended,
	}
}

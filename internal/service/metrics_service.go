package service

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the
// registration lifecycle and the HTTP surface.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	bookingsTotal      prometheus.Counter
	capacityRejections *prometheus.CounterVec
	attendanceTotal    *prometheus.CounterVec
	certificatesTotal  prometheus.Counter
	coinsAwardedTotal  prometheus.Counter
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	bookingsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "workshop_bookings_total",
		Help: "Total successful seat bookings",
	})

	capacityRejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "workshop_capacity_rejections_total",
		Help: "Booking attempts rejected because the workshop was full",
	}, []string{"workshop_id"})

	attendanceTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "workshop_attendance_records_total",
		Help: "Attendance outcomes recorded",
	}, []string{"outcome"})

	certificatesTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "certificates_issued_total",
		Help: "Certificates issued",
	})

	coinsAwardedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "joycoins_awarded_total",
		Help: "JoyCoins credited by automated awards",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, bookingsTotal,
		capacityRejections, attendanceTotal, certificatesTotal, coinsAwardedTotal, goroutines)

	return &MetricsService{
		registry:           registry,
		handler:            promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:    requestDuration,
		requestTotal:       requestTotal,
		bookingsTotal:      bookingsTotal,
		capacityRejections: capacityRejections,
		attendanceTotal:    attendanceTotal,
		certificatesTotal:  certificatesTotal,
		coinsAwardedTotal:  coinsAwardedTotal,
	}
}

// Handler returns the Prometheus scrape handler.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// ObserveHTTPRequest records one served request.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	labels := []string{method, path, strconv.Itoa(status)}
	s.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	s.requestTotal.WithLabelValues(labels...).Inc()
}

// RegistrationBooked counts a successful booking.
func (s *MetricsService) RegistrationBooked() {
	s.bookingsTotal.Inc()
}

// CapacityRejection counts a booking rejected for lack of seats.
func (s *MetricsService) CapacityRejection(workshopID string) {
	s.capacityRejections.WithLabelValues(workshopID).Inc()
}

// AttendanceRecorded counts an applied attendance outcome.
func (s *MetricsService) AttendanceRecorded(outcome string) {
	s.attendanceTotal.WithLabelValues(outcome).Inc()
}

// CertificateIssued counts an issued certificate.
func (s *MetricsService) CertificateIssued() {
	s.certificatesTotal.Inc()
}

// CoinsAwarded counts automatically credited JoyCoins.
func (s *MetricsService) CoinsAwarded(amount int) {
	s.coinsAwardedTotal.Add(float64(amount))
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the booking engine and the sweeper.
type Metrics struct {
	// Booking transitions by resulting status
	BookingOutcome *prometheus.CounterVec

	// Bookings reclaimed by the expiration sweep
	BookingsExpired prometheus.Counter

	// Duration of a full sweep run
	SweepDuration prometheus.Histogram
}

// New creates a Metrics instance with all collectors registered on the
// default registry.
func New() *Metrics {
	return &Metrics{
		BookingOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ticketing_booking_outcomes_total",
			Help: "Total booking transitions by resulting status",
		}, []string{"status"}),

		BookingsExpired: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ticketing_bookings_expired_total",
			Help: "Total pending bookings reclaimed by the expiration sweep",
		}),

		SweepDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ticketing_sweep_duration_seconds",
			Help:    "Duration of expiration sweep runs",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}

// IncrementOutcome records a booking transition.
func (m *Metrics) IncrementOutcome(status string) {
	if m != nil {
		m.BookingOutcome.WithLabelValues(status).Inc()
	}
}

// AddExpired records how many bookings a sweep run reclaimed.
func (m *Metrics) AddExpired(n int) {
	if m != nil && n > 0 {
		m.BookingsExpired.Add(float64(n))
	}
}

// ObserveSweepDuration records the duration of a sweep run.
func (m *Metrics) ObserveSweepDuration(d time.Duration) {
	if m != nil {
		m.SweepDuration.Observe(d.Seconds())
	}
}

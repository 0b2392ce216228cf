package sweeper

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/mkravets/ticketing-engine/internal/metrics"
)

// Expirer is the slice of the booking engine the sweeper drives.
type Expirer interface {
	ExpireOverdue(ctx context.Context) (int, error)
}

// Sweeper periodically reclaims inventory from overdue PENDING bookings.
// Runs are single-flight: a tick that arrives while a sweep is still in
// progress is dropped instead of stacking a second sweep on top.
type Sweeper struct {
	bookings Expirer
	interval time.Duration
	metrics  *metrics.Metrics

	mu sync.Mutex
}

func New(bookings Expirer, interval time.Duration, m *metrics.Metrics) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{bookings: bookings, interval: interval, metrics: m}
}

// Run blocks until ctx is canceled, sweeping once per interval.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep performs one reclamation pass and reports how many bookings it
// expired. It returns immediately if another sweep is already running.
func (s *Sweeper) Sweep(ctx context.Context) int {
	if !s.mu.TryLock() {
		return 0
	}
	defer s.mu.Unlock()

	start := time.Now()
	expired, err := s.bookings.ExpireOverdue(ctx)
	s.metrics.ObserveSweepDuration(time.Since(start))
	if err != nil {
		log.Printf("expiration sweep: %v", err)
		return 0
	}

	s.metrics.AddExpired(expired)
	if expired > 0 {
		log.Printf("expired %d bookings", expired)
	}
	return expired
}

package sweeper

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type stubExpirer struct {
	count int
	err   error
	calls atomic.Int32
}

func (s *stubExpirer) ExpireOverdue(ctx context.Context) (int, error) {
	s.calls.Add(1)
	return s.count, s.err
}

func TestSweep_ReportsExpiredCount(t *testing.T) {
	expirer := &stubExpirer{count: 3}
	s := New(expirer, time.Minute, nil)

	assert.Equal(t, 3, s.Sweep(context.Background()))
	assert.Equal(t, int32(1), expirer.calls.Load())
}

func TestSweep_ErrorReturnsZero(t *testing.T) {
	expirer := &stubExpirer{err: errors.New("store down")}
	s := New(expirer, time.Minute, nil)

	assert.Equal(t, 0, s.Sweep(context.Background()))
}

type blockingExpirer struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingExpirer) ExpireOverdue(ctx context.Context) (int, error) {
	close(b.started)
	<-b.release
	return 1, nil
}

func TestSweep_SingleFlight(t *testing.T) {
	expirer := &blockingExpirer{started: make(chan struct{}), release: make(chan struct{})}
	s := New(expirer, time.Minute, nil)

	done := make(chan int)
	go func() { done <- s.Sweep(context.Background()) }()
	<-expirer.started

	// A sweep arriving while one is in progress is dropped, not queued.
	assert.Equal(t, 0, s.Sweep(context.Background()))

	close(expirer.release)
	assert.Equal(t, 1, <-done)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	expirer := &stubExpirer{}
	s := New(expirer, 10*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(35 * time.Millisecond)
	cancel()

	err := <-done
	assert.ErrorIs(t, err, context.Canceled)
	assert.GreaterOrEqual(t, expirer.calls.Load(), int32(1))
}

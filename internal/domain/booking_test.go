package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewPendingBooking(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	b := NewPendingBooking(now, 7, 42, 3, 25.0, 10*time.Minute)

	assert.NotEmpty(t, b.ID)
	assert.Equal(t, BookingStatusPending, b.Status)
	assert.Equal(t, 75.0, b.TotalPrice)
	assert.Equal(t, int64(1), b.Version)
	assert.Equal(t, now, b.CreatedAt)
	if assert.NotNil(t, b.ExpiresAt) {
		assert.Equal(t, now.Add(10*time.Minute), *b.ExpiresAt)
	}
	assert.Nil(t, b.ConfirmationDate)
	assert.Nil(t, b.CancellationDate)
}

func TestNewBookingReference(t *testing.T) {
	ref := NewBookingReference()
	assert.True(t, strings.HasPrefix(ref, "TKT-"))
	assert.Len(t, ref, 14)
	assert.Equal(t, ref, strings.ToUpper(ref))

	// Two references from independent draws should differ.
	assert.NotEqual(t, ref, NewBookingReference())
}

func TestStatusTerminal(t *testing.T) {
	assert.False(t, BookingStatusPending.Terminal())
	assert.True(t, BookingStatusConfirmed.Terminal())
	assert.True(t, BookingStatusCancelled.Terminal())
	assert.True(t, BookingStatusExpired.Terminal())
}

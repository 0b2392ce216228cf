package domain

import "errors"

var (
	ErrEventNotFound          = errors.New("event not found")
	ErrBookingNotFound        = errors.New("booking not found")
	ErrNoTicketsAvailable     = errors.New("no tickets available")
	ErrInvalidTransition      = errors.New("booking is in a terminal state")
	ErrBookingExpired         = errors.New("booking hold has expired")
	ErrConcurrentModification = errors.New("booking was modified concurrently")
	ErrDuplicateReference     = errors.New("booking reference already exists")
	ErrInvalidTicketCount     = errors.New("ticket count must be positive")
)

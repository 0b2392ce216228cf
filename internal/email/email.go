package email

import (
	"context"
	"log"

	"github.com/mkravets/ticketing-engine/internal/kafka"
)

type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	log.Printf("notify user %d: booking %s is %s (%d tickets for event %d)",
		event.UserID, event.Reference, event.Status, event.Tickets, event.EventID)
	return nil
}

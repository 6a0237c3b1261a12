package notifier

import (
	"context"
	"encoding/json"
	"log"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/fajarnugraha/go-rent-reservations/internal/booking"
	kafkax "github.com/fajarnugraha/go-rent-reservations/internal/kafka"
)

// Notification is a fully rendered message ready for a delivery channel.
type Notification struct {
	ReservationID string
	UserID        string
	Subject       string
	Body          string
	WhatsAppLink  string
}

type Sender interface {
	Send(ctx context.Context, n Notification) error
}

// LogSender writes notifications to the process log. Actual delivery (SMTP,
// WhatsApp API) is a separate collaborator.
type LogSender struct{}

func (LogSender) Send(_ context.Context, n Notification) error {
	log.Printf("notify user=%s reservation=%s subject=%q wa=%s", n.UserID, n.ReservationID, n.Subject, n.WhatsAppLink)
	return nil
}

type Dedup interface {
	Seen(ctx context.Context, eventID string) (bool, error)
}

// Service consumes reservation.confirmed events and renders notifications.
// By the time an event arrives the reservation is already durable, so every
// failure here is logged and swallowed rather than propagated.
type Service struct {
	Dedup          Dedup
	Sender         Sender
	Currency       string
	WhatsAppNumber string
}

// HandleReservationConfirmed is wired as the consumer handler.
func (s *Service) HandleReservationConfirmed(ctx context.Context, m kafkago.Message) error {
	var env booking.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != booking.EventReservationConfirmed {
		return nil
	}

	if seen, err := s.Dedup.Seen(ctx, env.EventID); err != nil {
		log.Printf("dedup check %s: %v", env.EventID, err)
	} else if seen {
		return nil
	}

	p, err := kafkax.UnwrapPayload[booking.ReservationConfirmedPayload](env.Payload)
	if err != nil {
		return err
	}

	subject, body := EmailBody(p, s.Currency)
	n := Notification{
		ReservationID: p.ReservationID,
		UserID:        p.UserID,
		Subject:       subject,
		Body:          body,
		WhatsAppLink:  WhatsAppLink(s.WhatsAppNumber, WhatsAppText(p, s.Currency)),
	}
	if err := s.Sender.Send(ctx, n); err != nil {
		// Best-effort: the reservation stands regardless.
		log.Printf("send reservation=%s: %v", p.ReservationID, err)
	}
	return nil
}

// Package notify fans domain events out to subscribed handlers inside the
// publisher's transaction.
package notify

import (
	"context"
	"fmt"
	"sync"

	"carrental/model"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type Kind string

const (
	BookingCreated   Kind = "booking.created"
	BookingConfirmed Kind = "booking.confirmed"
	PaymentSent      Kind = "payment.sent"
	PaymentReceived  Kind = "payment.received"
)

// Event carries enough context for a handler to render a message. Amount is
// only set for payment kinds.
type Event struct {
	Kind      Kind
	BookingID int64
	CarMake   string
	From      int64
	To        int64
	Amount    decimal.Decimal
}

// Content renders the message text for the event.
func (e Event) Content() string {
	switch e.Kind {
	case BookingCreated:
		return "New booking request for " + e.CarMake
	case BookingConfirmed:
		return "Booking confirmed for " + e.CarMake
	case PaymentReceived:
		return fmt.Sprintf("Payment of $%s for booking #%d received", e.Amount.StringFixed(2), e.BookingID)
	case PaymentSent:
		return fmt.Sprintf("Payment of $%s for booking #%d sent", e.Amount.StringFixed(2), e.BookingID)
	default:
		return string(e.Kind)
	}
}

type Handler func(ctx context.Context, tx pgx.Tx, ev Event) error

type Publisher struct {
	mu       sync.RWMutex
	handlers []Handler
}

func New(handlers ...Handler) *Publisher {
	return &Publisher{handlers: handlers}
}

func (p *Publisher) Subscribe(h Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers = append(p.handlers, h)
}

// Publish runs every handler in subscription order and stops at the first
// error, which the caller must treat as fatal for its transaction.
func (p *Publisher) Publish(ctx context.Context, tx pgx.Tx, ev Event) error {
	p.mu.RLock()
	hs := append([]Handler(nil), p.handlers...)
	p.mu.RUnlock()

	for i, h := range hs {
		if err := h(ctx, tx, ev); err != nil {
			return fmt.Errorf("notify %s handler %d: %w", ev.Kind, i, err)
		}
	}
	return nil
}

type MessageWriter interface {
	InsertMessage(ctx context.Context, tx pgx.Tx, m *model.Message) error
}

// MessageHandler writes one message row per event.
func MessageHandler(w MessageWriter) Handler {
	return func(ctx context.Context, tx pgx.Tx, ev Event) error {
		return w.InsertMessage(ctx, tx, &model.Message{
			SenderID:   ev.From,
			ReceiverID: ev.To,
			Content:    model.TruncateContent(ev.Content()),
		})
	}
}

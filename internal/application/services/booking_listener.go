package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/agendasaude/backend/internal/domain/entities"
	"github.com/agendasaude/backend/internal/domain/providers"
)

// BookingListener consumes booking events from the event bus and hands
// each one to a handler. The API process runs one with the logging
// handler as an audit trail; reminder or dashboard workers subscribe
// with their own.
type BookingListener struct {
	bus    providers.EventBus
	handle func(*entities.BookingEvent)
	cancel context.CancelFunc
	done   chan struct{}
}

// NewBookingListener creates a listener. A nil handle falls back to
// logging each event.
func NewBookingListener(bus providers.EventBus, handle func(*entities.BookingEvent)) *BookingListener {
	if handle == nil {
		handle = logBooking
	}
	return &BookingListener{bus: bus, handle: handle}
}

// Start subscribes to the bookings channel and consumes events until
// Stop is called or the bus shuts down.
func (l *BookingListener) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	events, err := l.bus.Subscribe(ctx, providers.EventChannelBookings)
	if err != nil {
		cancel()
		return fmt.Errorf("failed to subscribe to bookings: %w", err)
	}

	l.cancel = cancel
	l.done = make(chan struct{})
	go func() {
		defer close(l.done)
		for event := range events {
			l.handle(event)
		}
	}()
	return nil
}

// Stop ends the subscription and waits for the consuming goroutine to
// drain. A listener that never started is a no-op.
func (l *BookingListener) Stop() {
	if l.cancel == nil {
		return
	}
	l.cancel()
	<-l.done
}

func logBooking(event *entities.BookingEvent) {
	log.Info().
		Str("event_id", event.ID).
		Int64("professional_id", event.ProfessionalID).
		Int64("client_id", event.ClientID).
		Time("schedule", event.Schedule).
		Msg("appointment booked")
}

package providers

import (
	"context"
	"strconv"

	"github.com/agendasaude/backend/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to
// booking events
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.BookingEvent) error

	// Subscribe subscribes to events on a channel
	Subscribe(ctx context.Context, channel string) (<-chan *entities.BookingEvent, error)

	// Unsubscribe unsubscribes from a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

const (
	// EventChannelBookings is the channel carrying every booking event
	EventChannelBookings = "bookings"

	// EventChannelProfessionalPrefix is the prefix for per-professional channels
	EventChannelProfessionalPrefix = "bookings:professional:"
)

// ProfessionalChannel returns the channel name for a professional's bookings
func ProfessionalChannel(professionalID int64) string {
	return EventChannelProfessionalPrefix + strconv.FormatInt(professionalID, 10)
}

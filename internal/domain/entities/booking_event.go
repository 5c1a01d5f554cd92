package entities

import (
	"time"
)

// BookingEventType identifies the kind of booking event
type BookingEventType string

const (
	BookingEventCreated BookingEventType = "booking.created"
)

// BookingEvent is published on the event bus whenever an appointment
// is booked, so downstream consumers (reminders, dashboards) can react
// without polling the store.
type BookingEvent struct {
	ID             string           `json:"id"`
	Type           BookingEventType `json:"type"`
	ProfessionalID int64            `json:"professional_id"`
	ClientID       int64            `json:"client_id"`
	Schedule       time.Time        `json:"schedule"`
	OccurredAt     time.Time        `json:"occurred_at"`
}

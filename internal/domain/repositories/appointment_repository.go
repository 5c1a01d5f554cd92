package repositories

import (
	"context"

	"github.com/agendasaude/backend/internal/domain/entities"
)

// AppointmentRepository defines the interface for appointment storage.
// It is the slot store of the scheduling engine: implementations must
// enforce uniqueness of (professional_id, schedule) and surface a
// violation as a Conflict error, so that two racing bookings for the
// same instant cannot both commit.
type AppointmentRepository interface {
	// Create persists a new appointment
	Create(ctx context.Context, appointment *entities.Appointment) error

	// ListByProfessional returns every appointment booked with the
	// professional, in schedule order. An unknown id yields an empty list.
	ListByProfessional(ctx context.Context, professionalID int64) ([]*entities.Appointment, error)

	// ListByClient returns every appointment booked by the client
	ListByClient(ctx context.Context, clientID int64) ([]*entities.Appointment, error)
}

package database

import (
	"context"
	"errors"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/lib/pq"

	"github.com/agendasaude/backend/internal/domain/entities"
	"github.com/agendasaude/backend/internal/domain/repositories"
	"github.com/agendasaude/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/agendasaude/backend/pkg/errors"
)

const pqUniqueViolation = "23505"

// AppointmentAdapter implements the AppointmentRepository interface
type AppointmentAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewAppointmentAdapter creates a new appointment adapter
func NewAppointmentAdapter(client *postgres.Client) repositories.AppointmentRepository {
	return &AppointmentAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create persists a new appointment. The unique constraint on
// (professional_id, schedule) backstops the engine's conflict check, so
// two racing bookings for the same instant cannot both commit; the
// violation surfaces as the same busy-slot conflict.
func (a *AppointmentAdapter) Create(ctx context.Context, appointment *entities.Appointment) error {
	record := goqu.Record{
		"professional_id": appointment.ProfessionalID,
		"client_id":       appointment.ClientID,
		"schedule":        appointment.Schedule,
		"created_at":      appointment.CreatedAt,
	}

	query, args, err := a.db.Insert("appointments").
		Rows(record).
		Returning("id").
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(&appointment.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return apperrors.NewConflictError("busy schedule")
		}
		return apperrors.NewInternalError("failed to create appointment", err)
	}

	return nil
}

// ListByProfessional returns all appointments booked with a professional
func (a *AppointmentAdapter) ListByProfessional(ctx context.Context, professionalID int64) ([]*entities.Appointment, error) {
	return a.list(ctx, goqu.Ex{"professional_id": professionalID})
}

// ListByClient returns all appointments booked by a client
func (a *AppointmentAdapter) ListByClient(ctx context.Context, clientID int64) ([]*entities.Appointment, error) {
	return a.list(ctx, goqu.Ex{"client_id": clientID})
}

func (a *AppointmentAdapter) list(ctx context.Context, where goqu.Ex) ([]*entities.Appointment, error) {
	query, args, err := a.db.Select(
		"id", "professional_id", "client_id", "schedule", "created_at",
	).From("appointments").
		Where(where).
		Order(goqu.I("schedule").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list appointments", err)
	}
	defer rows.Close()

	var appointments []*entities.Appointment
	for rows.Next() {
		appointment := &entities.Appointment{}
		if err := rows.Scan(
			&appointment.ID,
			&appointment.ProfessionalID,
			&appointment.ClientID,
			&appointment.Schedule,
			&appointment.CreatedAt,
		); err != nil {
			return nil, apperrors.NewInternalError("failed to scan appointment", err)
		}
		appointments = append(appointments, appointment)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to list appointments", err)
	}

	return appointments, nil
}

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/lib/pq"

	"github.com/agendasaude/backend/internal/domain/entities"
	"github.com/agendasaude/backend/internal/domain/repositories"
	"github.com/agendasaude/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/agendasaude/backend/pkg/errors"
)

const pqForeignKeyViolation = "23503"

// ProfessionalAdapter implements the ProfessionalRepository interface
type ProfessionalAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewProfessionalAdapter creates a new professional adapter
func NewProfessionalAdapter(client *postgres.Client) repositories.ProfessionalRepository {
	return &ProfessionalAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create creates a new professional
func (a *ProfessionalAdapter) Create(ctx context.Context, professional *entities.Professional) error {
	now := time.Now()
	professional.CreatedAt = now
	professional.UpdatedAt = now

	record := goqu.Record{
		"name":          professional.Name,
		"email":         professional.Email,
		"phone":         professional.Phone,
		"crm":           professional.CRM,
		"password_hash": professional.PasswordHash,
		"specialty":     professional.Specialty,
		"final_rating":  professional.FinalRating,
		"created_at":    professional.CreatedAt,
		"updated_at":    professional.UpdatedAt,
	}

	query, args, err := a.db.Insert("professionals").
		Rows(record).
		Returning("id").
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(&professional.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return apperrors.NewConflictError("email or crm already registered")
		}
		return apperrors.NewInternalError("failed to create professional", err)
	}

	return nil
}

// GetByID retrieves a professional by ID
func (a *ProfessionalAdapter) GetByID(ctx context.Context, id int64) (*entities.Professional, error) {
	query, args, err := a.db.Select(
		"id", "name", "email", "phone", "crm", "password_hash",
		"specialty", "final_rating", "created_at", "updated_at",
	).From("professionals").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	professional := &entities.Professional{}
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&professional.ID,
		&professional.Name,
		&professional.Email,
		&professional.Phone,
		&professional.CRM,
		&professional.PasswordHash,
		&professional.Specialty,
		&professional.FinalRating,
		&professional.CreatedAt,
		&professional.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("professional with id %d not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get professional", err)
	}

	return professional, nil
}

// List retrieves all professionals
func (a *ProfessionalAdapter) List(ctx context.Context) ([]*entities.Professional, error) {
	query, args, err := a.db.Select(
		"id", "name", "email", "phone", "crm", "password_hash",
		"specialty", "final_rating", "created_at", "updated_at",
	).From("professionals").
		Order(goqu.I("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list professionals", err)
	}
	defer rows.Close()

	var professionals []*entities.Professional
	for rows.Next() {
		professional := &entities.Professional{}
		if err := rows.Scan(
			&professional.ID,
			&professional.Name,
			&professional.Email,
			&professional.Phone,
			&professional.CRM,
			&professional.PasswordHash,
			&professional.Specialty,
			&professional.FinalRating,
			&professional.CreatedAt,
			&professional.UpdatedAt,
		); err != nil {
			return nil, apperrors.NewInternalError("failed to scan professional", err)
		}
		professionals = append(professionals, professional)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to list professionals", err)
	}

	return professionals, nil
}

// Update updates a professional
func (a *ProfessionalAdapter) Update(ctx context.Context, professional *entities.Professional) error {
	professional.UpdatedAt = time.Now()

	record := goqu.Record{
		"name":          professional.Name,
		"email":         professional.Email,
		"phone":         professional.Phone,
		"specialty":     professional.Specialty,
		"password_hash": professional.PasswordHash,
		"updated_at":    professional.UpdatedAt,
	}

	query, args, err := a.db.Update("professionals").
		Set(record).
		Where(goqu.Ex{"id": professional.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return apperrors.NewConflictError("email or crm already registered")
		}
		return apperrors.NewInternalError("failed to update professional", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("professional with id %d not found", professional.ID))
	}

	return nil
}

// Delete deletes a professional. Appointments reference professionals
// with ON DELETE RESTRICT, so a professional with bookings cannot be
// removed; the violation is surfaced as a conflict.
func (a *ProfessionalAdapter) Delete(ctx context.Context, id int64) error {
	query, args, err := a.db.Delete("professionals").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation {
			return apperrors.NewConflictError("professional still has appointments")
		}
		return apperrors.NewInternalError("failed to delete professional", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("professional with id %d not found", id))
	}

	return nil
}

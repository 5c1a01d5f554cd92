package repositories

import (
	"context"

	"github.com/agendasaude/backend/internal/domain/entities"
)

// ProfessionalRepository defines the interface for professional data operations
type ProfessionalRepository interface {
	// Create creates a new professional
	Create(ctx context.Context, professional *entities.Professional) error

	// GetByID retrieves a professional by ID
	GetByID(ctx context.Context, id int64) (*entities.Professional, error)

	// List retrieves all professionals
	List(ctx context.Context) ([]*entities.Professional, error)

	// Update updates a professional
	Update(ctx context.Context, professional *entities.Professional) error

	// Delete deletes a professional. Fails with a Conflict error while
	// the professional still has appointments.
	Delete(ctx context.Context, id int64) error
}

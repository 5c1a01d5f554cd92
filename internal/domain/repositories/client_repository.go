package repositories

import (
	"context"

	"github.com/agendasaude/backend/internal/domain/entities"
)

// ClientRepository defines the interface for client data operations
type ClientRepository interface {
	// Create creates a new client and links its conditions
	Create(ctx context.Context, client *entities.Client) error

	// GetByID retrieves a client by ID, with conditions loaded
	GetByID(ctx context.Context, id int64) (*entities.Client, error)

	// List retrieves all clients
	List(ctx context.Context) ([]*entities.Client, error)

	// Update updates a client and replaces any supplied condition links
	Update(ctx context.Context, client *entities.Client) error

	// Delete deletes a client; appointment and condition links cascade
	Delete(ctx context.Context, id int64) error
}

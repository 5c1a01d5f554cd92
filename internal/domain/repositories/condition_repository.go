package repositories

import (
	"context"

	"github.com/agendasaude/backend/internal/domain/entities"
)

// ConditionRepository defines upsert-by-name access to the
// disease/deficiency/surgery lookup tables.
type ConditionRepository interface {
	// UpsertByName returns the stable id for the named condition,
	// creating the row on first reference.
	UpsertByName(ctx context.Context, kind entities.ConditionKind, name string) (*entities.Condition, error)

	// ListForClient returns the conditions of one kind linked to a client
	ListForClient(ctx context.Context, kind entities.ConditionKind, clientID int64) ([]entities.Condition, error)

	// ReplaceForClient replaces the client's links for one kind
	ReplaceForClient(ctx context.Context, kind entities.ConditionKind, clientID int64, conditionIDs []int64) error
}

package database

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/agendasaude/backend/internal/domain/entities"
	"github.com/agendasaude/backend/internal/domain/repositories"
	"github.com/agendasaude/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/agendasaude/backend/pkg/errors"
)

// conditionTables maps a condition kind to its lookup table, its join
// table and the join column referencing the lookup table.
var conditionTables = map[entities.ConditionKind]struct {
	table     string
	joinTable string
	joinCol   string
}{
	entities.ConditionKindDisease:    {"diseases", "client_diseases", "disease_id"},
	entities.ConditionKindDeficiency: {"deficiencies", "client_deficiencies", "deficiency_id"},
	entities.ConditionKindSurgery:    {"surgeries", "client_surgeries", "surgery_id"},
}

// ConditionAdapter implements the ConditionRepository interface over
// the disease/deficiency/surgery lookup tables.
type ConditionAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewConditionAdapter creates a new condition adapter
func NewConditionAdapter(client *postgres.Client) repositories.ConditionRepository {
	return &ConditionAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// UpsertByName returns the stable id for the named condition, creating
// the row on first reference. The no-op DO UPDATE makes RETURNING yield
// the id whether the row was inserted or already present.
func (a *ConditionAdapter) UpsertByName(ctx context.Context, kind entities.ConditionKind, name string) (*entities.Condition, error) {
	tables, ok := conditionTables[kind]
	if !ok {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown condition kind %q", kind))
	}

	query, args, err := a.db.Insert(tables.table).
		Rows(goqu.Record{"name": name}).
		OnConflict(goqu.DoUpdate("name", goqu.Record{"name": name})).
		Returning("id").
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build upsert query", err)
	}

	condition := &entities.Condition{Name: name}
	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&condition.ID); err != nil {
		return nil, apperrors.NewInternalError("failed to upsert condition", err)
	}

	return condition, nil
}

// ListForClient returns the conditions of one kind linked to a client
func (a *ConditionAdapter) ListForClient(ctx context.Context, kind entities.ConditionKind, clientID int64) ([]entities.Condition, error) {
	tables, ok := conditionTables[kind]
	if !ok {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown condition kind %q", kind))
	}

	query, args, err := a.db.Select(
		goqu.I("c.id"), goqu.I("c.name"),
	).From(goqu.T(tables.table).As("c")).
		Join(
			goqu.T(tables.joinTable).As("j"),
			goqu.On(goqu.Ex{"j." + tables.joinCol: goqu.I("c.id")}),
		).
		Where(goqu.Ex{"j.client_id": clientID}).
		Order(goqu.I("c.name").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list conditions", err)
	}
	defer rows.Close()

	var conditions []entities.Condition
	for rows.Next() {
		var condition entities.Condition
		if err := rows.Scan(&condition.ID, &condition.Name); err != nil {
			return nil, apperrors.NewInternalError("failed to scan condition", err)
		}
		conditions = append(conditions, condition)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to list conditions", err)
	}

	return conditions, nil
}

// ReplaceForClient replaces the client's links for one kind
func (a *ConditionAdapter) ReplaceForClient(ctx context.Context, kind entities.ConditionKind, clientID int64, conditionIDs []int64) error {
	tables, ok := conditionTables[kind]
	if !ok {
		return apperrors.NewValidationError(fmt.Sprintf("unknown condition kind %q", kind))
	}

	tx, err := a.client.BeginTx(ctx)
	if err != nil {
		return apperrors.NewInternalError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	deleteQuery, deleteArgs, err := a.db.Delete(tables.joinTable).
		Where(goqu.Ex{"client_id": clientID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}
	if _, err := tx.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		return apperrors.NewInternalError("failed to unlink conditions", err)
	}

	for _, conditionID := range conditionIDs {
		insertQuery, insertArgs, err := a.db.Insert(tables.joinTable).
			Rows(goqu.Record{"client_id": clientID, tables.joinCol: conditionID}).
			ToSQL()
		if err != nil {
			return apperrors.NewInternalError("failed to build link query", err)
		}
		if _, err := tx.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
			return apperrors.NewInternalError("failed to link condition", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewInternalError("failed to commit condition links", err)
	}
	return nil
}

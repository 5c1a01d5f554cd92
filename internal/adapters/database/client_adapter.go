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

// ClientAdapter implements the ClientRepository interface
type ClientAdapter struct {
	client     *postgres.Client
	db         *goqu.Database
	conditions repositories.ConditionRepository
}

// NewClientAdapter creates a new client adapter
func NewClientAdapter(client *postgres.Client, conditions repositories.ConditionRepository) repositories.ClientRepository {
	return &ClientAdapter{
		client:     client,
		db:         goqu.New("postgres", client.DB()),
		conditions: conditions,
	}
}

// Create creates a new client and links its conditions
func (a *ClientAdapter) Create(ctx context.Context, c *entities.Client) error {
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	record := goqu.Record{
		"name":          c.Name,
		"last_name":     c.LastName,
		"age":           c.Age,
		"email":         c.Email,
		"password_hash": c.PasswordHash,
		"gender":        c.Gender,
		"height":        c.Height,
		"weigth":        c.Weigth,
		"imc":           c.IMC,
		"created_at":    c.CreatedAt,
		"updated_at":    c.UpdatedAt,
	}

	query, args, err := a.db.Insert("clients").
		Rows(record).
		Returning("id").
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(&c.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return apperrors.NewConflictError("email already exists")
		}
		return apperrors.NewInternalError("failed to create client", err)
	}

	return a.linkConditions(ctx, c)
}

// GetByID retrieves a client by ID, with conditions loaded
func (a *ClientAdapter) GetByID(ctx context.Context, id int64) (*entities.Client, error) {
	query, args, err := a.db.Select(
		"id", "name", "last_name", "age", "email", "password_hash",
		"gender", "height", "weigth", "imc", "created_at", "updated_at",
	).From("clients").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	c := &entities.Client{}
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&c.ID, &c.Name, &c.LastName, &c.Age, &c.Email, &c.PasswordHash,
		&c.Gender, &c.Height, &c.Weigth, &c.IMC, &c.CreatedAt, &c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("client with id %d not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get client", err)
	}

	if c.Diseases, err = a.conditions.ListForClient(ctx, entities.ConditionKindDisease, id); err != nil {
		return nil, err
	}
	if c.Deficiencies, err = a.conditions.ListForClient(ctx, entities.ConditionKindDeficiency, id); err != nil {
		return nil, err
	}
	if c.Surgeries, err = a.conditions.ListForClient(ctx, entities.ConditionKindSurgery, id); err != nil {
		return nil, err
	}

	return c, nil
}

// List retrieves all clients without their condition links
func (a *ClientAdapter) List(ctx context.Context) ([]*entities.Client, error) {
	query, args, err := a.db.Select(
		"id", "name", "last_name", "age", "email", "password_hash",
		"gender", "height", "weigth", "imc", "created_at", "updated_at",
	).From("clients").
		Order(goqu.I("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list clients", err)
	}
	defer rows.Close()

	var clients []*entities.Client
	for rows.Next() {
		c := &entities.Client{}
		if err := rows.Scan(
			&c.ID, &c.Name, &c.LastName, &c.Age, &c.Email, &c.PasswordHash,
			&c.Gender, &c.Height, &c.Weigth, &c.IMC, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, apperrors.NewInternalError("failed to scan client", err)
		}
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to list clients", err)
	}

	return clients, nil
}

// Update updates a client and replaces any supplied condition links
func (a *ClientAdapter) Update(ctx context.Context, c *entities.Client) error {
	c.UpdatedAt = time.Now()

	record := goqu.Record{
		"name":          c.Name,
		"last_name":     c.LastName,
		"age":           c.Age,
		"email":         c.Email,
		"password_hash": c.PasswordHash,
		"gender":        c.Gender,
		"height":        c.Height,
		"weigth":        c.Weigth,
		"imc":           c.IMC,
		"updated_at":    c.UpdatedAt,
	}

	query, args, err := a.db.Update("clients").
		Set(record).
		Where(goqu.Ex{"id": c.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return apperrors.NewConflictError("email already exists")
		}
		return apperrors.NewInternalError("failed to update client", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("client with id %d not found", c.ID))
	}

	return a.linkConditions(ctx, c)
}

// Delete deletes a client; appointment and condition links cascade
func (a *ClientAdapter) Delete(ctx context.Context, id int64) error {
	query, args, err := a.db.Delete("clients").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to delete client", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("client with id %d not found", id))
	}

	return nil
}

func (a *ClientAdapter) linkConditions(ctx context.Context, c *entities.Client) error {
	for _, group := range []struct {
		kind  entities.ConditionKind
		items []entities.Condition
	}{
		{entities.ConditionKindDisease, c.Diseases},
		{entities.ConditionKindDeficiency, c.Deficiencies},
		{entities.ConditionKindSurgery, c.Surgeries},
	} {
		if group.items == nil {
			continue
		}
		ids := make([]int64, 0, len(group.items))
		for _, condition := range group.items {
			ids = append(ids, condition.ID)
		}
		if err := a.conditions.ReplaceForClient(ctx, group.kind, c.ID, ids); err != nil {
			return err
		}
	}
	return nil
}

package services

import (
	"context"
	"regexp"
	"strings"

	"github.com/agendasaude/backend/internal/auth"
	"github.com/agendasaude/backend/internal/domain/entities"
	"github.com/agendasaude/backend/internal/domain/repositories"
	apperrors "github.com/agendasaude/backend/pkg/errors"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`)

// ConditionInput names a disease, deficiency or surgery to attach to a
// client. Unknown names are created on first use.
type ConditionInput struct {
	Name string `json:"name"`
}

// CreateClientInput carries a client registration request.
type CreateClientInput struct {
	Name         string           `json:"name"`
	LastName     string           `json:"last_name"`
	Age          int              `json:"age"`
	Email        string           `json:"email"`
	Password     string           `json:"password"`
	Gender       string           `json:"gender"`
	Height       float64          `json:"height"`
	Weigth       float64          `json:"weigth"`
	Diseases     []ConditionInput `json:"diseases"`
	Deficiencies []ConditionInput `json:"deficiencies"`
	Surgeries    []ConditionInput `json:"surgeries"`
}

// UpdateClientInput carries a partial client update; nil fields are
// left untouched.
type UpdateClientInput struct {
	Name         *string          `json:"name"`
	LastName     *string          `json:"last_name"`
	Age          *int             `json:"age"`
	Email        *string          `json:"email"`
	Password     *string          `json:"password"`
	Gender       *string          `json:"gender"`
	Height       *float64         `json:"height"`
	Weigth       *float64         `json:"weigth"`
	Diseases     []ConditionInput `json:"diseases"`
	Deficiencies []ConditionInput `json:"deficiencies"`
	Surgeries    []ConditionInput `json:"surgeries"`
}

// ClientService handles client registration and profile maintenance
type ClientService struct {
	clients    repositories.ClientRepository
	conditions repositories.ConditionRepository
}

// NewClientService creates a new client service
func NewClientService(clients repositories.ClientRepository, conditions repositories.ConditionRepository) *ClientService {
	return &ClientService{
		clients:    clients,
		conditions: conditions,
	}
}

// Create registers a new client. The body-mass index is derived from
// height and weight; the password is stored as a bcrypt hash.
func (s *ClientService) Create(ctx context.Context, in CreateClientInput) (*entities.Client, error) {
	if in.Name == "" || in.LastName == "" || in.Email == "" || in.Password == "" || in.Gender == "" {
		return nil, apperrors.NewValidationError("name, last_name, age, email, password, gender, height and weigth are required")
	}
	if in.Age <= 0 || in.Height <= 0 || in.Weigth <= 0 {
		return nil, apperrors.NewValidationError("age, height and weigth must be positive")
	}
	if err := validateGender(in.Gender); err != nil {
		return nil, err
	}
	if err := validateEmail(in.Email); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to hash password", err)
	}

	client := &entities.Client{
		Name:         in.Name,
		LastName:     in.LastName,
		Age:          in.Age,
		Email:        in.Email,
		PasswordHash: hash,
		Gender:       strings.ToLower(in.Gender),
		Height:       in.Height,
		Weigth:       in.Weigth,
		IMC:          in.Weigth / (in.Height * in.Height),
	}

	if client.Diseases, err = s.upsertConditions(ctx, entities.ConditionKindDisease, in.Diseases); err != nil {
		return nil, err
	}
	if client.Deficiencies, err = s.upsertConditions(ctx, entities.ConditionKindDeficiency, in.Deficiencies); err != nil {
		return nil, err
	}
	if client.Surgeries, err = s.upsertConditions(ctx, entities.ConditionKindSurgery, in.Surgeries); err != nil {
		return nil, err
	}

	if err := s.clients.Create(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

// Get retrieves a client by id
func (s *ClientService) Get(ctx context.Context, id int64) (*entities.Client, error) {
	return s.clients.GetByID(ctx, id)
}

// List retrieves all clients
func (s *ClientService) List(ctx context.Context) ([]*entities.Client, error) {
	return s.clients.List(ctx)
}

// Update applies a partial update to the authenticated client's profile
func (s *ClientService) Update(ctx context.Context, id int64, in UpdateClientInput) (*entities.Client, error) {
	client, err := s.clients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Gender != nil {
		if err := validateGender(*in.Gender); err != nil {
			return nil, err
		}
		client.Gender = strings.ToLower(*in.Gender)
	}
	if in.Email != nil {
		if err := validateEmail(*in.Email); err != nil {
			return nil, err
		}
		client.Email = *in.Email
	}
	if in.Name != nil {
		client.Name = *in.Name
	}
	if in.LastName != nil {
		client.LastName = *in.LastName
	}
	if in.Age != nil {
		client.Age = *in.Age
	}
	if in.Height != nil {
		client.Height = *in.Height
	}
	if in.Weigth != nil {
		client.Weigth = *in.Weigth
	}
	if in.Height != nil || in.Weigth != nil {
		if client.Height <= 0 || client.Weigth <= 0 {
			return nil, apperrors.NewValidationError("height and weigth must be positive")
		}
		client.IMC = client.Weigth / (client.Height * client.Height)
	}
	if in.Password != nil {
		hash, err := auth.HashPassword(*in.Password)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to hash password", err)
		}
		client.PasswordHash = hash
	}

	if in.Diseases != nil {
		if client.Diseases, err = s.upsertConditions(ctx, entities.ConditionKindDisease, in.Diseases); err != nil {
			return nil, err
		}
	}
	if in.Deficiencies != nil {
		if client.Deficiencies, err = s.upsertConditions(ctx, entities.ConditionKindDeficiency, in.Deficiencies); err != nil {
			return nil, err
		}
	}
	if in.Surgeries != nil {
		if client.Surgeries, err = s.upsertConditions(ctx, entities.ConditionKindSurgery, in.Surgeries); err != nil {
			return nil, err
		}
	}

	if err := s.clients.Update(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

// Delete removes the authenticated client's account
func (s *ClientService) Delete(ctx context.Context, id int64) error {
	return s.clients.Delete(ctx, id)
}

func (s *ClientService) upsertConditions(ctx context.Context, kind entities.ConditionKind, inputs []ConditionInput) ([]entities.Condition, error) {
	if inputs == nil {
		return nil, nil
	}
	conditions := make([]entities.Condition, 0, len(inputs))
	for _, in := range inputs {
		if strings.TrimSpace(in.Name) == "" {
			return nil, apperrors.NewValidationError("condition entries must carry a non-empty name")
		}
		condition, err := s.conditions.UpsertByName(ctx, kind, in.Name)
		if err != nil {
			return nil, err
		}
		conditions = append(conditions, *condition)
	}
	return conditions, nil
}

func validateGender(gender string) error {
	g := strings.ToLower(gender)
	if g != "m" && g != "f" {
		return apperrors.NewValidationError("gender must be 'm' or 'f'")
	}
	return nil
}

func validateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return apperrors.NewValidationError("invalid email format")
	}
	return nil
}

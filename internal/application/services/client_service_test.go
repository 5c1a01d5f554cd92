package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/agendasaude/backend/internal/application/services"
	"github.com/agendasaude/backend/internal/domain/entities"
	apperrors "github.com/agendasaude/backend/pkg/errors"
)

type MockConditionRepository struct {
	mock.Mock
}

func (m *MockConditionRepository) UpsertByName(ctx context.Context, kind entities.ConditionKind, name string) (*entities.Condition, error) {
	args := m.Called(ctx, kind, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Condition), args.Error(1)
}

func (m *MockConditionRepository) ListForClient(ctx context.Context, kind entities.ConditionKind, clientID int64) ([]entities.Condition, error) {
	args := m.Called(ctx, kind, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Condition), args.Error(1)
}

func (m *MockConditionRepository) ReplaceForClient(ctx context.Context, kind entities.ConditionKind, clientID int64, conditionIDs []int64) error {
	args := m.Called(ctx, kind, clientID, conditionIDs)
	return args.Error(0)
}

func validCreateClientInput() services.CreateClientInput {
	return services.CreateClientInput{
		Name:     "Maria",
		LastName: "Silva",
		Age:      34,
		Email:    "maria.silva@example.com",
		Password: "s3cret-pass",
		Gender:   "F",
		Height:   1.70,
		Weigth:   68,
	}
}

func TestClientService_Create(t *testing.T) {
	t.Run("registers a client with derived imc and hashed password", func(t *testing.T) {
		clients := new(MockClientRepository)
		conditions := new(MockConditionRepository)
		svc := services.NewClientService(clients, conditions)

		in := validCreateClientInput()
		in.Diseases = []services.ConditionInput{{Name: "asthma"}}

		conditions.On("UpsertByName", mock.Anything, entities.ConditionKindDisease, "asthma").
			Return(&entities.Condition{ID: 1, Name: "asthma"}, nil)
		clients.On("Create", mock.Anything, mock.MatchedBy(func(c *entities.Client) bool {
			return c.Email == "maria.silva@example.com" && c.Gender == "f"
		})).Return(nil)

		client, err := svc.Create(context.Background(), in)

		assert.NoError(t, err)
		assert.InDelta(t, 68/(1.70*1.70), client.IMC, 0.0001)
		assert.NotEqual(t, "s3cret-pass", client.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(client.PasswordHash), []byte("s3cret-pass")))
		assert.Len(t, client.Diseases, 1)
		clients.AssertExpectations(t)
		conditions.AssertExpectations(t)
	})

	t.Run("rejects missing required fields", func(t *testing.T) {
		svc := services.NewClientService(new(MockClientRepository), new(MockConditionRepository))

		in := validCreateClientInput()
		in.Email = ""

		_, err := svc.Create(context.Background(), in)

		assert.Error(t, err)
		assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.TypeOf(err))
	})

	t.Run("rejects an unknown gender", func(t *testing.T) {
		svc := services.NewClientService(new(MockClientRepository), new(MockConditionRepository))

		in := validCreateClientInput()
		in.Gender = "x"

		_, err := svc.Create(context.Background(), in)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "gender")
	})

	t.Run("rejects a malformed email", func(t *testing.T) {
		svc := services.NewClientService(new(MockClientRepository), new(MockConditionRepository))

		in := validCreateClientInput()
		in.Email = "not-an-email"

		_, err := svc.Create(context.Background(), in)

		assert.Error(t, err)
		assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.TypeOf(err))
	})

	t.Run("rejects non-positive measurements", func(t *testing.T) {
		svc := services.NewClientService(new(MockClientRepository), new(MockConditionRepository))

		in := validCreateClientInput()
		in.Height = 0

		_, err := svc.Create(context.Background(), in)

		assert.Error(t, err)
		assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.TypeOf(err))
	})

	t.Run("propagates an email conflict from the repository", func(t *testing.T) {
		clients := new(MockClientRepository)
		svc := services.NewClientService(clients, new(MockConditionRepository))

		clients.On("Create", mock.Anything, mock.Anything).Return(apperrors.NewConflictError("email already registered"))

		_, err := svc.Create(context.Background(), validCreateClientInput())

		assert.Error(t, err)
		assert.Equal(t, apperrors.ErrorTypeConflict, apperrors.TypeOf(err))
	})
}

func TestClientService_Update(t *testing.T) {
	existing := func() *entities.Client {
		return &entities.Client{
			ID:       7,
			Name:     "Maria",
			LastName: "Silva",
			Age:      34,
			Email:    "maria.silva@example.com",
			Gender:   "f",
			Height:   1.70,
			Weigth:   68,
			IMC:      68 / (1.70 * 1.70),
		}
	}

	t.Run("recomputes imc when weight changes", func(t *testing.T) {
		clients := new(MockClientRepository)
		svc := services.NewClientService(clients, new(MockConditionRepository))

		clients.On("GetByID", mock.Anything, int64(7)).Return(existing(), nil)
		clients.On("Update", mock.Anything, mock.Anything).Return(nil)

		weigth := 72.0
		client, err := svc.Update(context.Background(), 7, services.UpdateClientInput{Weigth: &weigth})

		assert.NoError(t, err)
		assert.InDelta(t, 72/(1.70*1.70), client.IMC, 0.0001)
		assert.Equal(t, "Maria", client.Name)
	})

	t.Run("replaces condition lists only when supplied", func(t *testing.T) {
		clients := new(MockClientRepository)
		conditions := new(MockConditionRepository)
		svc := services.NewClientService(clients, conditions)

		current := existing()
		current.Diseases = []entities.Condition{{ID: 1, Name: "asthma"}}
		clients.On("GetByID", mock.Anything, int64(7)).Return(current, nil)
		clients.On("Update", mock.Anything, mock.Anything).Return(nil)
		conditions.On("UpsertByName", mock.Anything, entities.ConditionKindSurgery, "appendectomy").
			Return(&entities.Condition{ID: 4, Name: "appendectomy"}, nil)

		client, err := svc.Update(context.Background(), 7, services.UpdateClientInput{
			Surgeries: []services.ConditionInput{{Name: "appendectomy"}},
		})

		assert.NoError(t, err)
		assert.Len(t, client.Surgeries, 1)
		// the untouched disease list survives the update
		assert.Len(t, client.Diseases, 1)
	})

	t.Run("fails for an unknown client", func(t *testing.T) {
		clients := new(MockClientRepository)
		svc := services.NewClientService(clients, new(MockConditionRepository))

		clients.On("GetByID", mock.Anything, int64(99)).Return(nil, apperrors.NewNotFoundError("client not found"))

		_, err := svc.Update(context.Background(), 99, services.UpdateClientInput{})

		assert.Error(t, err)
		assert.Equal(t, apperrors.ErrorTypeNotFound, apperrors.TypeOf(err))
	})
}

func TestClientService_Delete(t *testing.T) {
	clients := new(MockClientRepository)
	svc := services.NewClientService(clients, new(MockConditionRepository))

	clients.On("Delete", mock.Anything, int64(7)).Return(nil)

	assert.NoError(t, svc.Delete(context.Background(), 7))
	clients.AssertExpectations(t)
}

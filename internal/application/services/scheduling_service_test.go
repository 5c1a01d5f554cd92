package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/agendasaude/backend/internal/application/services"
	"github.com/agendasaude/backend/internal/domain/entities"
	"github.com/agendasaude/backend/internal/domain/providers"
	"github.com/agendasaude/backend/pkg/config"
	apperrors "github.com/agendasaude/backend/pkg/errors"
)

// Mocks

type MockAppointmentRepository struct {
	mock.Mock
}

func (m *MockAppointmentRepository) Create(ctx context.Context, appointment *entities.Appointment) error {
	args := m.Called(ctx, appointment)
	return args.Error(0)
}

func (m *MockAppointmentRepository) ListByProfessional(ctx context.Context, professionalID int64) ([]*entities.Appointment, error) {
	args := m.Called(ctx, professionalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) ListByClient(ctx context.Context, clientID int64) ([]*entities.Appointment, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Appointment), args.Error(1)
}

type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) Create(ctx context.Context, client *entities.Client) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}

func (m *MockClientRepository) GetByID(ctx context.Context, id int64) (*entities.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Client), args.Error(1)
}

func (m *MockClientRepository) List(ctx context.Context) ([]*entities.Client, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Client), args.Error(1)
}

func (m *MockClientRepository) Update(ctx context.Context, client *entities.Client) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}

func (m *MockClientRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockProfessionalRepository struct {
	mock.Mock
}

func (m *MockProfessionalRepository) Create(ctx context.Context, professional *entities.Professional) error {
	args := m.Called(ctx, professional)
	return args.Error(0)
}

func (m *MockProfessionalRepository) GetByID(ctx context.Context, id int64) (*entities.Professional, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Professional), args.Error(1)
}

func (m *MockProfessionalRepository) List(ctx context.Context) ([]*entities.Professional, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Professional), args.Error(1)
}

func (m *MockProfessionalRepository) Update(ctx context.Context, professional *entities.Professional) error {
	args := m.Called(ctx, professional)
	return args.Error(0)
}
func (m *MockProfessionalRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// stubEventBus records published events in memory. When failWith is
// set every Publish returns it.
type stubEventBus struct {
	mu        sync.Mutex
	failWith  error
	published map[string][]*entities.BookingEvent
}

func newStubEventBus(failWith error) *stubEventBus {
	return &stubEventBus{
		failWith:  failWith,
		published: make(map[string][]*entities.BookingEvent),
	}
}

func (b *stubEventBus) Publish(ctx context.Context, channel string, event *entities.BookingEvent) error {
	if b.failWith != nil {
		return b.failWith
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published[channel] = append(b.published[channel], event)
	return nil
}

func (b *stubEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.BookingEvent, error) {
	return nil, errors.New("not implemented")
}

func (b *stubEventBus) Unsubscribe(ctx context.Context, channel string) error { return nil }

func (b *stubEventBus) Close() error { return nil }

func defaultScheduleConfig() config.ScheduleConfig {
	return config.ScheduleConfig{
		DayStartHour: 9,
		SlotMinutes:  45,
		ClosingHour:  17,
	}
}

func newTestService() (*services.SchedulingService, *MockAppointmentRepository, *MockClientRepository, *MockProfessionalRepository) {
	appointments := new(MockAppointmentRepository)
	clients := new(MockClientRepository)
	professionals := new(MockProfessionalRepository)
	svc := services.NewSchedulingService(appointments, clients, professionals, nil, defaultScheduleConfig())
	return svc, appointments, clients, professionals
}

func newTestServiceWithBus(bus providers.EventBus) (*services.SchedulingService, *MockAppointmentRepository, *MockClientRepository, *MockProfessionalRepository) {
	appointments := new(MockAppointmentRepository)
	clients := new(MockClientRepository)
	professionals := new(MockProfessionalRepository)
	svc := services.NewSchedulingService(appointments, clients, professionals, bus, defaultScheduleConfig())
	return svc, appointments, clients, professionals
}

func mustParse(t *testing.T, layout, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(layout, value)
	assert.NoError(t, err)
	return parsed
}

// Tests

func TestSchedulingService_Book(t *testing.T) {
	client := &entities.Client{ID: 7, Name: "Maria"}
	professional := &entities.Professional{ID: 3, Name: "Dr. Souza"}

	t.Run("books a free weekday slot", func(t *testing.T) {
		svc, appointments, clients, professionals := newTestService()

		clients.On("GetByID", mock.Anything, int64(7)).Return(client, nil)
		professionals.On("GetByID", mock.Anything, int64(3)).Return(professional, nil)
		appointments.On("ListByProfessional", mock.Anything, int64(3)).Return([]*entities.Appointment{}, nil)
		appointments.On("Create", mock.Anything, mock.MatchedBy(func(a *entities.Appointment) bool {
			return a.ProfessionalID == 3 && a.ClientID == 7 &&
				a.Schedule.Equal(mustParse(t, services.BookingDateLayout, "02/03/2026 09:45:00"))
		})).Return(nil)

		appointment, err := svc.Book(context.Background(), 3, 7, json.RawMessage(`"02/03/2026 09:45:00"`))

		assert.NoError(t, err)
		assert.NotNil(t, appointment)
		appointments.AssertExpectations(t)
	})

	t.Run("rejects unknown client before touching the date", func(t *testing.T) {
		svc, _, clients, _ := newTestService()

		clients.On("GetByID", mock.Anything, int64(99)).Return(nil, apperrors.NewNotFoundError("client not found"))

		_, err := svc.Book(context.Background(), 3, 99, json.RawMessage(`"not even a date"`))

		assert.Error(t, err)
		assert.Equal(t, apperrors.ErrorTypeNotFound, apperrors.TypeOf(err))
	})

	t.Run("rejects a non-string schedule_date", func(t *testing.T) {
		svc, _, clients, _ := newTestService()
		clients.On("GetByID", mock.Anything, int64(7)).Return(client, nil)

		_, err := svc.Book(context.Background(), 3, 7, json.RawMessage(`1720000000`))

		assert.Error(t, err)
		assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.TypeOf(err))
		assert.Contains(t, err.Error(), "must be a string")
	})

	t.Run("rejects an unparseable date string", func(t *testing.T) {
		svc, _, clients, _ := newTestService()
		clients.On("GetByID", mock.Anything, int64(7)).Return(client, nil)

		_, err := svc.Book(context.Background(), 3, 7, json.RawMessage(`"2026-03-02 09:45:00"`))

		assert.Error(t, err)
		assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.TypeOf(err))
		assert.Contains(t, err.Error(), "currect date format : dd/mm/YYYY")
	})

	t.Run("rejects unknown professional after the date parses", func(t *testing.T) {
		svc, _, clients, professionals := newTestService()
		clients.On("GetByID", mock.Anything, int64(7)).Return(client, nil)
		professionals.On("GetByID", mock.Anything, int64(42)).Return(nil, apperrors.NewNotFoundError("professional not found"))

		_, err := svc.Book(context.Background(), 42, 7, json.RawMessage(`"02/03/2026 09:45:00"`))

		assert.Error(t, err)
		assert.Equal(t, apperrors.ErrorTypeNotFound, apperrors.TypeOf(err))
	})

	t.Run("rejects weekends even when the slot is free", func(t *testing.T) {
		svc, _, clients, professionals := newTestService()
		clients.On("GetByID", mock.Anything, int64(7)).Return(client, nil)
		professionals.On("GetByID", mock.Anything, int64(3)).Return(professional, nil)

		// 07/03/2026 is a Saturday, 08/03/2026 a Sunday
		for _, raw := range []string{`"07/03/2026 10:30:00"`, `"08/03/2026 10:30:00"`} {
			_, err := svc.Book(context.Background(), 3, 7, json.RawMessage(raw))

			assert.Error(t, err)
			assert.Equal(t, apperrors.ErrorTypeBusinessRule, apperrors.TypeOf(err))
			assert.Contains(t, err.Error(), "weekend")
		}
	})

	t.Run("rejects an already booked slot", func(t *testing.T) {
		svc, appointments, clients, professionals := newTestService()
		taken := mustParse(t, services.BookingDateLayout, "02/03/2026 09:45:00")

		clients.On("GetByID", mock.Anything, int64(7)).Return(client, nil)
		professionals.On("GetByID", mock.Anything, int64(3)).Return(professional, nil)
		appointments.On("ListByProfessional", mock.Anything, int64(3)).Return([]*entities.Appointment{
			{ID: 1, ProfessionalID: 3, ClientID: 99, Schedule: taken},
		}, nil)

		_, err := svc.Book(context.Background(), 3, 7, json.RawMessage(`"02/03/2026 09:45:00"`))

		assert.Error(t, err)
		assert.Equal(t, apperrors.ErrorTypeBusinessRule, apperrors.TypeOf(err))
		assert.Contains(t, err.Error(), "busy schedule")
	})

	t.Run("rejects a slot already booked by the same client", func(t *testing.T) {
		svc, appointments, clients, professionals := newTestService()
		taken := mustParse(t, services.BookingDateLayout, "02/03/2026 12:00:00")

		clients.On("GetByID", mock.Anything, int64(7)).Return(client, nil)
		professionals.On("GetByID", mock.Anything, int64(3)).Return(professional, nil)
		appointments.On("ListByProfessional", mock.Anything, int64(3)).Return([]*entities.Appointment{
			{ID: 1, ProfessionalID: 3, ClientID: 7, Schedule: taken},
		}, nil)

		_, err := svc.Book(context.Background(), 3, 7, json.RawMessage(`"02/03/2026 12:00:00"`))

		assert.Error(t, err)
		assert.Equal(t, apperrors.ErrorTypeBusinessRule, apperrors.TypeOf(err))
	})
}

func TestSchedulingService_FreeSlots(t *testing.T) {
	professional := &entities.Professional{ID: 3, Name: "Dr. Souza"}

	t.Run("enumerates the whole working day when nothing is booked", func(t *testing.T) {
		svc, appointments, _, professionals := newTestService()

		professionals.On("GetByID", mock.Anything, int64(3)).Return(professional, nil)
		appointments.On("ListByProfessional", mock.Anything, int64(3)).Return([]*entities.Appointment{}, nil)

		slots, err := svc.FreeSlots(context.Background(), 3, "02/03/2026")

		assert.NoError(t, err)
		assert.Len(t, slots, 11)
		assert.Equal(t, mustParse(t, services.ScheduleWireLayout, "2026-03-02 09:00:00"), slots[0])
		assert.Equal(t, mustParse(t, services.ScheduleWireLayout, "2026-03-02 16:30:00"), slots[len(slots)-1])
		for i := 1; i < len(slots); i++ {
			assert.Equal(t, 45*time.Minute, slots[i].Sub(slots[i-1]))
		}
	})

	t.Run("excludes exactly the booked slots", func(t *testing.T) {
		svc, appointments, _, professionals := newTestService()
		booked := mustParse(t, services.ScheduleWireLayout, "2026-03-02 10:30:00")

		professionals.On("GetByID", mock.Anything, int64(3)).Return(professional, nil)
		appointments.On("ListByProfessional", mock.Anything, int64(3)).Return([]*entities.Appointment{
			{ID: 1, ProfessionalID: 3, ClientID: 7, Schedule: booked},
		}, nil)

		slots, err := svc.FreeSlots(context.Background(), 3, "02/03/2026")

		assert.NoError(t, err)
		assert.Len(t, slots, 10)
		for _, slot := range slots {
			assert.False(t, slot.Equal(booked))
		}
	})

	t.Run("ignores appointments on other days", func(t *testing.T) {
		svc, appointments, _, professionals := newTestService()

		professionals.On("GetByID", mock.Anything, int64(3)).Return(professional, nil)
		appointments.On("ListByProfessional", mock.Anything, int64(3)).Return([]*entities.Appointment{
			{ID: 1, ProfessionalID: 3, ClientID: 7, Schedule: mustParse(t, services.ScheduleWireLayout, "2026-03-03 10:30:00")},
		}, nil)

		slots, err := svc.FreeSlots(context.Background(), 3, "02/03/2026")

		assert.NoError(t, err)
		assert.Len(t, slots, 11)
	})

	t.Run("still enumerates a weekend day", func(t *testing.T) {
		// the weekend rule guards booking, not the availability query
		svc, appointments, _, professionals := newTestService()

		professionals.On("GetByID", mock.Anything, int64(3)).Return(professional, nil)
		appointments.On("ListByProfessional", mock.Anything, int64(3)).Return([]*entities.Appointment{}, nil)

		slots, err := svc.FreeSlots(context.Background(), 3, "07/03/2026")

		assert.NoError(t, err)
		assert.Len(t, slots, 11)
		assert.Equal(t, time.Saturday, slots[0].Weekday())
	})

	t.Run("rejects an unparseable day", func(t *testing.T) {
		svc, _, _, professionals := newTestService()
		professionals.On("GetByID", mock.Anything, int64(3)).Return(professional, nil)

		_, err := svc.FreeSlots(context.Background(), 3, "2026-03-02")

		assert.Error(t, err)
		assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.TypeOf(err))
		assert.Contains(t, err.Error(), "currect date format : dd/mm/YYYY")
	})

	t.Run("rejects an unknown professional", func(t *testing.T) {
		svc, _, _, professionals := newTestService()
		professionals.On("GetByID", mock.Anything, int64(42)).Return(nil, apperrors.NewNotFoundError("professional not found"))

		_, err := svc.FreeSlots(context.Background(), 42, "02/03/2026")

		assert.Error(t, err)
		assert.Equal(t, apperrors.ErrorTypeNotFound, apperrors.TypeOf(err))
	})
}

func TestSchedulingService_BookedSlotLeavesAvailability(t *testing.T) {
	// A successful booking must make the slot disappear from the day's
	// free-slot listing.
	svc, appointments, clients, professionals := newTestService()
	client := &entities.Client{ID: 7}
	professional := &entities.Professional{ID: 3}
	schedule := mustParse(t, services.BookingDateLayout, "02/03/2026 09:45:00")

	clients.On("GetByID", mock.Anything, int64(7)).Return(client, nil)
	professionals.On("GetByID", mock.Anything, int64(3)).Return(professional, nil)
	appointments.On("ListByProfessional", mock.Anything, int64(3)).Return([]*entities.Appointment{}, nil).Once()
	appointments.On("Create", mock.Anything, mock.Anything).Return(nil)

	booked, err := svc.Book(context.Background(), 3, 7, json.RawMessage(`"02/03/2026 09:45:00"`))
	assert.NoError(t, err)

	appointments.On("ListByProfessional", mock.Anything, int64(3)).Return([]*entities.Appointment{booked}, nil)

	slots, err := svc.FreeSlots(context.Background(), 3, "02/03/2026")
	assert.NoError(t, err)
	assert.Len(t, slots, 10)
	for _, slot := range slots {
		assert.False(t, slot.Equal(schedule))
	}
}

func TestSchedulingService_ProfessionalSchedules(t *testing.T) {
	svc, appointments, clients, professionals := newTestService()
	professional := &entities.Professional{ID: 3}
	client := &entities.Client{ID: 7, Name: "Maria"}
	schedule := mustParse(t, services.ScheduleWireLayout, "2026-03-02 09:45:00")

	professionals.On("GetByID", mock.Anything, int64(3)).Return(professional, nil)
	appointments.On("ListByProfessional", mock.Anything, int64(3)).Return([]*entities.Appointment{
		{ID: 1, ProfessionalID: 3, ClientID: 7, Schedule: schedule},
	}, nil)
	clients.On("GetByID", mock.Anything, int64(7)).Return(client, nil)

	entries, err := svc.ProfessionalSchedules(context.Background(), 3)

	assert.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.True(t, entries[0].Schedule.Equal(schedule))
	assert.Equal(t, "Maria", entries[0].Client.Name)
}

func TestSchedulingService_ClientSchedules(t *testing.T) {
	svc, appointments, _, _ := newTestService()
	first := mustParse(t, services.ScheduleWireLayout, "2026-03-02 09:45:00")
	second := mustParse(t, services.ScheduleWireLayout, "2026-03-04 12:00:00")

	appointments.On("ListByClient", mock.Anything, int64(7)).Return([]*entities.Appointment{
		{ID: 1, ProfessionalID: 3, ClientID: 7, Schedule: first},
		{ID: 2, ProfessionalID: 5, ClientID: 7, Schedule: second},
	}, nil)

	schedules, err := svc.ClientSchedules(context.Background(), 7)

	assert.NoError(t, err)
	assert.Len(t, schedules, 2)
	assert.True(t, schedules[0].Equal(first))
	assert.True(t, schedules[1].Equal(second))
}

func TestSchedulingService_BookPublishesEvent(t *testing.T) {
	bus := newStubEventBus(nil)
	svc, appointments, clients, professionals := newTestServiceWithBus(bus)
	client := &entities.Client{ID: 7, Name: "Maria"}
	professional := &entities.Professional{ID: 3, Name: "Dr. Souza"}

	clients.On("GetByID", mock.Anything, int64(7)).Return(client, nil)
	professionals.On("GetByID", mock.Anything, int64(3)).Return(professional, nil)
	appointments.On("ListByProfessional", mock.Anything, int64(3)).Return([]*entities.Appointment{}, nil)
	appointments.On("Create", mock.Anything, mock.Anything).Return(nil)

	appointment, err := svc.Book(context.Background(), 3, 7, json.RawMessage(`"02/03/2026 09:45:00"`))
	assert.NoError(t, err)

	for _, channel := range []string{
		providers.EventChannelBookings,
		providers.ProfessionalChannel(3),
	} {
		events := bus.published[channel]
		assert.Len(t, events, 1, channel)
		assert.Equal(t, entities.BookingEventCreated, events[0].Type)
		assert.Equal(t, int64(3), events[0].ProfessionalID)
		assert.Equal(t, int64(7), events[0].ClientID)
		assert.True(t, events[0].Schedule.Equal(appointment.Schedule))
		assert.NotEmpty(t, events[0].ID)
	}
}

func TestSchedulingService_BookSurvivesEventBusFailure(t *testing.T) {
	bus := newStubEventBus(errors.New("redis connection refused"))
	svc, appointments, clients, professionals := newTestServiceWithBus(bus)
	client := &entities.Client{ID: 7, Name: "Maria"}
	professional := &entities.Professional{ID: 3, Name: "Dr. Souza"}

	clients.On("GetByID", mock.Anything, int64(7)).Return(client, nil)
	professionals.On("GetByID", mock.Anything, int64(3)).Return(professional, nil)
	appointments.On("ListByProfessional", mock.Anything, int64(3)).Return([]*entities.Appointment{}, nil)
	appointments.On("Create", mock.Anything, mock.Anything).Return(nil)

	appointment, err := svc.Book(context.Background(), 3, 7, json.RawMessage(`"02/03/2026 09:45:00"`))

	assert.NoError(t, err)
	assert.NotNil(t, appointment)
	appointments.AssertExpectations(t)
}

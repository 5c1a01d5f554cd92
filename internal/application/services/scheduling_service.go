package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/agendasaude/backend/internal/domain/entities"
	"github.com/agendasaude/backend/internal/domain/providers"
	"github.com/agendasaude/backend/internal/domain/repositories"
	"github.com/agendasaude/backend/pkg/config"
	apperrors "github.com/agendasaude/backend/pkg/errors"
)

// External date layouts. Schedules travel as strings only at the HTTP
// boundary; internally they are native timestamps. All wall-clock values
// are interpreted as UTC so that parsed, stored and generated instants
// compare with plain equality.
const (
	// BookingDateLayout is the format of a booking request date
	BookingDateLayout = "02/01/2006 15:04:05"

	// DayLayout is the format of a free-slot query date
	DayLayout = "02/01/2006"

	// ScheduleWireLayout is the format schedules are rendered in responses
	ScheduleWireLayout = "2006-01-02 15:04:05"
)

// ProfessionalScheduleEntry is one row of a professional's agenda: the
// booked instant plus the client who booked it.
type ProfessionalScheduleEntry struct {
	Schedule time.Time
	Client   *entities.Client
}

// SchedulingService is the appointment scheduling and slot-availability
// engine. It validates booking requests, rejects weekend and
// double-booked slots, and enumerates the free slots of a working day.
type SchedulingService struct {
	appointments  repositories.AppointmentRepository
	clients       repositories.ClientRepository
	professionals repositories.ProfessionalRepository
	eventBus      providers.EventBus
	cfg           config.ScheduleConfig
}

// NewSchedulingService creates a new scheduling service. eventBus may
// be nil, in which case booking events are not published.
func NewSchedulingService(
	appointments repositories.AppointmentRepository,
	clients repositories.ClientRepository,
	professionals repositories.ProfessionalRepository,
	eventBus providers.EventBus,
	cfg config.ScheduleConfig,
) *SchedulingService {
	return &SchedulingService{
		appointments:  appointments,
		clients:       clients,
		professionals: professionals,
		eventBus:      eventBus,
		cfg:           cfg,
	}
}

// Book validates and commits a single appointment request. scheduleDate
// is the raw JSON value of the schedule_date field so that a non-string
// value is rejected as its own error, distinct from an unparseable
// string. Checks run in a fixed order: client exists, date is a string,
// date parses, professional exists, not a weekend, slot not taken.
func (s *SchedulingService) Book(ctx context.Context, professionalID, clientID int64, scheduleDate json.RawMessage) (*entities.Appointment, error) {
	if _, err := s.clients.GetByID(ctx, clientID); err != nil {
		return nil, err
	}

	var rawDate string
	if err := json.Unmarshal(scheduleDate, &rawDate); err != nil {
		return nil, apperrors.NewValidationError("schedule_date must be a string")
	}

	schedule, err := time.Parse(BookingDateLayout, rawDate)
	if err != nil {
		return nil, apperrors.NewValidationError("currect date format : dd/mm/YYYY")
	}
	schedule = schedule.Truncate(time.Second)

	if _, err := s.professionals.GetByID(ctx, professionalID); err != nil {
		return nil, err
	}

	if wd := schedule.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return nil, apperrors.NewBusinessRuleError("appointments cannot be scheduled over the weekend")
	}

	booked, err := s.appointments.ListByProfessional(ctx, professionalID)
	if err != nil {
		return nil, err
	}
	for _, existing := range booked {
		if existing.Schedule.Equal(schedule) {
			return nil, apperrors.NewBusinessRuleError("busy schedule")
		}
	}

	appointment := &entities.Appointment{
		ProfessionalID: professionalID,
		ClientID:       clientID,
		Schedule:       schedule,
		CreatedAt:      time.Now(),
	}
	if err := s.appointments.Create(ctx, appointment); err != nil {
		return nil, err
	}

	s.publishBooked(ctx, appointment)

	return appointment, nil
}

// FreeSlots enumerates the bookable moments of a single calendar day
// for a professional: the candidate sequence of the working day minus
// every slot matching an existing appointment exactly.
func (s *SchedulingService) FreeSlots(ctx context.Context, professionalID int64, day string) ([]time.Time, error) {
	if _, err := s.professionals.GetByID(ctx, professionalID); err != nil {
		return nil, err
	}

	date, err := time.Parse(DayLayout, day)
	if err != nil {
		return nil, apperrors.NewValidationError("currect date format : dd/mm/YYYY")
	}

	candidates := s.candidateSlots(date)

	booked, err := s.appointments.ListByProfessional(ctx, professionalID)
	if err != nil {
		return nil, err
	}

	free := make([]time.Time, 0, len(candidates))
	for _, slot := range candidates {
		busy := false
		for _, existing := range booked {
			if existing.Schedule.Equal(slot) {
				busy = true
				break
			}
		}
		if !busy {
			free = append(free, slot)
		}
	}

	return free, nil
}

// candidateSlots generates the working day's slot sequence: starting at
// DayStartHour, stepping by SlotMinutes, stopping once a slot's hour
// reaches ClosingHour or the day runs out.
func (s *SchedulingService) candidateSlots(day time.Time) []time.Time {
	if s.cfg.SlotMinutes <= 0 {
		return nil
	}

	nextDay := day.AddDate(0, 0, 1)
	var slots []time.Time
	for t := day.Add(time.Duration(s.cfg.DayStartHour) * time.Hour); t.Before(nextDay) && t.Hour() < s.cfg.ClosingHour; t = t.Add(time.Duration(s.cfg.SlotMinutes) * time.Minute) {
		slots = append(slots, t)
	}
	return slots
}

// ProfessionalSchedules returns the professional's booked agenda with
// the client of each entry.
func (s *SchedulingService) ProfessionalSchedules(ctx context.Context, professionalID int64) ([]ProfessionalScheduleEntry, error) {
	if _, err := s.professionals.GetByID(ctx, professionalID); err != nil {
		return nil, err
	}

	booked, err := s.appointments.ListByProfessional(ctx, professionalID)
	if err != nil {
		return nil, err
	}

	entries := make([]ProfessionalScheduleEntry, 0, len(booked))
	for _, appointment := range booked {
		client, err := s.clients.GetByID(ctx, appointment.ClientID)
		if err != nil {
			return nil, err
		}
		entries = append(entries, ProfessionalScheduleEntry{
			Schedule: appointment.Schedule,
			Client:   client,
		})
	}

	return entries, nil
}

// ClientSchedules returns every instant the client has booked.
func (s *SchedulingService) ClientSchedules(ctx context.Context, clientID int64) ([]time.Time, error) {
	booked, err := s.appointments.ListByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	schedules := make([]time.Time, 0, len(booked))
	for _, appointment := range booked {
		schedules = append(schedules, appointment.Schedule)
	}
	return schedules, nil
}

// publishBooked emits a booking event. Publication is best-effort: a
// bus failure never fails the booking.
func (s *SchedulingService) publishBooked(ctx context.Context, appointment *entities.Appointment) {
	if s.eventBus == nil {
		return
	}

	event := &entities.BookingEvent{
		ID:             uuid.New().String(),
		Type:           entities.BookingEventCreated,
		ProfessionalID: appointment.ProfessionalID,
		ClientID:       appointment.ClientID,
		Schedule:       appointment.Schedule,
		OccurredAt:     time.Now(),
	}

	for _, channel := range []string{
		providers.EventChannelBookings,
		providers.ProfessionalChannel(appointment.ProfessionalID),
	} {
		if err := s.eventBus.Publish(ctx, channel, event); err != nil {
			log.Warn().Err(err).Str("channel", channel).Msg("failed to publish booking event")
		}
	}
}

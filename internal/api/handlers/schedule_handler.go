package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/agendasaude/backend/internal/application/services"
	"github.com/agendasaude/backend/internal/domain/entities"
	apperrors "github.com/agendasaude/backend/pkg/errors"
)

// Scheduler is the application surface of the scheduling engine.
type Scheduler interface {
	Book(ctx context.Context, professionalID, clientID int64, scheduleDate json.RawMessage) (*entities.Appointment, error)
	FreeSlots(ctx context.Context, professionalID int64, day string) ([]time.Time, error)
	ProfessionalSchedules(ctx context.Context, professionalID int64) ([]services.ProfessionalScheduleEntry, error)
	ClientSchedules(ctx context.Context, clientID int64) ([]time.Time, error)
}

// ScheduleHandler handles booking and agenda HTTP requests
type ScheduleHandler struct {
	scheduler Scheduler
}

// NewScheduleHandler creates a new schedule handler
func NewScheduleHandler(scheduler Scheduler) *ScheduleHandler {
	return &ScheduleHandler{scheduler: scheduler}
}

type bookingRequest struct {
	ClientID int64 `json:"client_id"`
	// kept raw so a non-string value is its own error, distinct from
	// an unparseable string
	ScheduleDate json.RawMessage `json:"schedule_date"`
}

type slotView struct {
	Horario string `json:"horario"`
}

type agendaEntryView struct {
	Horario string           `json:"horario"`
	Client  *entities.Client `json:"client"`
}

// BookAppointment handles POST /professional/{id}/schedule
func (h *ScheduleHandler) BookAppointment(w http.ResponseWriter, r *http.Request) {
	professionalID, err := pathID(r)
	if err != nil {
		respondWithMsg(w, http.StatusNotFound, "error not found")
		return
	}

	var req bookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, err := h.scheduler.Book(r.Context(), professionalID, req.ClientID, req.ScheduleDate); err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			switch appErr.Type {
			case apperrors.ErrorTypeNotFound:
				respondWithMsg(w, http.StatusNotFound, appErr.Message)
			// booking replies 409 to malformed dates as well, unlike
			// the free-slot query which uses 400
			case apperrors.ErrorTypeValidation,
				apperrors.ErrorTypeBusinessRule,
				apperrors.ErrorTypeConflict:
				respondWithMsg(w, http.StatusConflict, appErr.Message)
			default:
				respondWithError(w, http.StatusInternalServerError, "internal server error")
			}
			return
		}
		respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondWithMsg(w, http.StatusCreated, "Horario marcado, nos vemos na consulta!")
}

// GetProfessionalSchedule handles GET /professional/{id}/schedule
func (h *ScheduleHandler) GetProfessionalSchedule(w http.ResponseWriter, r *http.Request) {
	professionalID, err := pathID(r)
	if err != nil {
		respondWithMsg(w, http.StatusNotFound, "error not found")
		return
	}

	entries, err := h.scheduler.ProfessionalSchedules(r.Context(), professionalID)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	// an empty agenda is not an error: signal it with a message body
	if len(entries) == 0 {
		respondWithMsg(w, http.StatusOK, "professional has no appointments scheduled")
		return
	}

	views := make([]agendaEntryView, 0, len(entries))
	for _, entry := range entries {
		views = append(views, agendaEntryView{
			Horario: entry.Schedule.Format(services.ScheduleWireLayout),
			Client:  entry.Client,
		})
	}
	respondWithJSON(w, http.StatusOK, views)
}

// GetFreeSchedule handles GET /professional/{id}/schedule/free. The
// request body must be exactly {"schedule_date": "DD/MM/YYYY"}; the
// shape checks run in a fixed order, each with its own error.
func (h *ScheduleHandler) GetFreeSchedule(w http.ResponseWriter, r *http.Request) {
	professionalID, err := pathID(r)
	if err != nil {
		respondWithMsg(w, http.StatusNotFound, "error not found")
		return
	}

	var body map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithMsg(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(body) > 1 {
		respondWithMsg(w, http.StatusBadRequest, "free-slot queries accept only the schedule_date field")
		return
	}
	rawDay, ok := body["schedule_date"]
	if !ok {
		respondWithMsg(w, http.StatusBadRequest, "schedule_date is required")
		return
	}
	var day string
	if err := json.Unmarshal(rawDay, &day); err != nil {
		respondWithMsg(w, http.StatusBadRequest, "schedule_date must be a string")
		return
	}

	slots, err := h.scheduler.FreeSlots(r.Context(), professionalID, day)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			switch appErr.Type {
			case apperrors.ErrorTypeNotFound:
				respondWithMsg(w, http.StatusNotFound, appErr.Message)
			case apperrors.ErrorTypeValidation:
				respondWithMsg(w, http.StatusBadRequest, appErr.Message)
			default:
				respondWithError(w, http.StatusInternalServerError, "internal server error")
			}
			return
		}
		respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondWithJSON(w, http.StatusOK, slotViews(slots))
}

// GetClientSchedule handles GET /clients/{id}/schedule
func (h *ScheduleHandler) GetClientSchedule(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid client id")
		return
	}

	schedules, err := h.scheduler.ClientSchedules(r.Context(), clientID)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, slotViews(schedules))
}

func slotViews(slots []time.Time) []slotView {
	views := make([]slotView, 0, len(slots))
	for _, slot := range slots {
		views = append(views, slotView{Horario: slot.Format(services.ScheduleWireLayout)})
	}
	return views
}

func respondWithMsg(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"msg": message,
	})
}

package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/agendasaude/backend/internal/application/services"
	"github.com/agendasaude/backend/internal/domain/entities"
)

// ProfessionalService is the application surface the professional
// handler needs.
type ProfessionalService interface {
	Create(ctx context.Context, in services.CreateProfessionalInput) (*entities.Professional, error)
	Get(ctx context.Context, id int64) (*entities.Professional, error)
	List(ctx context.Context) ([]*entities.Professional, error)
	Update(ctx context.Context, id int64, in services.UpdateProfessionalInput) (*entities.Professional, error)
	Delete(ctx context.Context, id int64) error
}

// ProfessionalHandler handles professional-related HTTP requests
type ProfessionalHandler struct {
	professionals ProfessionalService
}

// NewProfessionalHandler creates a new professional handler
func NewProfessionalHandler(professionals ProfessionalService) *ProfessionalHandler {
	return &ProfessionalHandler{professionals: professionals}
}

// CreateProfessional handles POST /professional
func (h *ProfessionalHandler) CreateProfessional(w http.ResponseWriter, r *http.Request) {
	var in services.CreateProfessionalInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	professional, err := h.professionals.Create(r.Context(), in)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, professional)
}

// ListProfessionals handles GET /professional
func (h *ProfessionalHandler) ListProfessionals(w http.ResponseWriter, r *http.Request) {
	professionals, err := h.professionals.List(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to list professionals")
		return
	}
	if professionals == nil {
		professionals = []*entities.Professional{}
	}
	respondWithJSON(w, http.StatusOK, professionals)
}

// GetProfessional handles GET /professional/{id}
func (h *ProfessionalHandler) GetProfessional(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid professional id")
		return
	}

	professional, err := h.professionals.Get(r.Context(), id)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, professional)
}

// UpdateProfessional handles PATCH /professional for the
// authenticated professional
func (h *ProfessionalHandler) UpdateProfessional(w http.ResponseWriter, r *http.Request) {
	id, ok := authenticatedID(w, r)
	if !ok {
		return
	}

	var in services.UpdateProfessionalInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	professional, err := h.professionals.Update(r.Context(), id, in)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, professional)
}

// DeleteProfessional handles DELETE /professional for the
// authenticated professional. Deletion is refused while appointments
// remain on the agenda.
func (h *ProfessionalHandler) DeleteProfessional(w http.ResponseWriter, r *http.Request) {
	id, ok := authenticatedID(w, r)
	if !ok {
		return
	}

	if err := h.professionals.Delete(r.Context(), id); err != nil {
		respondWithDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

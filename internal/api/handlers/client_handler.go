package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/agendasaude/backend/internal/api/middleware"
	"github.com/agendasaude/backend/internal/application/services"
	"github.com/agendasaude/backend/internal/domain/entities"
	apperrors "github.com/agendasaude/backend/pkg/errors"
)

// ClientService is the application surface the client handler needs.
type ClientService interface {
	Create(ctx context.Context, in services.CreateClientInput) (*entities.Client, error)
	Get(ctx context.Context, id int64) (*entities.Client, error)
	List(ctx context.Context) ([]*entities.Client, error)
	Update(ctx context.Context, id int64, in services.UpdateClientInput) (*entities.Client, error)
	Delete(ctx context.Context, id int64) error
}

// ClientHandler handles client-related HTTP requests
type ClientHandler struct {
	clients ClientService
}

// NewClientHandler creates a new client handler
func NewClientHandler(clients ClientService) *ClientHandler {
	return &ClientHandler{clients: clients}
}

// CreateClient handles POST /clients
func (h *ClientHandler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var in services.CreateClientInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	client, err := h.clients.Create(r.Context(), in)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, client)
}

// ListClients handles GET /clients
func (h *ClientHandler) ListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.clients.List(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to list clients")
		return
	}
	if clients == nil {
		clients = []*entities.Client{}
	}
	respondWithJSON(w, http.StatusOK, clients)
}

// GetClient handles GET /clients/{id}
func (h *ClientHandler) GetClient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid client id")
		return
	}

	client, err := h.clients.Get(r.Context(), id)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, client)
}

// UpdateClient handles PATCH /clients. The target is the
// authenticated client; the route carries no id.
func (h *ClientHandler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	id, ok := authenticatedID(w, r)
	if !ok {
		return
	}

	var in services.UpdateClientInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	client, err := h.clients.Update(r.Context(), id, in)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, client)
}

// DeleteClient handles DELETE /clients for the authenticated client
func (h *ClientHandler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	id, ok := authenticatedID(w, r)
	if !ok {
		return
	}

	if err := h.clients.Delete(r.Context(), id); err != nil {
		respondWithDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Helper functions

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// respondWithDomainError translates an application error into the
// status codes the CRUD routes use. The booking route has its own
// mapping; see ScheduleHandler.
func respondWithDomainError(w http.ResponseWriter, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case apperrors.ErrorTypeNotFound:
			respondWithError(w, http.StatusNotFound, appErr.Message)
		case apperrors.ErrorTypeValidation:
			respondWithError(w, http.StatusBadRequest, appErr.Message)
		case apperrors.ErrorTypeConflict, apperrors.ErrorTypeBusinessRule:
			respondWithError(w, http.StatusConflict, appErr.Message)
		case apperrors.ErrorTypeUnauthorized:
			respondWithError(w, http.StatusUnauthorized, appErr.Message)
		default:
			respondWithError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}
	respondWithError(w, http.StatusInternalServerError, "internal server error")
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// authenticatedID resolves the id of the token owner. It writes the
// 401 response itself when the request carries no usable identity.
func authenticatedID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return 0, false
	}
	id, err := claims.UserID()
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, "invalid token subject")
		return 0, false
	}
	return id, true
}

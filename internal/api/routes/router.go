package routes

import (
	"net/http"

	"github.com/agendasaude/backend/internal/api/handlers"
	"github.com/agendasaude/backend/internal/api/middleware"
)

// Router holds all route handlers

type Router struct {
	mux *http.ServeMux

	clientHandler       *handlers.ClientHandler
	professionalHandler *handlers.ProfessionalHandler
	scheduleHandler     *handlers.ScheduleHandler

	rateLimiter *middleware.RateLimiter
	authSecret  string
	tracing     bool
}

// NewRouter creates a new router
func NewRouter(
	clientHandler *handlers.ClientHandler,
	professionalHandler *handlers.ProfessionalHandler,
	scheduleHandler *handlers.ScheduleHandler,
	rateLimiter *middleware.RateLimiter,
	authSecret string,
	tracing bool,
) *Router {
	return &Router{
		mux: http.NewServeMux(),

		clientHandler:       clientHandler,
		professionalHandler: professionalHandler,
		scheduleHandler:     scheduleHandler,

		rateLimiter: rateLimiter,
		authSecret:  authSecret,
		tracing:     tracing,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	auth := middleware.RequireAuth(r.authSecret)

	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Client endpoints

	r.mux.HandleFunc("POST /clients", r.clientHandler.CreateClient)
	r.mux.HandleFunc("GET /clients", r.clientHandler.ListClients)

	r.mux.Handle("GET /clients/{id}", auth(http.HandlerFunc(r.clientHandler.GetClient)))
	r.mux.Handle("PATCH /clients", auth(http.HandlerFunc(r.clientHandler.UpdateClient)))
	r.mux.Handle("DELETE /clients", auth(http.HandlerFunc(r.clientHandler.DeleteClient)))

	r.mux.Handle("GET /clients/{id}/schedule", auth(http.HandlerFunc(r.scheduleHandler.GetClientSchedule)))

	// Professional endpoints

	r.mux.HandleFunc("POST /professional", r.professionalHandler.CreateProfessional)
	r.mux.HandleFunc("GET /professional", r.professionalHandler.ListProfessionals)
	r.mux.HandleFunc("GET /professional/{id}", r.professionalHandler.GetProfessional)

	r.mux.Handle("PATCH /professional", auth(http.HandlerFunc(r.professionalHandler.UpdateProfessional)))
	r.mux.Handle("DELETE /professional", auth(http.HandlerFunc(r.professionalHandler.DeleteProfessional)))

	// Scheduling endpoints

	r.mux.HandleFunc("POST /professional/{id}/schedule", r.scheduleHandler.BookAppointment)
	r.mux.HandleFunc("GET /professional/{id}/schedule", r.scheduleHandler.GetProfessionalSchedule)
	r.mux.HandleFunc("GET /professional/{id}/schedule/free", r.scheduleHandler.GetFreeSchedule)

	// Apply middleware in reverse order (last middleware wraps first)
	// CORS must be outermost so error responses also get CORS headers.

	var handler http.Handler = r.mux
	handler = middleware.Compression(handler)
	if r.rateLimiter != nil {
		handler = r.rateLimiter.Middleware(handler)
	}
	if r.tracing {
		handler = middleware.ObservabilityMiddleware(handler)
	}
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.CORSMiddleware(handler)

	return handler
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/agendasaude/backend/internal/adapters/cache"
	"github.com/agendasaude/backend/internal/adapters/database"
	"github.com/agendasaude/backend/internal/adapters/events"
	"github.com/agendasaude/backend/internal/api/handlers"
	"github.com/agendasaude/backend/internal/api/middleware"
	"github.com/agendasaude/backend/internal/api/routes"
	"github.com/agendasaude/backend/internal/application/services"
	"github.com/agendasaude/backend/internal/domain/providers"
	"github.com/agendasaude/backend/internal/domain/repositories"
	"github.com/agendasaude/backend/internal/infrastructure/clients/postgres"
	"github.com/agendasaude/backend/internal/infrastructure/clients/redis"
	"github.com/agendasaude/backend/internal/infrastructure/observability"
	"github.com/agendasaude/backend/pkg/config"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if cfg.Auth.Secret == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// OpenTelemetry is optional; the API runs untraced without it
	tracing := false
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up tracing")
		} else {
			tracing = true
			defer func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer shutdownCancel()
				if err := shutdown(shutdownCtx); err != nil {
					log.Error().Err(err).Msg("error shutting down tracing")
				}
			}()
		}
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize postgres client")
	}
	defer pgClient.Close()
	log.Info().Msg("postgres client initialized")

	applyMigrations(ctx, pgClient)

	// Redis is optional: without it the API runs uncached and without
	// booking events
	var cacheProvider providers.CacheProvider
	var eventBus providers.EventBus
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, running without cache and events")
	} else {
		defer redisClient.Close()
		cacheProvider = cache.NewRedisAdapter(redisClient)
		eventBus = events.NewRedisEventBus(redisClient)
		log.Info().Msg("redis client initialized")
	}

	// Adapters
	conditionAdapter := database.NewConditionAdapter(pgClient)
	clientAdapter := database.NewClientAdapter(pgClient, conditionAdapter)
	appointmentAdapter := database.NewAppointmentAdapter(pgClient)

	var professionalAdapter repositories.ProfessionalRepository = database.NewProfessionalAdapter(pgClient)
	if cacheProvider != nil {
		professionalAdapter = database.NewCachedProfessionalAdapter(professionalAdapter, cacheProvider)
	}

	// Services
	schedulingService := services.NewSchedulingService(
		appointmentAdapter, clientAdapter, professionalAdapter, eventBus, cfg.Schedule)
	clientService := services.NewClientService(clientAdapter, conditionAdapter)
	professionalService := services.NewProfessionalService(professionalAdapter)

	// Audit trail for bookings, fed by the event bus
	var bookingListener *services.BookingListener
	if eventBus != nil {
		bookingListener = services.NewBookingListener(eventBus, nil)
		if err := bookingListener.Start(ctx); err != nil {
			log.Warn().Err(err).Msg("booking listener failed to start")
			bookingListener = nil
		}
	}

	// HTTP surface
	rateLimiter := middleware.NewRateLimiter(5, 10)
	defer rateLimiter.Stop()
	router := routes.NewRouter(
		handlers.NewClientHandler(clientService),
		handlers.NewProfessionalHandler(professionalService),
		handlers.NewScheduleHandler(schedulingService),
		rateLimiter,
		cfg.Auth.Secret,
		tracing,
	)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	if bookingListener != nil {
		bookingListener.Stop()
	}
	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Error().Err(err).Msg("error closing event bus")
		}
	}
}

// applyMigrations runs the schema file if present. Failures are logged
// and not fatal so a pre-migrated database keeps working.
func applyMigrations(ctx context.Context, pgClient *postgres.Client) {
	migration, err := os.ReadFile("db/migrations/001_init.sql")
	if err != nil {
		log.Warn().Err(err).Msg("migration file not found, skipping")
		return
	}
	if _, err := pgClient.DB().ExecContext(ctx, string(migration)); err != nil {
		log.Warn().Err(err).Msg("migration failed")
		return
	}
	log.Info().Msg("migration applied")
}

package main

import (
	"context"
	"encoding/json"
	"log"

	"github.com/joho/godotenv"

	"github.com/agendasaude/backend/internal/adapters/database"
	"github.com/agendasaude/backend/internal/application/services"
	"github.com/agendasaude/backend/internal/infrastructure/clients/postgres"
	"github.com/agendasaude/backend/pkg/config"
)

// Seeds a development database with a couple of clients, professionals
// and one booked appointment.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pgClient.Close()

	ctx := context.Background()

	conditionRepo := database.NewConditionAdapter(pgClient)
	clientRepo := database.NewClientAdapter(pgClient, conditionRepo)
	professionalRepo := database.NewProfessionalAdapter(pgClient)
	appointmentRepo := database.NewAppointmentAdapter(pgClient)

	clientService := services.NewClientService(clientRepo, conditionRepo)
	professionalService := services.NewProfessionalService(professionalRepo)
	schedulingService := services.NewSchedulingService(
		appointmentRepo, clientRepo, professionalRepo, nil, cfg.Schedule)

	maria, err := clientService.Create(ctx, services.CreateClientInput{
		Name:     "Maria",
		LastName: "Silva",
		Age:      34,
		Email:    "maria.silva@example.com",
		Password: "maria-dev-password",
		Gender:   "f",
		Height:   1.70,
		Weigth:   68,
		Diseases: []services.ConditionInput{{Name: "asthma"}},
	})
	if err != nil {
		log.Fatalf("Failed to seed client: %v", err)
	}
	log.Printf("Seeded client %d (%s)", maria.ID, maria.Email)

	joao, err := clientService.Create(ctx, services.CreateClientInput{
		Name:      "Joao",
		LastName:  "Pereira",
		Age:       41,
		Email:     "joao.pereira@example.com",
		Password:  "joao-dev-password",
		Gender:    "m",
		Height:    1.82,
		Weigth:    85,
		Surgeries: []services.ConditionInput{{Name: "appendectomy"}},
	})
	if err != nil {
		log.Fatalf("Failed to seed client: %v", err)
	}
	log.Printf("Seeded client %d (%s)", joao.ID, joao.Email)

	souza, err := professionalService.Create(ctx, services.CreateProfessionalInput{
		Name:      "Dr. Souza",
		Email:     "souza@clinic.example.com",
		Phone:     "+55 11 98888-7777",
		CRM:       "CRM/SP 123456",
		Password:  "souza-dev-password",
		Specialty: "cardiology",
	})
	if err != nil {
		log.Fatalf("Failed to seed professional: %v", err)
	}
	log.Printf("Seeded professional %d (%s)", souza.ID, souza.CRM)

	if _, err := professionalService.Create(ctx, services.CreateProfessionalInput{
		Name:      "Dra. Lima",
		Email:     "lima@clinic.example.com",
		Phone:     "+55 11 97777-6666",
		CRM:       "CRM/SP 654321",
		Password:  "lima-dev-password",
		Specialty: "pediatrics",
	}); err != nil {
		log.Fatalf("Failed to seed professional: %v", err)
	}

	// first weekday slot of a fixed future monday
	appointment, err := schedulingService.Book(
		ctx, souza.ID, maria.ID, json.RawMessage(`"02/03/2026 09:00:00"`))
	if err != nil {
		log.Fatalf("Failed to seed appointment: %v", err)
	}
	log.Printf("Seeded appointment %d at %s", appointment.ID, appointment.Schedule)

	log.Println("Seeding complete")
}

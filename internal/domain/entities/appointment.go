package entities

import (
	"time"
)

// Appointment represents a booked slot between a client and a
// professional. Schedule is the exact moment of the appointment,
// compared at whole-second precision; a professional can hold at most
// one appointment per instant.
type Appointment struct {
	ID             int64     `json:"id" db:"id"`
	ProfessionalID int64     `json:"professional_id" db:"professional_id"`
	ClientID       int64     `json:"client_id" db:"client_id"`
	Schedule       time.Time `json:"schedule" db:"schedule"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

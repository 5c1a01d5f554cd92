package entities

import (
	"time"
)

// Professional represents a health professional that clients can book.
type Professional struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	Phone        string    `json:"phone" db:"phone"`
	CRM          string    `json:"crm" db:"crm"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Specialty    string    `json:"specialty" db:"specialty"`
	FinalRating  float64   `json:"final_rating" db:"final_rating"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

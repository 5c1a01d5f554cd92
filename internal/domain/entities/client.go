package entities

import (
	"time"
)

// Client represents a registered client and their health profile.
// "Weigth" keeps the spelling used by the public API contract.
type Client struct {
	ID           int64       `json:"id" db:"id"`
	Name         string      `json:"name" db:"name"`
	LastName     string      `json:"last_name" db:"last_name"`
	Age          int         `json:"age" db:"age"`
	Email        string      `json:"email" db:"email"`
	PasswordHash string      `json:"-" db:"password_hash"`
	Gender       string      `json:"gender" db:"gender"`
	Height       float64     `json:"height" db:"height"`
	Weigth       float64     `json:"weigth" db:"weigth"`
	IMC          float64     `json:"imc" db:"imc"`
	Diseases     []Condition `json:"diseases,omitempty" db:"-"`
	Deficiencies []Condition `json:"deficiencies,omitempty" db:"-"`
	Surgeries    []Condition `json:"surgeries,omitempty" db:"-"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at" db:"updated_at"`
}

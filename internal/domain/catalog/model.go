package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Discipline groups services and specialists ("Physiotherapy",
// "Dermatology").
type Discipline struct {
	ID          uuid.UUID `db:"id" json:"id"`
	ClinicID    uuid.UUID `db:"clinic_id" json:"clinic_id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Service is a bookable offering. DurationMin drives slot generation;
// PriceCents feeds invoicing.
type Service struct {
	ID           uuid.UUID `db:"id" json:"id"`
	ClinicID     uuid.UUID `db:"clinic_id" json:"clinic_id"`
	DisciplineID uuid.UUID `db:"discipline_id" json:"discipline_id"`
	Name         string    `db:"name" json:"name"`
	DurationMin  int       `db:"duration_min" json:"duration_min"`
	PriceCents   int64     `db:"price_cents" json:"price_cents"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

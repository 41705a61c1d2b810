package staff

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Shift is one contiguous working block within a day, expressed as
// clock strings ("09:00 am", "05:30 pm").
type Shift struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// WorkingHours maps lowercase weekday names ("monday".."sunday") to the
// shifts worked that day. Days absent from the map are days off. Stored
// as JSONB.
type WorkingHours map[string][]Shift

// Staff maps to the staff table. Role mirrors the auth role the member
// signs in with; only specialists are bookable.
type Staff struct {
	ID           uuid.UUID    `db:"id" json:"id"`
	ClinicID     uuid.UUID    `db:"clinic_id" json:"clinic_id"`
	SeqNo        int          `db:"seq_no" json:"seq_no"`
	FirstName    string       `db:"first_name" json:"first_name"`
	LastName     string       `db:"last_name" json:"last_name"`
	Email        string       `db:"email" json:"email"`
	Phone        *string      `db:"phone" json:"phone,omitempty"`
	Role         string       `db:"role" json:"role"`
	DisciplineID *uuid.UUID   `db:"discipline_id" json:"discipline_id,omitempty"`
	WorkingHours WorkingHours `db:"working_hours" json:"working_hours"`
	Active       bool         `db:"active" json:"active"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}

func (s *Staff) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// Holiday marks a full day a staff member is unavailable regardless of
// working hours.
type Holiday struct {
	ID       uuid.UUID `db:"id" json:"id"`
	ClinicID uuid.UUID `db:"clinic_id" json:"clinic_id"`
	StaffID  uuid.UUID `db:"staff_id" json:"staff_id"`
	Date     time.Time `db:"date" json:"date"`
	Note     *string   `db:"note" json:"note,omitempty"`
}

var weekdays = map[string]bool{
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
}

// WeekdayKey converts a time.Weekday into the WorkingHours map key.
func WeekdayKey(d time.Weekday) string {
	return strings.ToLower(d.String())
}

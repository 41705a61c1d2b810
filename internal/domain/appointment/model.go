package appointment

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusScheduled = "scheduled"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusMissed    = "missed"
	StatusCancelled = "cancelled"
)

// Appointment maps to the appointments table. PatientSeq and
// SpecialistSeq are the clinic-local numbers the front desk works with;
// the uuid columns keep referential integrity in the schema.
type Appointment struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	ClinicID      uuid.UUID  `db:"clinic_id" json:"clinic_id"`
	SeqNo         int        `db:"seq_no" json:"seq_no"`
	PatientID     uuid.UUID  `db:"patient_id" json:"patient_id"`
	PatientSeq    int        `db:"patient_seq" json:"patient_seq"`
	SpecialistID  uuid.UUID  `db:"specialist_id" json:"specialist_id"`
	SpecialistSeq int        `db:"specialist_seq" json:"specialist_seq"`
	DisciplineID  *uuid.UUID `db:"discipline_id" json:"discipline_id,omitempty"`
	ServiceID     *uuid.UUID `db:"service_id" json:"service_id,omitempty"`
	Date          time.Time  `db:"date" json:"date"`
	StartMin      int        `db:"start_min" json:"start_min"`
	EndMin        int        `db:"end_min" json:"end_min"`
	Status        string     `db:"status" json:"status"`
	CancelReason  *string    `db:"cancel_reason" json:"cancel_reason,omitempty"`
	Note          *string    `db:"note" json:"note,omitempty"`
	Documents     []string   `db:"documents" json:"documents"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// Terminal reports whether the status admits no further transitions.
func Terminal(status string) bool {
	switch status {
	case StatusCompleted, StatusMissed, StatusCancelled:
		return true
	}
	return false
}

// transitions is the strict state machine: forward progression through
// scheduled, confirmed, completed; cancelled from any non-terminal
// state; missed from scheduled or confirmed.
var transitions = map[string][]string{
	StatusScheduled: {StatusConfirmed, StatusCompleted, StatusMissed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusMissed, StatusCancelled},
}

// CanTransition reports whether from → to is an allowed status change.
func CanTransition(from, to string) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// ValidStatus reports whether s names a known appointment status.
func ValidStatus(s string) bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusCompleted, StatusMissed, StatusCancelled:
		return true
	}
	return false
}

// Overlaps is the half-open interval test used everywhere conflicts are
// checked: [aStart,aEnd) and [bStart,bEnd) intersect. Touching
// intervals do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return bStart < aEnd && bEnd > aStart
}

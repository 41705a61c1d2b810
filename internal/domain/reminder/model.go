package reminder

import (
	"time"

	"github.com/google/uuid"
)

const (
	// TriggerTimed fires a fixed lead time before each appointment.
	TriggerTimed = "TIMED"
	// TriggerDay fires once per day for all of that day's appointments.
	TriggerDay = "DAY"
)

const (
	MethodEmail = "email"
	MethodSMS   = "sms"
)

// Schedule is one clinic-configured reminder rule.
type Schedule struct {
	ID           uuid.UUID `db:"id" json:"id"`
	ClinicID     uuid.UUID `db:"clinic_id" json:"clinic_id"`
	Trigger      string    `db:"trigger" json:"trigger"`
	PriorMinutes int       `db:"prior_minutes" json:"prior_minutes"`
	Methods      []string  `db:"methods" json:"methods"`
	Subject      string    `db:"subject" json:"subject"`
	Body         string    `db:"body" json:"body"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// History is one dispatch attempt. Rows are append-only.
type History struct {
	ID            uuid.UUID `db:"id" json:"id"`
	ClinicID      uuid.UUID `db:"clinic_id" json:"clinic_id"`
	ScheduleID    uuid.UUID `db:"schedule_id" json:"schedule_id"`
	AppointmentID uuid.UUID `db:"appointment_id" json:"appointment_id"`
	PatientSeq    int       `db:"patient_seq" json:"patient_seq"`
	Method        string    `db:"method" json:"method"`
	Status        string    `db:"status" json:"status"`
	Detail        *string   `db:"detail" json:"detail,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

const (
	HistorySent   = "sent"
	HistoryFailed = "failed"
)

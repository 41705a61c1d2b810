package appointment

import (
	"context"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/clinic-api/pkg/pagination"
	"github.com/clinicore/clinic-api/pkg/timeutil"
)

type Repository interface {
	// Book runs the whole booking protocol transactionally: the
	// conflict query, the seq_no allocation, and the insert are atomic
	// with respect to other bookings for the same clinic.
	Book(ctx context.Context, a *Appointment) error

	GetByID(ctx context.Context, clinicID, id uuid.UUID) (*Appointment, error)
	SetStatus(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, clinicID, id uuid.UUID) error
	List(ctx context.Context, clinicID uuid.UUID, params url.Values) ([]*Appointment, pagination.Meta, error)

	// BusyIntervals returns the [start,end) minute pairs of every
	// non-cancelled appointment for the specialist on the date.
	BusyIntervals(ctx context.Context, clinicID, specialistID uuid.UUID, date time.Time) ([][2]int, error)

	// ListStartingBetween returns upcoming (scheduled or confirmed)
	// appointments whose start instant falls in [from, to).
	ListStartingBetween(ctx context.Context, clinicID uuid.UUID, from, to time.Time) ([]*Appointment, error)

	// ListOnDate returns the clinic's non-cancelled appointments for one
	// calendar day.
	ListOnDate(ctx context.Context, clinicID uuid.UUID, date time.Time) ([]*Appointment, error)

	// VolumeSamples returns one unit-weight sample per appointment dated
	// in [from, to), for period grouping.
	VolumeSamples(ctx context.Context, clinicID uuid.UUID, from, to time.Time) ([]timeutil.Sample, error)
}

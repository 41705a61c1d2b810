package appointment

import (
	"context"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/clinic-api/internal/domain/catalog"
	"github.com/clinicore/clinic-api/internal/domain/patient"
	"github.com/clinicore/clinic-api/internal/domain/staff"
	"github.com/clinicore/clinic-api/internal/platform/auth"
	"github.com/clinicore/clinic-api/pkg/apperr"
	"github.com/clinicore/clinic-api/pkg/pagination"
	"github.com/clinicore/clinic-api/pkg/timeutil"
)

// DefaultSlotMinutes is the slot length used when neither a service nor
// an explicit length selects one.
const DefaultSlotMinutes = 30

// StaffDirectory is the slice of the staff service booking needs.
type StaffDirectory interface {
	GetBySeq(ctx context.Context, clinicID uuid.UUID, seqNo int) (*staff.Staff, error)
	ShiftsOn(ctx context.Context, m *staff.Staff, date time.Time) ([][2]int, error)
}

// PatientDirectory resolves patients by their clinic-local number.
type PatientDirectory interface {
	GetBySeq(ctx context.Context, clinicID uuid.UUID, seqNo int) (*patient.Patient, error)
}

// ServiceCatalog resolves bookable services for slot-length defaults.
type ServiceCatalog interface {
	GetService(ctx context.Context, clinicID, id uuid.UUID) (*catalog.Service, error)
}

type Service struct {
	repo     Repository
	staff    StaffDirectory
	patients PatientDirectory
	catalog  ServiceCatalog
	now      func() time.Time
}

func NewService(repo Repository, staff StaffDirectory, patients PatientDirectory, cat ServiceCatalog) *Service {
	return &Service{repo: repo, staff: staff, patients: patients, catalog: cat, now: time.Now}
}

// BookingRequest carries the booking inputs. Patient and specialist are
// referenced by their clinic-local numbers; times are clock strings on
// one calendar day.
type BookingRequest struct {
	PatientSeq    int        `json:"patient_id"`
	SpecialistSeq int        `json:"specialist_id"`
	DisciplineID  *uuid.UUID `json:"discipline_id"`
	ServiceID     *uuid.UUID `json:"service_id"`
	Date          string     `json:"date"`
	StartTime     string     `json:"start_time"`
	EndTime       string     `json:"end_time"`
	Note          *string    `json:"note"`
	Documents     []string   `json:"documents"`
}

func (s *Service) Book(ctx context.Context, clinicID uuid.UUID, req BookingRequest) (*Appointment, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	startMin, err := timeutil.ParseClock(req.StartTime)
	if err != nil {
		return nil, apperr.Validation("start_time: %v", err)
	}
	endMin, err := timeutil.ParseClock(req.EndTime)
	if err != nil {
		return nil, apperr.Validation("end_time: %v", err)
	}
	if endMin <= startMin {
		return nil, apperr.Validation("end_time must be after start_time")
	}

	p, err := s.patients.GetBySeq(ctx, clinicID, req.PatientSeq)
	if err != nil {
		return nil, err
	}
	sp, err := s.staff.GetBySeq(ctx, clinicID, req.SpecialistSeq)
	if err != nil {
		return nil, err
	}
	if sp.Role != auth.RoleSpecialist {
		return nil, apperr.Validation("staff member %d is not bookable", sp.SeqNo)
	}

	// Holidays and days off both surface as an empty shift list.
	shifts, err := s.staff.ShiftsOn(ctx, sp, date)
	if err != nil {
		return nil, err
	}
	if len(shifts) == 0 {
		return nil, apperr.Conflict("specialist is not working on %s", date.Format("2006-01-02"))
	}

	a := &Appointment{
		ClinicID:      clinicID,
		PatientID:     p.ID,
		PatientSeq:    p.SeqNo,
		SpecialistID:  sp.ID,
		SpecialistSeq: sp.SeqNo,
		DisciplineID:  req.DisciplineID,
		ServiceID:     req.ServiceID,
		Date:          date,
		StartMin:      startMin,
		EndMin:        endMin,
		Note:          req.Note,
		Documents:     req.Documents,
	}
	if err := s.repo.Book(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// AvailabilityRequest selects the specialist's day to slice into slots.
// Timezone names the caller's location and only matters when Date is
// empty and "today" must be resolved.
type AvailabilityRequest struct {
	SpecialistSeq int
	Date          string
	Timezone      string
	ServiceID     *uuid.UUID
	Length        int
}

func (s *Service) Availability(ctx context.Context, clinicID uuid.UUID, req AvailabilityRequest) ([]SlotView, error) {
	loc := time.UTC
	if req.Timezone != "" {
		var err error
		if loc, err = time.LoadLocation(req.Timezone); err != nil {
			return nil, apperr.Validation("unknown timezone %q", req.Timezone)
		}
	}

	var date time.Time
	if req.Date == "" {
		now := s.now().In(loc)
		date = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	} else {
		var err error
		if date, err = parseDate(req.Date); err != nil {
			return nil, err
		}
	}

	length := req.Length
	if length <= 0 && req.ServiceID != nil {
		svc, err := s.catalog.GetService(ctx, clinicID, *req.ServiceID)
		if err != nil {
			return nil, err
		}
		length = svc.DurationMin
	}
	if length <= 0 {
		length = DefaultSlotMinutes
	}

	sp, err := s.staff.GetBySeq(ctx, clinicID, req.SpecialistSeq)
	if err != nil {
		return nil, err
	}
	shifts, err := s.staff.ShiftsOn(ctx, sp, date)
	if err != nil {
		return nil, err
	}
	busy, err := s.repo.BusyIntervals(ctx, clinicID, sp.ID, date)
	if err != nil {
		return nil, err
	}

	views := make([]SlotView, 0)
	for _, shift := range shifts {
		for _, slot := range BuildSlots(shift[0], shift[1], length, busy) {
			views = append(views, slot.View())
		}
	}
	return views, nil
}

// Transition applies one status change under the strict state machine.
func (s *Service) Transition(ctx context.Context, clinicID, id uuid.UUID, newStatus string, reason *string) (*Appointment, error) {
	if !ValidStatus(newStatus) {
		return nil, apperr.Validation("unknown status %q", newStatus)
	}
	a, err := s.repo.GetByID(ctx, clinicID, id)
	if err != nil {
		return nil, err
	}
	if a.Status == newStatus {
		return nil, apperr.Conflict("appointment is already %s", newStatus)
	}
	if !CanTransition(a.Status, newStatus) {
		return nil, apperr.Conflict("cannot move appointment from %s to %s", a.Status, newStatus)
	}
	switch newStatus {
	case StatusCancelled:
		if reason == nil || *reason == "" {
			return nil, apperr.Validation("cancellation requires a reason")
		}
		a.CancelReason = reason
	case StatusMissed:
		start := a.Date.Add(time.Duration(a.StartMin) * time.Minute)
		if s.now().UTC().Before(start) {
			return nil, apperr.Conflict("appointment has not started yet")
		}
	}
	a.Status = newStatus
	if err := s.repo.SetStatus(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Get(ctx context.Context, clinicID, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetByID(ctx, clinicID, id)
}

func (s *Service) Delete(ctx context.Context, clinicID, id uuid.UUID) error {
	return s.repo.Delete(ctx, clinicID, id)
}

func (s *Service) List(ctx context.Context, clinicID uuid.UUID, params url.Values) ([]*Appointment, pagination.Meta, error) {
	return s.repo.List(ctx, clinicID, params)
}

// Calendar returns the clinic's non-cancelled appointments for one day,
// for the day-view board.
func (s *Service) Calendar(ctx context.Context, clinicID uuid.UUID, dateStr string) ([]*Appointment, error) {
	if dateStr == "" {
		return nil, apperr.Validation("date is required")
	}
	date, err := parseDate(dateStr)
	if err != nil {
		return nil, err
	}
	return s.repo.ListOnDate(ctx, clinicID, date)
}

// Overview buckets the current period's appointment volume.
func (s *Service) Overview(ctx context.Context, clinicID uuid.UUID, period string) ([]timeutil.Bucket, error) {
	p := timeutil.Period(period)
	from, to := timeutil.PeriodRange(p, s.now())
	samples, err := s.repo.VolumeSamples(ctx, clinicID, from, to)
	if err != nil {
		return nil, err
	}
	return timeutil.GroupByPeriod(samples, p), nil
}

func parseDate(s string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, apperr.Validation("date must be YYYY-MM-DD")
	}
	return d, nil
}

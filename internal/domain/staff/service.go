package staff

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/clinic-api/internal/platform/auth"
	"github.com/clinicore/clinic-api/pkg/apperr"
	"github.com/clinicore/clinic-api/pkg/pagination"
	"github.com/clinicore/clinic-api/pkg/timeutil"
)

type Service struct {
	repo     Repository
	holidays HolidayRepository
}

func NewService(repo Repository, holidays HolidayRepository) *Service {
	return &Service{repo: repo, holidays: holidays}
}

func (s *Service) Create(ctx context.Context, m *Staff) error {
	if err := validate(m); err != nil {
		return err
	}
	return s.repo.Create(ctx, m)
}

func (s *Service) Get(ctx context.Context, clinicID, id uuid.UUID) (*Staff, error) {
	return s.repo.GetByID(ctx, clinicID, id)
}

func (s *Service) GetBySeq(ctx context.Context, clinicID uuid.UUID, seqNo int) (*Staff, error) {
	return s.repo.GetBySeq(ctx, clinicID, seqNo)
}

func (s *Service) Update(ctx context.Context, m *Staff) error {
	if m.ID == uuid.Nil {
		return apperr.Validation("staff id is required")
	}
	if err := validate(m); err != nil {
		return err
	}
	return s.repo.Update(ctx, m)
}

func (s *Service) Delete(ctx context.Context, clinicID, id uuid.UUID) error {
	return s.repo.Delete(ctx, clinicID, id)
}

func (s *Service) List(ctx context.Context, clinicID uuid.UUID, params url.Values) ([]*Staff, pagination.Meta, error) {
	return s.repo.List(ctx, clinicID, params)
}

// ShiftsOn resolves the shifts a staff member works on the given date,
// already parsed into minutes since midnight. A holiday or a day off
// yields an empty slice.
func (s *Service) ShiftsOn(ctx context.Context, m *Staff, date time.Time) ([][2]int, error) {
	off, err := s.holidays.Exists(ctx, m.ClinicID, m.ID, date)
	if err != nil {
		return nil, err
	}
	if off {
		return nil, nil
	}
	return ParseShifts(m.WorkingHours[WeekdayKey(date.Weekday())])
}

// ParseShifts converts clock-string shifts into [start,end) minute
// pairs, rejecting malformed or inverted ranges.
func ParseShifts(shifts []Shift) ([][2]int, error) {
	out := make([][2]int, 0, len(shifts))
	for _, sh := range shifts {
		start, err := timeutil.ParseClock(sh.Start)
		if err != nil {
			return nil, apperr.Validation("invalid shift start %q", sh.Start)
		}
		end, err := timeutil.ParseClock(sh.End)
		if err != nil {
			return nil, apperr.Validation("invalid shift end %q", sh.End)
		}
		if end <= start {
			return nil, apperr.Validation("shift %s-%s ends before it starts", sh.Start, sh.End)
		}
		out = append(out, [2]int{start, end})
	}
	return out, nil
}

func (s *Service) AddHoliday(ctx context.Context, h *Holiday) error {
	if h.StaffID == uuid.Nil {
		return apperr.Validation("staff_id is required")
	}
	if h.Date.IsZero() {
		return apperr.Validation("date is required")
	}
	// The staff member must belong to the clinic.
	if _, err := s.repo.GetByID(ctx, h.ClinicID, h.StaffID); err != nil {
		return err
	}
	return s.holidays.Add(ctx, h)
}

func (s *Service) RemoveHoliday(ctx context.Context, clinicID, id uuid.UUID) error {
	return s.holidays.Remove(ctx, clinicID, id)
}

func (s *Service) ListHolidays(ctx context.Context, clinicID, staffID uuid.UUID) ([]*Holiday, error) {
	return s.holidays.ListByStaff(ctx, clinicID, staffID)
}

func validate(m *Staff) error {
	if strings.TrimSpace(m.FirstName) == "" {
		return apperr.Validation("first_name is required")
	}
	if strings.TrimSpace(m.LastName) == "" {
		return apperr.Validation("last_name is required")
	}
	if !strings.Contains(m.Email, "@") {
		return apperr.Validation("email %q is not valid", m.Email)
	}
	if !auth.ValidRole(m.Role) || m.Role == auth.RolePlatformAdmin {
		return apperr.Validation("role must be clinic-admin, specialist, or receptionist")
	}
	for day, shifts := range m.WorkingHours {
		if !weekdays[day] {
			return apperr.Validation("unknown weekday %q in working hours", day)
		}
		if _, err := ParseShifts(shifts); err != nil {
			return err
		}
	}
	return nil
}

package staff

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/clinic-api/internal/platform/auth"
	"github.com/clinicore/clinic-api/pkg/apperr"
	"github.com/clinicore/clinic-api/pkg/pagination"
)

type mockRepo struct {
	byID map[uuid.UUID]*Staff
}

func newMockRepo() *mockRepo { return &mockRepo{byID: make(map[uuid.UUID]*Staff)} }

func (m *mockRepo) Create(_ context.Context, s *Staff) error {
	s.ID = uuid.New()
	s.SeqNo = len(m.byID) + 1
	m.byID[s.ID] = s
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, clinicID, id uuid.UUID) (*Staff, error) {
	s, ok := m.byID[id]
	if !ok || s.ClinicID != clinicID {
		return nil, apperr.NotFound("staff member not found")
	}
	return s, nil
}

func (m *mockRepo) GetBySeq(_ context.Context, clinicID uuid.UUID, seqNo int) (*Staff, error) {
	for _, s := range m.byID {
		if s.ClinicID == clinicID && s.SeqNo == seqNo {
			return s, nil
		}
	}
	return nil, apperr.NotFound("staff member not found")
}

func (m *mockRepo) Update(_ context.Context, s *Staff) error {
	if _, ok := m.byID[s.ID]; !ok {
		return apperr.NotFound("staff member not found")
	}
	m.byID[s.ID] = s
	return nil
}

func (m *mockRepo) Delete(_ context.Context, clinicID, id uuid.UUID) error {
	delete(m.byID, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, clinicID uuid.UUID, _ url.Values) ([]*Staff, pagination.Meta, error) {
	return nil, pagination.Meta{}, nil
}

type mockHolidays struct {
	holidays []*Holiday
}

func (m *mockHolidays) Add(_ context.Context, h *Holiday) error {
	h.ID = uuid.New()
	m.holidays = append(m.holidays, h)
	return nil
}

func (m *mockHolidays) Remove(_ context.Context, clinicID, id uuid.UUID) error {
	for i, h := range m.holidays {
		if h.ID == id && h.ClinicID == clinicID {
			m.holidays = append(m.holidays[:i], m.holidays[i+1:]...)
			return nil
		}
	}
	return apperr.NotFound("holiday not found")
}

func (m *mockHolidays) ListByStaff(_ context.Context, clinicID, staffID uuid.UUID) ([]*Holiday, error) {
	var out []*Holiday
	for _, h := range m.holidays {
		if h.ClinicID == clinicID && h.StaffID == staffID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (m *mockHolidays) Exists(_ context.Context, clinicID, staffID uuid.UUID, date time.Time) (bool, error) {
	for _, h := range m.holidays {
		if h.ClinicID == clinicID && h.StaffID == staffID && h.Date.Equal(date) {
			return true, nil
		}
	}
	return false, nil
}

func validStaff(clinic uuid.UUID) *Staff {
	return &Staff{
		ClinicID:  clinic,
		FirstName: "Dana",
		LastName:  "Kim",
		Email:     "dana@clinic.test",
		Role:      auth.RoleSpecialist,
		Active:    true,
		WorkingHours: WorkingHours{
			"monday": {{Start: "09:00 am", End: "05:00 pm"}},
		},
	}
}

func TestCreate_Valid(t *testing.T) {
	svc := NewService(newMockRepo(), &mockHolidays{})
	s := validStaff(uuid.New())
	if err := svc.Create(context.Background(), s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.SeqNo != 1 {
		t.Errorf("expected seq_no 1, got %d", s.SeqNo)
	}
}

func TestCreate_Validation(t *testing.T) {
	svc := NewService(newMockRepo(), &mockHolidays{})
	clinic := uuid.New()

	cases := []struct {
		name   string
		mutate func(*Staff)
	}{
		{"missing first name", func(s *Staff) { s.FirstName = "" }},
		{"bad email", func(s *Staff) { s.Email = "nope" }},
		{"unknown role", func(s *Staff) { s.Role = "janitor" }},
		{"platform admin not clinic staff", func(s *Staff) { s.Role = auth.RolePlatformAdmin }},
		{"unknown weekday", func(s *Staff) {
			s.WorkingHours = WorkingHours{"funday": {{Start: "09:00 am", End: "05:00 pm"}}}
		}},
		{"malformed shift clock", func(s *Staff) {
			s.WorkingHours = WorkingHours{"monday": {{Start: "nine", End: "05:00 pm"}}}
		}},
		{"inverted shift", func(s *Staff) {
			s.WorkingHours = WorkingHours{"monday": {{Start: "05:00 pm", End: "09:00 am"}}}
		}},
	}
	for _, tc := range cases {
		s := validStaff(clinic)
		tc.mutate(s)
		err := svc.Create(context.Background(), s)
		if !apperr.IsKind(err, apperr.KindValidation) {
			t.Errorf("%s: expected validation error, got %v", tc.name, err)
		}
	}
}

func TestParseShifts(t *testing.T) {
	got, err := ParseShifts([]Shift{
		{Start: "09:00 am", End: "12:00 pm"},
		{Start: "01:00 pm", End: "05:30 pm"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := [][2]int{{540, 720}, {780, 1050}}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestShiftsOn_HolidayAndDayOff(t *testing.T) {
	repo := newMockRepo()
	holidays := &mockHolidays{}
	svc := NewService(repo, holidays)
	clinic := uuid.New()

	s := validStaff(clinic)
	if err := svc.Create(context.Background(), s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	tuesday := monday.AddDate(0, 0, 1)

	shifts, err := svc.ShiftsOn(context.Background(), s, monday)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(shifts) != 1 || shifts[0] != [2]int{540, 1020} {
		t.Errorf("monday shifts = %v", shifts)
	}

	// Tuesday is absent from working hours.
	shifts, err = svc.ShiftsOn(context.Background(), s, tuesday)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(shifts) != 0 {
		t.Errorf("expected no shifts on a day off, got %v", shifts)
	}

	// A holiday blanks out a working day.
	if err := svc.AddHoliday(context.Background(), &Holiday{
		ClinicID: clinic, StaffID: s.ID, Date: monday,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	shifts, err = svc.ShiftsOn(context.Background(), s, monday)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(shifts) != 0 {
		t.Errorf("expected no shifts on a holiday, got %v", shifts)
	}
}

func TestAddHoliday_UnknownStaff(t *testing.T) {
	svc := NewService(newMockRepo(), &mockHolidays{})
	err := svc.AddHoliday(context.Background(), &Holiday{
		ClinicID: uuid.New(), StaffID: uuid.New(), Date: time.Now(),
	})
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestWeekdayKey(t *testing.T) {
	if WeekdayKey(time.Monday) != "monday" {
		t.Errorf("got %q", WeekdayKey(time.Monday))
	}
	if WeekdayKey(time.Sunday) != "sunday" {
		t.Errorf("got %q", WeekdayKey(time.Sunday))
	}
}

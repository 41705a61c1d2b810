package reminder

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicore/clinic-api/internal/domain/appointment"
	"github.com/clinicore/clinic-api/internal/domain/clinic"
	"github.com/clinicore/clinic-api/internal/domain/patient"
	"github.com/clinicore/clinic-api/internal/platform/notification"
	"github.com/clinicore/clinic-api/pkg/apperr"
	"github.com/clinicore/clinic-api/pkg/pagination"
)

type stubSchedules struct {
	active  []*Schedule
	created []*Schedule
}

func (s *stubSchedules) Create(_ context.Context, sch *Schedule) error {
	s.created = append(s.created, sch)
	return nil
}
func (s *stubSchedules) GetByID(context.Context, uuid.UUID, uuid.UUID) (*Schedule, error) {
	return nil, apperr.NotFound("reminder schedule not found")
}
func (s *stubSchedules) Update(context.Context, *Schedule) error { return nil }
func (s *stubSchedules) Delete(context.Context, uuid.UUID, uuid.UUID) error {
	return nil
}
func (s *stubSchedules) List(context.Context, uuid.UUID, url.Values) ([]*Schedule, pagination.Meta, error) {
	return nil, pagination.Meta{}, nil
}
func (s *stubSchedules) ListAllActive(context.Context) ([]*Schedule, error) {
	return s.active, nil
}

type memHistory struct {
	rows []*History
}

func (m *memHistory) Add(_ context.Context, h *History) error {
	m.rows = append(m.rows, h)
	return nil
}
func (m *memHistory) List(context.Context, uuid.UUID, url.Values) ([]*History, pagination.Meta, error) {
	return m.rows, pagination.Meta{Total: len(m.rows)}, nil
}

type stubAppointments struct {
	betweenCalls [][2]time.Time
	onDateCalls  []time.Time
	upcoming     []*appointment.Appointment
	today        []*appointment.Appointment
}

func (s *stubAppointments) ListStartingBetween(_ context.Context, _ uuid.UUID, from, to time.Time) ([]*appointment.Appointment, error) {
	s.betweenCalls = append(s.betweenCalls, [2]time.Time{from, to})
	return s.upcoming, nil
}
func (s *stubAppointments) ListOnDate(_ context.Context, _ uuid.UUID, date time.Time) ([]*appointment.Appointment, error) {
	s.onDateCalls = append(s.onDateCalls, date)
	return s.today, nil
}

type stubPatients struct {
	bySeq map[int]*patient.Patient
}

func (s *stubPatients) GetBySeq(_ context.Context, _ uuid.UUID, seqNo int) (*patient.Patient, error) {
	p, ok := s.bySeq[seqNo]
	if !ok {
		return nil, apperr.NotFound("patient not found")
	}
	return p, nil
}

type stubClinics struct {
	timezone string
}

func (s *stubClinics) Get(_ context.Context, id uuid.UUID) (*clinic.Clinic, error) {
	tz := s.timezone
	if tz == "" {
		tz = "UTC"
	}
	return &clinic.Clinic{ID: id, Name: "Test Clinic", Timezone: tz, Status: clinic.StatusActive}, nil
}

type recordingNotifier struct {
	sent []notification.Message
	fail bool
}

func (r *recordingNotifier) Deliver(_ context.Context, rcpt notification.Recipient, channels []notification.Channel, subject, body string) []notification.Outcome {
	var outcomes []notification.Outcome
	for _, ch := range channels {
		to, ok := rcpt.Address(ch)
		if !ok {
			continue
		}
		out := notification.Outcome{Channel: ch, To: to}
		if r.fail {
			out.Err = errors.New("smtp unreachable")
		} else {
			r.sent = append(r.sent, notification.Message{Channel: ch, To: to, Subject: subject, Body: body})
		}
		outcomes = append(outcomes, out)
	}
	return outcomes
}

func strPtr(s string) *string { return &s }

func testDispatcher(schedules *stubSchedules, appts *stubAppointments, notifier *recordingNotifier) (*Dispatcher, *memHistory) {
	hist := &memHistory{}
	patients := &stubPatients{bySeq: map[int]*patient.Patient{
		1: {
			SeqNo:          1,
			FirstName:      "Ann",
			LastName:       "Lee",
			Email:          strPtr("ann@example.com"),
			Phone:          strPtr("+15550100"),
			ContactMethods: []string{"email"},
		},
	}}
	d := NewDispatcher(schedules, hist, appts, patients, &stubClinics{}, notifier, zerolog.Nop(), 5*time.Minute)
	d.now = func() time.Time { return time.Date(2026, 9, 7, 8, 0, 0, 0, time.UTC) }
	return d, hist
}

func timedSchedule(clinicID uuid.UUID, methods ...string) *Schedule {
	return &Schedule{
		ID:           uuid.New(),
		ClinicID:     clinicID,
		Trigger:      TriggerTimed,
		PriorMinutes: 60,
		Methods:      methods,
		Subject:      "Reminder for {{patient}}",
		Body:         "See you on {{date}} at {{time}}.",
		Active:       true,
	}
}

func daySchedule(clinicID uuid.UUID) *Schedule {
	return &Schedule{
		ID: uuid.New(), ClinicID: clinicID, Trigger: TriggerDay,
		Methods: []string{"email"}, Subject: "Today", Body: "You have an appointment on {{date}}.",
		Active: true,
	}
}

func TestTick_TimedWindow(t *testing.T) {
	clinicID := uuid.New()
	schedules := &stubSchedules{active: []*Schedule{timedSchedule(clinicID, "email")}}
	appts := &stubAppointments{upcoming: []*appointment.Appointment{
		{ID: uuid.New(), ClinicID: clinicID, PatientSeq: 1, Date: time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC), StartMin: 540, EndMin: 570},
	}}
	notifier := &recordingNotifier{}
	d, hist := testDispatcher(schedules, appts, notifier)

	if err := d.Tick(context.Background()); err != nil {
		t.Fatalf("tick: %v", err)
	}

	// now=08:00, prior=60m, tick=5m: window is 08:57:30 to 09:02:30.
	if len(appts.betweenCalls) != 1 {
		t.Fatalf("expected one window query, got %d", len(appts.betweenCalls))
	}
	win := appts.betweenCalls[0]
	center := time.Date(2026, 9, 7, 9, 0, 0, 0, time.UTC)
	if !win[0].Equal(center.Add(-150*time.Second)) || !win[1].Equal(center.Add(150*time.Second)) {
		t.Errorf("window [%v, %v) not centered on %v", win[0], win[1], center)
	}

	if len(notifier.sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(notifier.sent))
	}
	msg := notifier.sent[0]
	if msg.To != "ann@example.com" || msg.Channel != notification.ChannelEmail {
		t.Errorf("sent to %s via %s", msg.To, msg.Channel)
	}
	if msg.Subject != "Reminder for Ann Lee" {
		t.Errorf("subject: %q", msg.Subject)
	}
	if msg.Body != "See you on Sep 07, 2026 at 9:00am." {
		t.Errorf("body: %q", msg.Body)
	}

	if len(hist.rows) != 1 || hist.rows[0].Status != HistorySent || hist.rows[0].Method != "email" {
		t.Fatalf("history: %+v", hist.rows)
	}
}

func TestTick_RespectsContactPreferences(t *testing.T) {
	clinicID := uuid.New()
	// Schedule wants email and sms, but the patient only consented to
	// email.
	schedules := &stubSchedules{active: []*Schedule{timedSchedule(clinicID, "email", "sms")}}
	appts := &stubAppointments{upcoming: []*appointment.Appointment{
		{ID: uuid.New(), ClinicID: clinicID, PatientSeq: 1, Date: time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC), StartMin: 540},
	}}
	notifier := &recordingNotifier{}
	d, hist := testDispatcher(schedules, appts, notifier)

	if err := d.Tick(context.Background()); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if len(notifier.sent) != 1 || notifier.sent[0].Channel != notification.ChannelEmail {
		t.Errorf("expected one email only, got %d sends", len(notifier.sent))
	}
	// The skipped channel leaves no history row either.
	if len(hist.rows) != 1 {
		t.Errorf("expected 1 history row, got %d", len(hist.rows))
	}
}

func TestTick_RecordsFailures(t *testing.T) {
	clinicID := uuid.New()
	schedules := &stubSchedules{active: []*Schedule{timedSchedule(clinicID, "email")}}
	appts := &stubAppointments{upcoming: []*appointment.Appointment{
		{ID: uuid.New(), ClinicID: clinicID, PatientSeq: 1, Date: time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC), StartMin: 540},
	}}
	notifier := &recordingNotifier{fail: true}
	d, hist := testDispatcher(schedules, appts, notifier)

	if err := d.Tick(context.Background()); err != nil {
		t.Fatalf("tick should swallow send failures: %v", err)
	}
	if len(hist.rows) != 1 || hist.rows[0].Status != HistoryFailed {
		t.Fatalf("history: %+v", hist.rows)
	}
	if hist.rows[0].Detail == nil {
		t.Error("failure detail not recorded")
	}
}

func TestTick_DayFiresOnlyOnFirstTick(t *testing.T) {
	clinicID := uuid.New()
	schedules := &stubSchedules{active: []*Schedule{daySchedule(clinicID)}}
	appts := &stubAppointments{today: []*appointment.Appointment{
		{ID: uuid.New(), ClinicID: clinicID, PatientSeq: 1, Date: time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC), StartMin: 540},
	}}
	notifier := &recordingNotifier{}
	d, _ := testDispatcher(schedules, appts, notifier)

	// 08:00 is well past the first tick of the day.
	if err := d.Tick(context.Background()); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if len(notifier.sent) != 0 {
		t.Fatalf("late tick should not fire, got %d sends", len(notifier.sent))
	}

	// 00:03 is within the first 5-minute tick.
	d.now = func() time.Time { return time.Date(2026, 9, 7, 0, 3, 0, 0, time.UTC) }
	if err := d.Tick(context.Background()); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("first tick of the day should fire, got %d sends", len(notifier.sent))
	}
}

func TestTick_DayUsesClinicTimezone(t *testing.T) {
	clinicID := uuid.New()
	schedules := &stubSchedules{active: []*Schedule{daySchedule(clinicID)}}
	appts := &stubAppointments{today: []*appointment.Appointment{
		{ID: uuid.New(), ClinicID: clinicID, PatientSeq: 1, Date: time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC), StartMin: 540},
	}}
	notifier := &recordingNotifier{}
	d, _ := testDispatcher(schedules, appts, notifier)
	d.clinics = &stubClinics{timezone: "America/New_York"}

	// 00:03 UTC is 20:03 the previous evening in New York: not a new
	// local day yet.
	d.now = func() time.Time { return time.Date(2026, 9, 7, 0, 3, 0, 0, time.UTC) }
	if err := d.Tick(context.Background()); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if len(notifier.sent) != 0 {
		t.Fatalf("UTC midnight should not fire for a New York clinic, got %d sends", len(notifier.sent))
	}

	// 04:03 UTC is 00:03 in New York (EDT): the first local tick.
	d.now = func() time.Time { return time.Date(2026, 9, 7, 4, 3, 0, 0, time.UTC) }
	if err := d.Tick(context.Background()); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("first local tick should fire, got %d sends", len(notifier.sent))
	}
	// The queried date is the clinic-local day.
	if len(appts.onDateCalls) != 1 || !appts.onDateCalls[0].Equal(time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("on-date calls: %v", appts.onDateCalls)
	}
}

func TestCreate_DefaultsLeadTime(t *testing.T) {
	repo := &stubSchedules{}
	svc := NewService(repo, &memHistory{}, 120)

	sch := &Schedule{Trigger: TriggerTimed, Methods: []string{"email"}, Subject: "s", Body: "b"}
	if err := svc.Create(context.Background(), sch); err != nil {
		t.Fatalf("create: %v", err)
	}
	if sch.PriorMinutes != 120 {
		t.Errorf("prior minutes: got %d, want 120", sch.PriorMinutes)
	}

	// An explicit lead time is never overridden.
	sch = &Schedule{Trigger: TriggerTimed, PriorMinutes: 30, Methods: []string{"email"}, Subject: "s", Body: "b"}
	if err := svc.Create(context.Background(), sch); err != nil {
		t.Fatalf("create: %v", err)
	}
	if sch.PriorMinutes != 30 {
		t.Errorf("prior minutes: got %d, want 30", sch.PriorMinutes)
	}
}

func TestScheduleValidation(t *testing.T) {
	svc := NewService(&stubSchedules{}, &memHistory{}, 0)
	cases := []struct {
		name string
		s    Schedule
	}{
		{"bad trigger", Schedule{Trigger: "WEEKLY", Methods: []string{"email"}, Subject: "s", Body: "b"}},
		{"timed without lead", Schedule{Trigger: TriggerTimed, Methods: []string{"email"}, Subject: "s", Body: "b"}},
		{"no methods", Schedule{Trigger: TriggerDay, Subject: "s", Body: "b"}},
		{"bad method", Schedule{Trigger: TriggerDay, Methods: []string{"fax"}, Subject: "s", Body: "b"}},
		{"no subject", Schedule{Trigger: TriggerDay, Methods: []string{"email"}, Body: "b"}},
		{"no body", Schedule{Trigger: TriggerDay, Methods: []string{"email"}, Subject: "s"}},
	}
	for _, tc := range cases {
		err := svc.Create(context.Background(), &tc.s)
		if !apperr.IsKind(err, apperr.KindValidation) {
			t.Errorf("%s: expected validation error, got %v", tc.name, err)
		}
	}
}

package reminder

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicore/clinic-api/internal/domain/appointment"
	"github.com/clinicore/clinic-api/internal/domain/clinic"
	"github.com/clinicore/clinic-api/internal/domain/patient"
	"github.com/clinicore/clinic-api/internal/platform/notification"
	"github.com/clinicore/clinic-api/pkg/timeutil"
)

// AppointmentSource is the slice of the appointment repository the
// dispatcher reads.
type AppointmentSource interface {
	ListStartingBetween(ctx context.Context, clinicID uuid.UUID, from, to time.Time) ([]*appointment.Appointment, error)
	ListOnDate(ctx context.Context, clinicID uuid.UUID, date time.Time) ([]*appointment.Appointment, error)
}

// PatientDirectory resolves patients by their clinic-local number.
type PatientDirectory interface {
	GetBySeq(ctx context.Context, clinicID uuid.UUID, seqNo int) (*patient.Patient, error)
}

// ClinicDirectory resolves a clinic, for its timezone.
type ClinicDirectory interface {
	Get(ctx context.Context, id uuid.UUID) (*clinic.Clinic, error)
}

// Notifier fans one rendered message out over the given channels.
// *notification.Manager satisfies it.
type Notifier interface {
	Deliver(ctx context.Context, rcpt notification.Recipient, channels []notification.Channel, subject, body string) []notification.Outcome
}

// Dispatcher scans active schedules on a fixed tick and sends the due
// reminders. One schedule's failure never blocks the others; every
// attempt lands in the history table.
type Dispatcher struct {
	schedules    ScheduleRepository
	history      HistoryRepository
	appointments AppointmentSource
	patients     PatientDirectory
	clinics      ClinicDirectory
	notifier     Notifier
	log          zerolog.Logger

	tick        time.Duration
	sendTimeout time.Duration
	now         func() time.Time
}

func NewDispatcher(
	schedules ScheduleRepository,
	history HistoryRepository,
	appointments AppointmentSource,
	patients PatientDirectory,
	clinics ClinicDirectory,
	notifier Notifier,
	log zerolog.Logger,
	tick time.Duration,
) *Dispatcher {
	return &Dispatcher{
		schedules:    schedules,
		history:      history,
		appointments: appointments,
		patients:     patients,
		clinics:      clinics,
		notifier:     notifier,
		log:          log,
		tick:         tick,
		sendTimeout:  10 * time.Second,
		now:          time.Now,
	}
}

// Run ticks until the context is cancelled. It never returns an error:
// a failed tick is logged and the next one proceeds.
func (d *Dispatcher) Run(ctx context.Context) {
	t := time.NewTicker(d.tick)
	defer t.Stop()

	d.log.Info().Dur("tick", d.tick).Msg("reminder dispatcher started")
	for {
		select {
		case <-ctx.Done():
			d.log.Info().Msg("reminder dispatcher stopped")
			return
		case <-t.C:
			if err := d.Tick(ctx); err != nil {
				d.log.Error().Err(err).Msg("reminder tick failed")
			}
		}
	}
}

// Tick runs one dispatch pass. Exposed for the remind CLI command.
func (d *Dispatcher) Tick(ctx context.Context) error {
	now := d.now().UTC()
	schedules, err := d.schedules.ListAllActive(ctx)
	if err != nil {
		return err
	}
	for _, sch := range schedules {
		if err := d.dispatchSchedule(ctx, sch, now); err != nil {
			d.log.Error().Err(err).
				Str("schedule", sch.ID.String()).
				Str("clinic", sch.ClinicID.String()).
				Msg("schedule dispatch failed")
		}
	}
	return nil
}

func (d *Dispatcher) dispatchSchedule(ctx context.Context, sch *Schedule, now time.Time) error {
	var appts []*appointment.Appointment
	var err error

	switch sch.Trigger {
	case TriggerTimed:
		// Appointments starting prior_minutes from now, widened by half
		// a tick on each side so a coarse tick cannot skip the target.
		center := now.Add(time.Duration(sch.PriorMinutes) * time.Minute)
		half := d.tick / 2
		appts, err = d.appointments.ListStartingBetween(ctx, sch.ClinicID, center.Add(-half), center.Add(half))
	case TriggerDay:
		// Fire on the first tick after midnight in the clinic's own
		// timezone, covering that clinic-local day.
		local := now.In(d.clinicLocation(ctx, sch.ClinicID))
		midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())
		if local.Sub(midnight) > d.tick {
			return nil
		}
		day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
		appts, err = d.appointments.ListOnDate(ctx, sch.ClinicID, day)
	default:
		d.log.Warn().Str("trigger", sch.Trigger).Msg("skipping schedule with unknown trigger")
		return nil
	}
	if err != nil {
		return err
	}

	for _, a := range appts {
		d.remind(ctx, sch, a)
	}
	return nil
}

// clinicLocation loads the clinic's timezone, falling back to UTC when
// the clinic cannot be read or carries an unknown zone name.
func (d *Dispatcher) clinicLocation(ctx context.Context, clinicID uuid.UUID) *time.Location {
	c, err := d.clinics.Get(ctx, clinicID)
	if err != nil {
		d.log.Error().Err(err).Str("clinic", clinicID.String()).Msg("clinic lookup failed, assuming UTC")
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		d.log.Warn().Str("clinic", clinicID.String()).Str("timezone", c.Timezone).Msg("unknown clinic timezone, assuming UTC")
		return time.UTC
	}
	return loc
}

func (d *Dispatcher) remind(ctx context.Context, sch *Schedule, a *appointment.Appointment) {
	p, err := d.patients.GetBySeq(ctx, sch.ClinicID, a.PatientSeq)
	if err != nil {
		d.log.Error().Err(err).Int("patient_seq", a.PatientSeq).Msg("reminder patient lookup failed")
		return
	}

	subject, body := render(sch, a, p)
	rcpt := recipient(p)
	channels := make([]notification.Channel, 0, len(sch.Methods))
	for _, method := range sch.Methods {
		channels = append(channels, notification.Channel(method))
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	outcomes := d.notifier.Deliver(sendCtx, rcpt, channels, subject, body)
	cancel()

	for _, out := range outcomes {
		h := &History{
			ClinicID:      sch.ClinicID,
			ScheduleID:    sch.ID,
			AppointmentID: a.ID,
			PatientSeq:    a.PatientSeq,
			Method:        string(out.Channel),
			Status:        HistorySent,
		}
		if out.Err != nil {
			detail := out.Err.Error()
			h.Status = HistoryFailed
			h.Detail = &detail
			d.log.Error().Err(out.Err).
				Str("method", string(out.Channel)).
				Str("appointment", a.ID.String()).
				Msg("reminder send failed")
		}
		if err := d.history.Add(ctx, h); err != nil {
			d.log.Error().Err(err).Msg("reminder history write failed")
		}
	}
}

// recipient maps a patient's addresses and contact consent onto the
// notifier's recipient model.
func recipient(p *patient.Patient) notification.Recipient {
	r := notification.Recipient{}
	if p.Email != nil {
		r.Email = *p.Email
	}
	if p.Phone != nil {
		r.Phone = *p.Phone
	}
	for _, ch := range []notification.Channel{notification.ChannelEmail, notification.ChannelSMS} {
		if p.CanReceive(string(ch)) {
			r.Consent = append(r.Consent, ch)
		}
	}
	return r
}

// render substitutes the schedule's placeholders with the appointment's
// details.
func render(sch *Schedule, a *appointment.Appointment, p *patient.Patient) (subject, body string) {
	data := map[string]string{
		"patient": p.FullName(),
		"date":    a.Date.Format("Jan 02, 2006"),
		"time":    timeutil.FormatClock(a.StartMin),
	}
	return notification.Fill(sch.Subject, data), notification.Fill(sch.Body, data)
}

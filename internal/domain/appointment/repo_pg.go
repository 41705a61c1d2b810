package appointment

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicore/clinic-api/internal/platform/query"
	"github.com/clinicore/clinic-api/pkg/apperr"
	"github.com/clinicore/clinic-api/pkg/pagination"
	"github.com/clinicore/clinic-api/pkg/timeutil"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

var appointmentCols = []string{
	"id", "clinic_id", "seq_no", "patient_id", "patient_seq", "specialist_id",
	"specialist_seq", "discipline_id", "service_id", "date", "start_min",
	"end_min", "status", "cancel_reason", "note", "documents",
	"created_at", "updated_at",
}

const appointmentSelect = `
	SELECT id, clinic_id, seq_no, patient_id, patient_seq, specialist_id,
		specialist_seq, discipline_id, service_id, date, start_min, end_min,
		status, cancel_reason, note, documents, created_at, updated_at
	FROM appointments`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.ClinicID, &a.SeqNo, &a.PatientID, &a.PatientSeq,
		&a.SpecialistID, &a.SpecialistSeq, &a.DisciplineID, &a.ServiceID,
		&a.Date, &a.StartMin, &a.EndMin, &a.Status, &a.CancelReason,
		&a.Note, &a.Documents, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("appointment not found")
	}
	return &a, err
}

func (r *repoPG) Book(ctx context.Context, a *Appointment) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// One clinic books at a time: the lock serializes the conflict
	// check, the seq_no allocation, and the insert against concurrent
	// bookings. The exclusion constraint is the backstop.
	if _, err := tx.Exec(ctx,
		`SELECT pg_advisory_xact_lock(hashtext($1::text || ':appointments'))`, a.ClinicID); err != nil {
		return err
	}

	var specialistBusy bool
	err = tx.QueryRow(ctx, `
		SELECT specialist_id = $2
		FROM appointments
		WHERE clinic_id = $1 AND date = $4 AND status <> 'cancelled'
			AND (specialist_id = $2 OR patient_id = $3)
			AND start_min < $6 AND end_min > $5
		LIMIT 1`,
		a.ClinicID, a.SpecialistID, a.PatientID, a.Date, a.StartMin, a.EndMin).
		Scan(&specialistBusy)
	switch {
	case err == nil:
		window := timeutil.FormatClock(a.StartMin) + " to " + timeutil.FormatClock(a.EndMin)
		if specialistBusy {
			return apperr.Conflict("specialist is already booked from %s", window)
		}
		return apperr.Conflict("patient already has an appointment from %s", window)
	case !errors.Is(err, pgx.ErrNoRows):
		return err
	}

	if err := tx.QueryRow(ctx,
		`SELECT COALESCE(MAX(seq_no), 0) + 1 FROM appointments WHERE clinic_id = $1`, a.ClinicID).
		Scan(&a.SeqNo); err != nil {
		return err
	}

	a.ID = uuid.New()
	a.Status = StatusScheduled
	if _, err := tx.Exec(ctx, `
		INSERT INTO appointments (id, clinic_id, seq_no, patient_id, patient_seq,
			specialist_id, specialist_seq, discipline_id, service_id, date,
			start_min, end_min, status, note, documents)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		a.ID, a.ClinicID, a.SeqNo, a.PatientID, a.PatientSeq,
		a.SpecialistID, a.SpecialistSeq, a.DisciplineID, a.ServiceID, a.Date,
		a.StartMin, a.EndMin, a.Status, a.Note, a.Documents); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23P01" {
			return apperr.Conflict("specialist is already booked from %s",
				timeutil.FormatClock(a.StartMin)+" to "+timeutil.FormatClock(a.EndMin))
		}
		return err
	}
	return tx.Commit(ctx)
}

func (r *repoPG) GetByID(ctx context.Context, clinicID, id uuid.UUID) (*Appointment, error) {
	return scanAppointment(r.pool.QueryRow(ctx,
		appointmentSelect+` WHERE clinic_id = $1 AND id = $2`, clinicID, id))
}

func (r *repoPG) SetStatus(ctx context.Context, a *Appointment) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE appointments SET status=$3, cancel_reason=$4, updated_at=NOW()
		WHERE clinic_id = $1 AND id = $2`,
		a.ClinicID, a.ID, a.Status, a.CancelReason)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("appointment not found")
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, clinicID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM appointments WHERE clinic_id = $1 AND id = $2`, clinicID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("appointment not found")
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, clinicID uuid.UUID, params url.Values) ([]*Appointment, pagination.Meta, error) {
	b := query.New(r.pool, "appointments", params).
		Scope(clinicID).
		Join("patients", "appointments.patient_id", "patients.id").
		Search("patients.first_name", "patients.last_name").
		Filter("status", "specialist_seq", "patient_seq").
		Range(query.DateRange("date", "minDate", "maxDate")).
		Sort("date", true, "date", "seq_no", "status", "created_at").
		Fields(appointmentCols...)

	meta, err := b.Meta(ctx)
	if err != nil {
		return nil, pagination.Meta{}, err
	}

	rows, err := b.Rows(ctx)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	defer rows.Close()

	items := make([]*Appointment, 0)
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, pagination.Meta{}, err
		}
		items = append(items, a)
	}
	return items, meta, rows.Err()
}

func (r *repoPG) BusyIntervals(ctx context.Context, clinicID, specialistID uuid.UUID, date time.Time) ([][2]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT start_min, end_min FROM appointments
		WHERE clinic_id = $1 AND specialist_id = $2 AND date = $3
			AND status <> 'cancelled'
		ORDER BY start_min`, clinicID, specialistID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var busy [][2]int
	for rows.Next() {
		var iv [2]int
		if err := rows.Scan(&iv[0], &iv[1]); err != nil {
			return nil, err
		}
		busy = append(busy, iv)
	}
	return busy, rows.Err()
}

func (r *repoPG) ListStartingBetween(ctx context.Context, clinicID uuid.UUID, from, to time.Time) ([]*Appointment, error) {
	return r.queryMany(ctx, appointmentSelect+`
		WHERE clinic_id = $1
			AND status IN ('scheduled','confirmed')
			AND date + make_interval(mins => start_min) >= $2
			AND date + make_interval(mins => start_min) < $3
		ORDER BY date, start_min`, clinicID, from, to)
}

func (r *repoPG) ListOnDate(ctx context.Context, clinicID uuid.UUID, date time.Time) ([]*Appointment, error) {
	return r.queryMany(ctx, appointmentSelect+`
		WHERE clinic_id = $1 AND date = $2 AND status <> 'cancelled'
		ORDER BY start_min`, clinicID, date)
}

func (r *repoPG) queryMany(ctx context.Context, sql string, args ...interface{}) ([]*Appointment, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

func (r *repoPG) VolumeSamples(ctx context.Context, clinicID uuid.UUID, from, to time.Time) ([]timeutil.Sample, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT date FROM appointments
		WHERE clinic_id = $1 AND date >= $2 AND date < $3
			AND status <> 'cancelled'`, clinicID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []timeutil.Sample
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		samples = append(samples, timeutil.Sample{Date: d, Weight: 1})
	}
	return samples, rows.Err()
}

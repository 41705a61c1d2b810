package reminder

import (
	"context"
	"errors"
	"net/url"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicore/clinic-api/internal/platform/query"
	"github.com/clinicore/clinic-api/pkg/apperr"
	"github.com/clinicore/clinic-api/pkg/pagination"
)

type scheduleRepoPG struct{ pool *pgxpool.Pool }

func NewScheduleRepoPG(pool *pgxpool.Pool) ScheduleRepository {
	return &scheduleRepoPG{pool: pool}
}

var scheduleCols = []string{
	"id", "clinic_id", "trigger", "prior_minutes", "methods", "subject",
	"body", "active", "created_at", "updated_at",
}

const scheduleSelect = `
	SELECT id, clinic_id, "trigger", prior_minutes, methods, subject, body,
		active, created_at, updated_at
	FROM reminder_schedules`

func scanSchedule(row pgx.Row) (*Schedule, error) {
	var s Schedule
	err := row.Scan(&s.ID, &s.ClinicID, &s.Trigger, &s.PriorMinutes,
		&s.Methods, &s.Subject, &s.Body, &s.Active, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("reminder schedule not found")
	}
	return &s, err
}

func (r *scheduleRepoPG) Create(ctx context.Context, s *Schedule) error {
	s.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO reminder_schedules (id, clinic_id, "trigger", prior_minutes,
			methods, subject, body, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		s.ID, s.ClinicID, s.Trigger, s.PriorMinutes, s.Methods,
		s.Subject, s.Body, s.Active)
	return err
}

func (r *scheduleRepoPG) GetByID(ctx context.Context, clinicID, id uuid.UUID) (*Schedule, error) {
	return scanSchedule(r.pool.QueryRow(ctx,
		scheduleSelect+` WHERE clinic_id = $1 AND id = $2`, clinicID, id))
}

func (r *scheduleRepoPG) Update(ctx context.Context, s *Schedule) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE reminder_schedules SET "trigger"=$3, prior_minutes=$4, methods=$5,
			subject=$6, body=$7, active=$8, updated_at=NOW()
		WHERE clinic_id = $1 AND id = $2`,
		s.ClinicID, s.ID, s.Trigger, s.PriorMinutes, s.Methods,
		s.Subject, s.Body, s.Active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("reminder schedule not found")
	}
	return nil
}

func (r *scheduleRepoPG) Delete(ctx context.Context, clinicID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM reminder_schedules WHERE clinic_id = $1 AND id = $2`, clinicID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("reminder schedule not found")
	}
	return nil
}

func (r *scheduleRepoPG) List(ctx context.Context, clinicID uuid.UUID, params url.Values) ([]*Schedule, pagination.Meta, error) {
	b := query.New(r.pool, "reminder_schedules", params).
		Scope(clinicID).
		Search("subject").
		Filter("trigger", "active").
		Sort("created_at", true, "created_at", "trigger").
		Fields(scheduleCols...)

	meta, err := b.Meta(ctx)
	if err != nil {
		return nil, pagination.Meta{}, err
	}

	rows, err := b.Rows(ctx)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	defer rows.Close()

	items := make([]*Schedule, 0)
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, pagination.Meta{}, err
		}
		items = append(items, s)
	}
	return items, meta, rows.Err()
}

func (r *scheduleRepoPG) ListAllActive(ctx context.Context) ([]*Schedule, error) {
	rows, err := r.pool.Query(ctx, scheduleSelect+` WHERE active ORDER BY clinic_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Schedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

type historyRepoPG struct{ pool *pgxpool.Pool }

func NewHistoryRepoPG(pool *pgxpool.Pool) HistoryRepository {
	return &historyRepoPG{pool: pool}
}

var historyCols = []string{
	"id", "clinic_id", "schedule_id", "appointment_id", "patient_seq",
	"method", "status", "detail", "created_at",
}

func (r *historyRepoPG) Add(ctx context.Context, h *History) error {
	h.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO reminder_history (id, clinic_id, schedule_id, appointment_id,
			patient_seq, method, status, detail)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		h.ID, h.ClinicID, h.ScheduleID, h.AppointmentID,
		h.PatientSeq, h.Method, h.Status, h.Detail)
	return err
}

func (r *historyRepoPG) List(ctx context.Context, clinicID uuid.UUID, params url.Values) ([]*History, pagination.Meta, error) {
	b := query.New(r.pool, "reminder_history", params).
		Scope(clinicID).
		Filter("status", "method", "patient_seq").
		Range(query.DateRange("created_at", "minDate", "maxDate")).
		Sort("created_at", true, "created_at", "status").
		Fields(historyCols...)

	meta, err := b.Meta(ctx)
	if err != nil {
		return nil, pagination.Meta{}, err
	}

	rows, err := b.Rows(ctx)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	defer rows.Close()

	items := make([]*History, 0)
	for rows.Next() {
		var h History
		if err := rows.Scan(&h.ID, &h.ClinicID, &h.ScheduleID, &h.AppointmentID,
			&h.PatientSeq, &h.Method, &h.Status, &h.Detail, &h.CreatedAt); err != nil {
			return nil, pagination.Meta{}, err
		}
		items = append(items, &h)
	}
	return items, meta, rows.Err()
}

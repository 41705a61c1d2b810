package staff

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicore/clinic-api/internal/platform/query"
	"github.com/clinicore/clinic-api/pkg/apperr"
	"github.com/clinicore/clinic-api/pkg/pagination"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

var staffCols = []string{
	"id", "clinic_id", "seq_no", "first_name", "last_name", "email", "phone",
	"role", "discipline_id", "working_hours", "active", "created_at", "updated_at",
}

func scanStaff(row pgx.Row) (*Staff, error) {
	var s Staff
	var hours []byte
	err := row.Scan(&s.ID, &s.ClinicID, &s.SeqNo, &s.FirstName, &s.LastName,
		&s.Email, &s.Phone, &s.Role, &s.DisciplineID, &hours, &s.Active,
		&s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("staff member not found")
	}
	if err != nil {
		return nil, err
	}
	if len(hours) > 0 {
		if err := json.Unmarshal(hours, &s.WorkingHours); err != nil {
			return nil, apperr.Format("decode working hours", err)
		}
	}
	return &s, nil
}

func (r *repoPG) Create(ctx context.Context, s *Staff) error {
	hours, err := json.Marshal(s.WorkingHours)
	if err != nil {
		return apperr.Format("encode working hours", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`SELECT pg_advisory_xact_lock(hashtext($1::text || ':staff'))`, s.ClinicID); err != nil {
		return err
	}
	if err := tx.QueryRow(ctx,
		`SELECT COALESCE(MAX(seq_no), 0) + 1 FROM staff WHERE clinic_id = $1`, s.ClinicID).
		Scan(&s.SeqNo); err != nil {
		return err
	}

	s.ID = uuid.New()
	if _, err := tx.Exec(ctx, `
		INSERT INTO staff (id, clinic_id, seq_no, first_name, last_name, email, phone,
			role, discipline_id, working_hours, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		s.ID, s.ClinicID, s.SeqNo, s.FirstName, s.LastName, s.Email, s.Phone,
		s.Role, s.DisciplineID, hours, s.Active); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *repoPG) GetByID(ctx context.Context, clinicID, id uuid.UUID) (*Staff, error) {
	return scanStaff(r.pool.QueryRow(ctx, `
		SELECT id, clinic_id, seq_no, first_name, last_name, email, phone,
			role, discipline_id, working_hours, active, created_at, updated_at
		FROM staff WHERE clinic_id = $1 AND id = $2`, clinicID, id))
}

func (r *repoPG) GetBySeq(ctx context.Context, clinicID uuid.UUID, seqNo int) (*Staff, error) {
	return scanStaff(r.pool.QueryRow(ctx, `
		SELECT id, clinic_id, seq_no, first_name, last_name, email, phone,
			role, discipline_id, working_hours, active, created_at, updated_at
		FROM staff WHERE clinic_id = $1 AND seq_no = $2`, clinicID, seqNo))
}

func (r *repoPG) Update(ctx context.Context, s *Staff) error {
	hours, err := json.Marshal(s.WorkingHours)
	if err != nil {
		return apperr.Format("encode working hours", err)
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE staff SET first_name=$3, last_name=$4, email=$5, phone=$6,
			role=$7, discipline_id=$8, working_hours=$9, active=$10, updated_at=NOW()
		WHERE clinic_id = $1 AND id = $2`,
		s.ClinicID, s.ID, s.FirstName, s.LastName, s.Email, s.Phone,
		s.Role, s.DisciplineID, hours, s.Active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("staff member not found")
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, clinicID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM staff WHERE clinic_id = $1 AND id = $2`, clinicID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("staff member not found")
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, clinicID uuid.UUID, params url.Values) ([]*Staff, pagination.Meta, error) {
	b := query.New(r.pool, "staff", params).
		Scope(clinicID).
		Search("first_name", "last_name", "email").
		Filter("role", "active", "discipline_id").
		Sort("created_at", true, "first_name", "last_name", "created_at", "seq_no").
		Fields(staffCols...)

	meta, err := b.Meta(ctx)
	if err != nil {
		return nil, pagination.Meta{}, err
	}

	rows, err := b.Rows(ctx)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	defer rows.Close()

	items := make([]*Staff, 0)
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return nil, pagination.Meta{}, err
		}
		items = append(items, s)
	}
	return items, meta, rows.Err()
}

// =========== Holiday Repository ===========

type holidayRepoPG struct{ pool *pgxpool.Pool }

func NewHolidayRepoPG(pool *pgxpool.Pool) HolidayRepository { return &holidayRepoPG{pool: pool} }

func (r *holidayRepoPG) Add(ctx context.Context, h *Holiday) error {
	h.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO staff_holidays (id, clinic_id, staff_id, date, note)
		VALUES ($1,$2,$3,$4,$5)`,
		h.ID, h.ClinicID, h.StaffID, h.Date, h.Note)
	return err
}

func (r *holidayRepoPG) Remove(ctx context.Context, clinicID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM staff_holidays WHERE clinic_id = $1 AND id = $2`, clinicID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("holiday not found")
	}
	return nil
}

func (r *holidayRepoPG) ListByStaff(ctx context.Context, clinicID, staffID uuid.UUID) ([]*Holiday, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, clinic_id, staff_id, date, note
		FROM staff_holidays WHERE clinic_id = $1 AND staff_id = $2
		ORDER BY date`, clinicID, staffID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*Holiday, 0)
	for rows.Next() {
		var h Holiday
		if err := rows.Scan(&h.ID, &h.ClinicID, &h.StaffID, &h.Date, &h.Note); err != nil {
			return nil, err
		}
		items = append(items, &h)
	}
	return items, rows.Err()
}

func (r *holidayRepoPG) Exists(ctx context.Context, clinicID, staffID uuid.UUID, date time.Time) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM staff_holidays
			WHERE clinic_id = $1 AND staff_id = $2 AND date = $3
		)`, clinicID, staffID, date).Scan(&exists)
	return exists, err
}

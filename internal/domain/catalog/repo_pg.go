package catalog

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

// =========== Discipline Repository ===========

type disciplineRepoPG struct{ pool *pgxpool.Pool }

func NewDisciplineRepoPG(pool *pgxpool.Pool) DisciplineRepository {
	return &disciplineRepoPG{pool: pool}
}

func scanDiscipline(row pgx.Row) (*Discipline, error) {
	var d Discipline
	err := row.Scan(&d.ID, &d.ClinicID, &d.Name, &d.Description, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("discipline not found")
	}
	return &d, err
}

func (r *disciplineRepoPG) Create(ctx context.Context, d *Discipline) error {
	d.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO disciplines (id, clinic_id, name, description)
		VALUES ($1,$2,$3,$4)`,
		d.ID, d.ClinicID, d.Name, d.Description)
	return err
}

func (r *disciplineRepoPG) GetByID(ctx context.Context, clinicID, id uuid.UUID) (*Discipline, error) {
	return scanDiscipline(r.pool.QueryRow(ctx, `
		SELECT id, clinic_id, name, description, created_at, updated_at
		FROM disciplines WHERE clinic_id = $1 AND id = $2`, clinicID, id))
}

func (r *disciplineRepoPG) Update(ctx context.Context, d *Discipline) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE disciplines SET name=$3, description=$4, updated_at=NOW()
		WHERE clinic_id = $1 AND id = $2`,
		d.ClinicID, d.ID, d.Name, d.Description)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("discipline not found")
	}
	return nil
}

func (r *disciplineRepoPG) Delete(ctx context.Context, clinicID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM disciplines WHERE clinic_id = $1 AND id = $2`, clinicID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("discipline not found")
	}
	return nil
}

func (r *disciplineRepoPG) List(ctx context.Context, clinicID uuid.UUID, params url.Values) ([]*Discipline, pagination.Meta, error) {
	b := query.New(r.pool, "disciplines", params).
		Scope(clinicID).
		Search("name", "description").
		Sort("name", false, "name", "created_at").
		Fields("id", "clinic_id", "name", "description", "created_at", "updated_at")

	meta, err := b.Meta(ctx)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	rows, err := b.Rows(ctx)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	defer rows.Close()

	items := make([]*Discipline, 0)
	for rows.Next() {
		d, err := scanDiscipline(rows)
		if err != nil {
			return nil, pagination.Meta{}, err
		}
		items = append(items, d)
	}
	return items, meta, rows.Err()
}

// =========== Service Repository ===========

type serviceRepoPG struct{ pool *pgxpool.Pool }

func NewServiceRepoPG(pool *pgxpool.Pool) ServiceRepository {
	return &serviceRepoPG{pool: pool}
}

func scanService(row pgx.Row) (*Service, error) {
	var s Service
	err := row.Scan(&s.ID, &s.ClinicID, &s.DisciplineID, &s.Name, &s.DurationMin,
		&s.PriceCents, &s.Active, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("service not found")
	}
	return &s, err
}

func (r *serviceRepoPG) Create(ctx context.Context, s *Service) error {
	s.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO services (id, clinic_id, discipline_id, name, duration_min, price_cents, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		s.ID, s.ClinicID, s.DisciplineID, s.Name, s.DurationMin, s.PriceCents, s.Active)
	return err
}

func (r *serviceRepoPG) GetByID(ctx context.Context, clinicID, id uuid.UUID) (*Service, error) {
	return scanService(r.pool.QueryRow(ctx, `
		SELECT id, clinic_id, discipline_id, name, duration_min, price_cents, active, created_at, updated_at
		FROM services WHERE clinic_id = $1 AND id = $2`, clinicID, id))
}

func (r *serviceRepoPG) Update(ctx context.Context, s *Service) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE services SET discipline_id=$3, name=$4, duration_min=$5, price_cents=$6,
			active=$7, updated_at=NOW()
		WHERE clinic_id = $1 AND id = $2`,
		s.ClinicID, s.ID, s.DisciplineID, s.Name, s.DurationMin, s.PriceCents, s.Active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("service not found")
	}
	return nil
}

func (r *serviceRepoPG) Delete(ctx context.Context, clinicID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM services WHERE clinic_id = $1 AND id = $2`, clinicID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("service not found")
	}
	return nil
}

func (r *serviceRepoPG) List(ctx context.Context, clinicID uuid.UUID, params url.Values) ([]*Service, pagination.Meta, error) {
	b := query.New(r.pool, "services", params).
		Scope(clinicID).
		Search("name").
		Filter("discipline_id", "active").
		Sort("name", false, "name", "duration_min", "price_cents", "created_at").
		Fields("id", "clinic_id", "discipline_id", "name", "duration_min",
			"price_cents", "active", "created_at", "updated_at")

	meta, err := b.Meta(ctx)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	rows, err := b.Rows(ctx)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	defer rows.Close()

	items := make([]*Service, 0)
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, pagination.Meta{}, err
		}
		items = append(items, s)
	}
	return items, meta, rows.Err()
}

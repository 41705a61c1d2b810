package clinic

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

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

var clinicCols = []string{
	"id", "name", "email", "phone", "address", "timezone", "status",
	"created_at", "updated_at",
}

func scanClinic(row pgx.Row) (*Clinic, error) {
	var c Clinic
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address,
		&c.Timezone, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("clinic not found")
	}
	return &c, err
}

func (r *repoPG) Create(ctx context.Context, c *Clinic) error {
	c.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO clinics (id, name, email, phone, address, timezone, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		c.ID, c.Name, c.Email, c.Phone, c.Address, c.Timezone, c.Status)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Clinic, error) {
	return scanClinic(r.pool.QueryRow(ctx, `
		SELECT id, name, email, phone, address, timezone, status, created_at, updated_at
		FROM clinics WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, c *Clinic) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE clinics SET name=$2, email=$3, phone=$4, address=$5,
			timezone=$6, status=$7, updated_at=NOW()
		WHERE id = $1`,
		c.ID, c.Name, c.Email, c.Phone, c.Address, c.Timezone, c.Status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("clinic not found")
	}
	return nil
}

// Delete removes the clinic row; every owned row goes with it through
// the schema's ON DELETE CASCADE foreign keys.
func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM clinics WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("clinic not found")
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, params url.Values) ([]*Clinic, pagination.Meta, error) {
	// The clinics table is the tenant registry itself, so the listing
	// runs unscoped. The handler restricts it to platform admins.
	b := query.New(r.pool, "clinics", params).
		Unscoped().
		Search("name", "email").
		Filter("status").
		Range(query.DateRange("created_at", "minDate", "maxDate")).
		Sort("created_at", true, "name", "status", "created_at").
		Fields(clinicCols...)

	meta, err := b.Meta(ctx)
	if err != nil {
		return nil, pagination.Meta{}, err
	}

	rows, err := b.Rows(ctx)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	defer rows.Close()

	items := make([]*Clinic, 0)
	for rows.Next() {
		c, err := scanClinic(rows)
		if err != nil {
			return nil, pagination.Meta{}, err
		}
		items = append(items, c)
	}
	return items, meta, rows.Err()
}

package billing

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
	"github.com/clinicore/clinic-api/pkg/timeutil"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

var invoiceCols = []string{
	"id", "clinic_id", "seq_no", "patient_id", "patient_seq", "items",
	"tax_cents", "discount_cents", "subtotal_cents", "total_cents",
	"paid_cents", "status", "created_at", "updated_at",
}

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var v Invoice
	var items []byte
	err := row.Scan(&v.ID, &v.ClinicID, &v.SeqNo, &v.PatientID, &v.PatientSeq,
		&items, &v.TaxCents, &v.DiscountCents, &v.SubtotalCents, &v.TotalCents,
		&v.PaidCents, &v.Status, &v.CreatedAt, &v.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("invoice not found")
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &v.Items); err != nil {
		return nil, apperr.Format("decode invoice items", err)
	}
	v.DueCents = v.TotalCents - v.PaidCents
	return &v, nil
}

func (r *repoPG) Create(ctx context.Context, v *Invoice) error {
	items, err := json.Marshal(v.Items)
	if err != nil {
		return apperr.Format("encode invoice items", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`SELECT pg_advisory_xact_lock(hashtext($1::text || ':invoices'))`, v.ClinicID); err != nil {
		return err
	}
	if err := tx.QueryRow(ctx,
		`SELECT COALESCE(MAX(seq_no), 0) + 1 FROM invoices WHERE clinic_id = $1`, v.ClinicID).
		Scan(&v.SeqNo); err != nil {
		return err
	}

	v.ID = uuid.New()
	if _, err := tx.Exec(ctx, `
		INSERT INTO invoices (id, clinic_id, seq_no, patient_id, patient_seq, items,
			tax_cents, discount_cents, subtotal_cents, total_cents, paid_cents, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		v.ID, v.ClinicID, v.SeqNo, v.PatientID, v.PatientSeq, items,
		v.TaxCents, v.DiscountCents, v.SubtotalCents, v.TotalCents,
		v.PaidCents, v.Status); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *repoPG) GetByID(ctx context.Context, clinicID, id uuid.UUID) (*Invoice, error) {
	return scanInvoice(r.pool.QueryRow(ctx, `
		SELECT id, clinic_id, seq_no, patient_id, patient_seq, items,
			tax_cents, discount_cents, subtotal_cents, total_cents,
			paid_cents, status, created_at, updated_at
		FROM invoices WHERE clinic_id = $1 AND id = $2`, clinicID, id))
}

func (r *repoPG) Update(ctx context.Context, v *Invoice) error {
	items, err := json.Marshal(v.Items)
	if err != nil {
		return apperr.Format("encode invoice items", err)
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE invoices SET items=$3, tax_cents=$4, discount_cents=$5,
			subtotal_cents=$6, total_cents=$7, paid_cents=$8, status=$9,
			updated_at=NOW()
		WHERE clinic_id = $1 AND id = $2`,
		v.ClinicID, v.ID, items, v.TaxCents, v.DiscountCents,
		v.SubtotalCents, v.TotalCents, v.PaidCents, v.Status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("invoice not found")
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, clinicID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM invoices WHERE clinic_id = $1 AND id = $2`, clinicID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("invoice not found")
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, clinicID uuid.UUID, params url.Values) ([]*Invoice, pagination.Meta, error) {
	b := query.New(r.pool, "invoices", params).
		Scope(clinicID).
		Join("patients", "invoices.patient_id", "patients.id").
		Search("patients.first_name", "patients.last_name").
		Filter("status", "patient_seq").
		Range(query.DateRange("created_at", "minDate", "maxDate")).
		Sort("created_at", true, "created_at", "seq_no", "status", "total_cents").
		Fields(invoiceCols...)

	meta, err := b.Meta(ctx)
	if err != nil {
		return nil, pagination.Meta{}, err
	}

	rows, err := b.Rows(ctx)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	defer rows.Close()

	items := make([]*Invoice, 0)
	for rows.Next() {
		v, err := scanInvoice(rows)
		if err != nil {
			return nil, pagination.Meta{}, err
		}
		items = append(items, v)
	}
	return items, meta, rows.Err()
}

func (r *repoPG) RevenueSamples(ctx context.Context, clinicID uuid.UUID, from, to time.Time) ([]timeutil.Sample, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT created_at, total_cents FROM invoices
		WHERE clinic_id = $1 AND created_at >= $2 AND created_at < $3
			AND status IN ('issued','paid')`, clinicID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []timeutil.Sample
	for rows.Next() {
		var s timeutil.Sample
		if err := rows.Scan(&s.Date, &s.Weight); err != nil {
			return nil, err
		}
		samples = append(samples, s)
	}
	return samples, rows.Err()
}

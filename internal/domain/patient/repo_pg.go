package patient

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

var patientCols = []string{
	"id", "clinic_id", "seq_no", "first_name", "last_name", "email", "phone",
	"gender", "birth_date", "address", "notes", "contact_methods",
	"medical_history", "guardian_name", "guardian_phone", "documents",
	"created_at", "updated_at",
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.ClinicID, &p.SeqNo, &p.FirstName, &p.LastName,
		&p.Email, &p.Phone, &p.Gender, &p.BirthDate, &p.Address, &p.Notes,
		&p.ContactMethods, &p.MedicalHistory, &p.GuardianName, &p.GuardianPhone,
		&p.Documents, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("patient not found")
	}
	return &p, err
}

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Serialize numbering per clinic so seq_no stays gapless under
	// concurrent inserts. The unique index is the backstop.
	if _, err := tx.Exec(ctx,
		`SELECT pg_advisory_xact_lock(hashtext($1::text || ':patients'))`, p.ClinicID); err != nil {
		return err
	}
	if err := tx.QueryRow(ctx,
		`SELECT COALESCE(MAX(seq_no), 0) + 1 FROM patients WHERE clinic_id = $1`, p.ClinicID).
		Scan(&p.SeqNo); err != nil {
		return err
	}

	p.ID = uuid.New()
	if _, err := tx.Exec(ctx, `
		INSERT INTO patients (id, clinic_id, seq_no, first_name, last_name, email, phone,
			gender, birth_date, address, notes, contact_methods, medical_history,
			guardian_name, guardian_phone, documents)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		p.ID, p.ClinicID, p.SeqNo, p.FirstName, p.LastName, p.Email, p.Phone,
		p.Gender, p.BirthDate, p.Address, p.Notes, p.ContactMethods,
		p.MedicalHistory, p.GuardianName, p.GuardianPhone, p.Documents); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

const patientSelect = `
	SELECT id, clinic_id, seq_no, first_name, last_name, email, phone,
		gender, birth_date, address, notes, contact_methods, medical_history,
		guardian_name, guardian_phone, documents, created_at, updated_at
	FROM patients`

func (r *repoPG) GetByID(ctx context.Context, clinicID, id uuid.UUID) (*Patient, error) {
	return scanPatient(r.pool.QueryRow(ctx,
		patientSelect+` WHERE clinic_id = $1 AND id = $2`, clinicID, id))
}

func (r *repoPG) GetBySeq(ctx context.Context, clinicID uuid.UUID, seqNo int) (*Patient, error) {
	return scanPatient(r.pool.QueryRow(ctx,
		patientSelect+` WHERE clinic_id = $1 AND seq_no = $2`, clinicID, seqNo))
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE patients SET first_name=$3, last_name=$4, email=$5, phone=$6,
			gender=$7, birth_date=$8, address=$9, notes=$10, contact_methods=$11,
			medical_history=$12, guardian_name=$13, guardian_phone=$14,
			documents=$15, updated_at=NOW()
		WHERE clinic_id = $1 AND id = $2`,
		p.ClinicID, p.ID, p.FirstName, p.LastName, p.Email, p.Phone,
		p.Gender, p.BirthDate, p.Address, p.Notes, p.ContactMethods,
		p.MedicalHistory, p.GuardianName, p.GuardianPhone, p.Documents)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("patient not found")
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, clinicID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM patients WHERE clinic_id = $1 AND id = $2`, clinicID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("patient not found")
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, clinicID uuid.UUID, params url.Values) ([]*Patient, pagination.Meta, error) {
	b := query.New(r.pool, "patients", params).
		Scope(clinicID).
		Search("first_name", "last_name", "email", "phone").
		Filter("gender").
		Range(query.DateRange("created_at", "minDate", "maxDate")).
		Sort("created_at", true, "first_name", "last_name", "created_at", "seq_no").
		Fields(patientCols...)

	meta, err := b.Meta(ctx)
	if err != nil {
		return nil, pagination.Meta{}, err
	}

	rows, err := b.Rows(ctx)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	defer rows.Close()

	items := make([]*Patient, 0)
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, pagination.Meta{}, err
		}
		items = append(items, p)
	}
	return items, meta, rows.Err()
}

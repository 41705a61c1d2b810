package billing

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/clinic-api/internal/domain/patient"
	"github.com/clinicore/clinic-api/pkg/apperr"
	"github.com/clinicore/clinic-api/pkg/pagination"
	"github.com/clinicore/clinic-api/pkg/timeutil"
)

// PatientDirectory resolves patients by their clinic-local number.
type PatientDirectory interface {
	GetBySeq(ctx context.Context, clinicID uuid.UUID, seqNo int) (*patient.Patient, error)
}

type Service struct {
	repo     Repository
	patients PatientDirectory
	now      func() time.Time
}

func NewService(repo Repository, patients PatientDirectory) *Service {
	return &Service{repo: repo, patients: patients, now: time.Now}
}

// CreateRequest carries the caller-settable invoice fields. Totals are
// computed, never accepted.
type CreateRequest struct {
	PatientSeq    int           `json:"patient_id"`
	Items         []InvoiceItem `json:"items"`
	TaxCents      int64         `json:"tax_cents"`
	DiscountCents int64         `json:"discount_cents"`
}

func (s *Service) Create(ctx context.Context, clinicID uuid.UUID, req CreateRequest) (*Invoice, error) {
	if err := validateItems(req.Items); err != nil {
		return nil, err
	}
	if req.TaxCents < 0 || req.DiscountCents < 0 {
		return nil, apperr.Validation("tax and discount must not be negative")
	}
	p, err := s.patients.GetBySeq(ctx, clinicID, req.PatientSeq)
	if err != nil {
		return nil, err
	}

	v := &Invoice{
		ClinicID:      clinicID,
		PatientID:     p.ID,
		PatientSeq:    p.SeqNo,
		Items:         req.Items,
		TaxCents:      req.TaxCents,
		DiscountCents: req.DiscountCents,
		Status:        StatusDraft,
	}
	v.Recompute()
	if v.TotalCents < 0 {
		return nil, apperr.Validation("discount exceeds the invoice total")
	}
	if err := s.repo.Create(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Service) Get(ctx context.Context, clinicID, id uuid.UUID) (*Invoice, error) {
	return s.repo.GetByID(ctx, clinicID, id)
}

// Update replaces the line items and adjustments of a draft invoice.
// Issued and later invoices are immutable apart from payments.
func (s *Service) Update(ctx context.Context, clinicID, id uuid.UUID, req CreateRequest) (*Invoice, error) {
	if err := validateItems(req.Items); err != nil {
		return nil, err
	}
	v, err := s.repo.GetByID(ctx, clinicID, id)
	if err != nil {
		return nil, err
	}
	if v.Status != StatusDraft {
		return nil, apperr.Conflict("only draft invoices can be edited")
	}
	v.Items = req.Items
	v.TaxCents = req.TaxCents
	v.DiscountCents = req.DiscountCents
	v.Recompute()
	if v.TotalCents < 0 {
		return nil, apperr.Validation("discount exceeds the invoice total")
	}
	if err := s.repo.Update(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// Issue moves a draft invoice into the issued state.
func (s *Service) Issue(ctx context.Context, clinicID, id uuid.UUID) (*Invoice, error) {
	v, err := s.repo.GetByID(ctx, clinicID, id)
	if err != nil {
		return nil, err
	}
	if v.Status != StatusDraft {
		return nil, apperr.Conflict("invoice is %s, not draft", v.Status)
	}
	v.Status = StatusIssued
	if err := s.repo.Update(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// Void cancels a draft or issued invoice.
func (s *Service) Void(ctx context.Context, clinicID, id uuid.UUID) (*Invoice, error) {
	v, err := s.repo.GetByID(ctx, clinicID, id)
	if err != nil {
		return nil, err
	}
	if v.Status != StatusDraft && v.Status != StatusIssued {
		return nil, apperr.Conflict("invoice is %s and cannot be voided", v.Status)
	}
	v.Status = StatusVoid
	if err := s.repo.Update(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// Pay records a payment against an issued invoice. The invoice flips to
// paid once the due amount reaches zero.
func (s *Service) Pay(ctx context.Context, clinicID, id uuid.UUID, amountCents int64) (*Invoice, error) {
	if amountCents <= 0 {
		return nil, apperr.Validation("payment amount must be positive")
	}
	v, err := s.repo.GetByID(ctx, clinicID, id)
	if err != nil {
		return nil, err
	}
	if v.Status != StatusIssued {
		return nil, apperr.Conflict("invoice is %s, not issued", v.Status)
	}
	if amountCents > v.DueCents {
		return nil, apperr.Validation("payment of %d exceeds the %d due", amountCents, v.DueCents)
	}
	v.PaidCents += amountCents
	v.Recompute()
	if v.DueCents == 0 {
		v.Status = StatusPaid
	}
	if err := s.repo.Update(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Service) Delete(ctx context.Context, clinicID, id uuid.UUID) error {
	return s.repo.Delete(ctx, clinicID, id)
}

func (s *Service) List(ctx context.Context, clinicID uuid.UUID, params url.Values) ([]*Invoice, pagination.Meta, error) {
	return s.repo.List(ctx, clinicID, params)
}

// Overview buckets the current period's revenue.
func (s *Service) Overview(ctx context.Context, clinicID uuid.UUID, period string) ([]timeutil.Bucket, error) {
	p := timeutil.Period(period)
	from, to := timeutil.PeriodRange(p, s.now())
	samples, err := s.repo.RevenueSamples(ctx, clinicID, from, to)
	if err != nil {
		return nil, err
	}
	return timeutil.GroupByPeriod(samples, p), nil
}

func validateItems(items []InvoiceItem) error {
	if len(items) == 0 {
		return apperr.Validation("invoice needs at least one item")
	}
	for i, it := range items {
		if strings.TrimSpace(it.Description) == "" {
			return apperr.Validation("item %d: description is required", i)
		}
		if it.Quantity <= 0 {
			return apperr.Validation("item %d: quantity must be positive", i)
		}
		if it.UnitPriceCents < 0 {
			return apperr.Validation("item %d: unit price must not be negative", i)
		}
	}
	return nil
}

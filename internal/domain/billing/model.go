package billing

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusDraft  = "draft"
	StatusIssued = "issued"
	StatusPaid   = "paid"
	StatusVoid   = "void"
)

// InvoiceItem is one line on an invoice. Items are stored as a JSONB
// column; the service id is kept for reporting but not enforced as a
// foreign key.
type InvoiceItem struct {
	ServiceID      *uuid.UUID `json:"service_id,omitempty"`
	Description    string     `json:"description"`
	Quantity       int        `json:"quantity"`
	UnitPriceCents int64      `json:"unit_price_cents"`
}

// Invoice maps to the invoices table. The monetary totals are always
// recomputed from the items before persisting; DueCents is derived on
// read and never stored.
type Invoice struct {
	ID            uuid.UUID     `db:"id" json:"id"`
	ClinicID      uuid.UUID     `db:"clinic_id" json:"clinic_id"`
	SeqNo         int           `db:"seq_no" json:"seq_no"`
	PatientID     uuid.UUID     `db:"patient_id" json:"patient_id"`
	PatientSeq    int           `db:"patient_seq" json:"patient_seq"`
	Items         []InvoiceItem `db:"items" json:"items"`
	TaxCents      int64         `db:"tax_cents" json:"tax_cents"`
	DiscountCents int64         `db:"discount_cents" json:"discount_cents"`
	SubtotalCents int64         `db:"subtotal_cents" json:"subtotal_cents"`
	TotalCents    int64         `db:"total_cents" json:"total_cents"`
	PaidCents     int64         `db:"paid_cents" json:"paid_cents"`
	DueCents      int64         `db:"-" json:"due_cents"`
	Status        string        `db:"status" json:"status"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
}

// Recompute derives the totals from the line items. Caller-supplied
// subtotal, total, and due values are never trusted.
func (v *Invoice) Recompute() {
	v.SubtotalCents = 0
	for _, it := range v.Items {
		v.SubtotalCents += int64(it.Quantity) * it.UnitPriceCents
	}
	v.TotalCents = v.SubtotalCents + v.TaxCents - v.DiscountCents
	v.DueCents = v.TotalCents - v.PaidCents
}

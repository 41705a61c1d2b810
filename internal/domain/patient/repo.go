package patient

import (
	"context"
	"net/url"

	"github.com/google/uuid"

	"github.com/clinicore/clinic-api/pkg/pagination"
)

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, clinicID, id uuid.UUID) (*Patient, error)
	GetBySeq(ctx context.Context, clinicID uuid.UUID, seqNo int) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, clinicID, id uuid.UUID) error
	List(ctx context.Context, clinicID uuid.UUID, params url.Values) ([]*Patient, pagination.Meta, error)
}

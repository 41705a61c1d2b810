package billing

import (
	"context"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/clinic-api/pkg/pagination"
	"github.com/clinicore/clinic-api/pkg/timeutil"
)

type Repository interface {
	Create(ctx context.Context, v *Invoice) error
	GetByID(ctx context.Context, clinicID, id uuid.UUID) (*Invoice, error)
	Update(ctx context.Context, v *Invoice) error
	Delete(ctx context.Context, clinicID, id uuid.UUID) error
	List(ctx context.Context, clinicID uuid.UUID, params url.Values) ([]*Invoice, pagination.Meta, error)

	// RevenueSamples returns one sample per issued or paid invoice
	// created in [from, to), weighted by its total.
	RevenueSamples(ctx context.Context, clinicID uuid.UUID, from, to time.Time) ([]timeutil.Sample, error)
}

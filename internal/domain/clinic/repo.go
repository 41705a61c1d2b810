package clinic

import (
	"context"
	"net/url"

	"github.com/google/uuid"

	"github.com/clinicore/clinic-api/pkg/pagination"
)

type Repository interface {
	Create(ctx context.Context, c *Clinic) error
	GetByID(ctx context.Context, id uuid.UUID) (*Clinic, error)
	Update(ctx context.Context, c *Clinic) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params url.Values) ([]*Clinic, pagination.Meta, error)
}

package catalog

import (
	"context"
	"net/url"

	"github.com/google/uuid"

	"github.com/clinicore/clinic-api/pkg/pagination"
)

type DisciplineRepository interface {
	Create(ctx context.Context, d *Discipline) error
	GetByID(ctx context.Context, clinicID, id uuid.UUID) (*Discipline, error)
	Update(ctx context.Context, d *Discipline) error
	Delete(ctx context.Context, clinicID, id uuid.UUID) error
	List(ctx context.Context, clinicID uuid.UUID, params url.Values) ([]*Discipline, pagination.Meta, error)
}

type ServiceRepository interface {
	Create(ctx context.Context, s *Service) error
	GetByID(ctx context.Context, clinicID, id uuid.UUID) (*Service, error)
	Update(ctx context.Context, s *Service) error
	Delete(ctx context.Context, clinicID, id uuid.UUID) error
	List(ctx context.Context, clinicID uuid.UUID, params url.Values) ([]*Service, pagination.Meta, error)
}

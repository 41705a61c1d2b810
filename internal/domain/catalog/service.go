package catalog

import (
	"context"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/clinicore/clinic-api/pkg/apperr"
	"github.com/clinicore/clinic-api/pkg/pagination"
)

type Catalog struct {
	disciplines DisciplineRepository
	services    ServiceRepository
}

func NewCatalog(d DisciplineRepository, s ServiceRepository) *Catalog {
	return &Catalog{disciplines: d, services: s}
}

// -- Discipline --

func (c *Catalog) CreateDiscipline(ctx context.Context, d *Discipline) error {
	if strings.TrimSpace(d.Name) == "" {
		return apperr.Validation("name is required")
	}
	return c.disciplines.Create(ctx, d)
}

func (c *Catalog) GetDiscipline(ctx context.Context, clinicID, id uuid.UUID) (*Discipline, error) {
	return c.disciplines.GetByID(ctx, clinicID, id)
}

func (c *Catalog) UpdateDiscipline(ctx context.Context, d *Discipline) error {
	if strings.TrimSpace(d.Name) == "" {
		return apperr.Validation("name is required")
	}
	return c.disciplines.Update(ctx, d)
}

func (c *Catalog) DeleteDiscipline(ctx context.Context, clinicID, id uuid.UUID) error {
	return c.disciplines.Delete(ctx, clinicID, id)
}

func (c *Catalog) ListDisciplines(ctx context.Context, clinicID uuid.UUID, params url.Values) ([]*Discipline, pagination.Meta, error) {
	return c.disciplines.List(ctx, clinicID, params)
}

// -- Service --

func (c *Catalog) CreateService(ctx context.Context, s *Service) error {
	if err := validateService(s); err != nil {
		return err
	}
	// The discipline must exist in the same clinic.
	if _, err := c.disciplines.GetByID(ctx, s.ClinicID, s.DisciplineID); err != nil {
		return err
	}
	return c.services.Create(ctx, s)
}

func (c *Catalog) GetService(ctx context.Context, clinicID, id uuid.UUID) (*Service, error) {
	return c.services.GetByID(ctx, clinicID, id)
}

func (c *Catalog) UpdateService(ctx context.Context, s *Service) error {
	if err := validateService(s); err != nil {
		return err
	}
	return c.services.Update(ctx, s)
}

func (c *Catalog) DeleteService(ctx context.Context, clinicID, id uuid.UUID) error {
	return c.services.Delete(ctx, clinicID, id)
}

func (c *Catalog) ListServices(ctx context.Context, clinicID uuid.UUID, params url.Values) ([]*Service, pagination.Meta, error) {
	return c.services.List(ctx, clinicID, params)
}

func validateService(s *Service) error {
	if strings.TrimSpace(s.Name) == "" {
		return apperr.Validation("name is required")
	}
	if s.DisciplineID == uuid.Nil {
		return apperr.Validation("discipline_id is required")
	}
	if s.DurationMin <= 0 {
		return apperr.Validation("duration_min must be positive, got %d", s.DurationMin)
	}
	if s.PriceCents < 0 {
		return apperr.Validation("price_cents must not be negative")
	}
	return nil
}

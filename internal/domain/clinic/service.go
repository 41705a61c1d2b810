package clinic

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/clinic-api/pkg/apperr"
	"github.com/clinicore/clinic-api/pkg/pagination"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Register(ctx context.Context, c *Clinic) error {
	if err := validate(c); err != nil {
		return err
	}
	if c.Status == "" {
		c.Status = StatusActive
	}
	return s.repo.Create(ctx, c)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Clinic, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, c *Clinic) error {
	if c.ID == uuid.Nil {
		return apperr.Validation("clinic id is required")
	}
	if err := validate(c); err != nil {
		return err
	}
	return s.repo.Update(ctx, c)
}

// SetStatus flips a clinic between active and inactive without touching
// the rest of the record.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, status string) (*Clinic, error) {
	if status != StatusActive && status != StatusInactive {
		return nil, apperr.Validation("status must be active or inactive")
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Status = status
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, params url.Values) ([]*Clinic, pagination.Meta, error) {
	return s.repo.List(ctx, params)
}

func validate(c *Clinic) error {
	if strings.TrimSpace(c.Name) == "" {
		return apperr.Validation("name is required")
	}
	if c.Email != nil && *c.Email != "" && !strings.Contains(*c.Email, "@") {
		return apperr.Validation("email %q is not valid", *c.Email)
	}
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return apperr.Validation("unknown timezone %q", c.Timezone)
	}
	if c.Status != "" && c.Status != StatusActive && c.Status != StatusInactive {
		return apperr.Validation("status must be active or inactive")
	}
	return nil
}

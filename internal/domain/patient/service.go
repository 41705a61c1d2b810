package patient

import (
	"context"
	"net/url"
	"strings"

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

func (s *Service) Create(ctx context.Context, p *Patient) error {
	if err := validate(p); err != nil {
		return err
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, clinicID, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, clinicID, id)
}

func (s *Service) GetBySeq(ctx context.Context, clinicID uuid.UUID, seqNo int) (*Patient, error) {
	return s.repo.GetBySeq(ctx, clinicID, seqNo)
}

func (s *Service) Update(ctx context.Context, p *Patient) error {
	if p.ID == uuid.Nil {
		return apperr.Validation("patient id is required")
	}
	if err := validate(p); err != nil {
		return err
	}
	return s.repo.Update(ctx, p)
}

func (s *Service) Delete(ctx context.Context, clinicID, id uuid.UUID) error {
	return s.repo.Delete(ctx, clinicID, id)
}

func (s *Service) List(ctx context.Context, clinicID uuid.UUID, params url.Values) ([]*Patient, pagination.Meta, error) {
	return s.repo.List(ctx, clinicID, params)
}

func validate(p *Patient) error {
	if strings.TrimSpace(p.FirstName) == "" {
		return apperr.Validation("first_name is required")
	}
	if strings.TrimSpace(p.LastName) == "" {
		return apperr.Validation("last_name is required")
	}
	if p.Email != nil && *p.Email != "" && !strings.Contains(*p.Email, "@") {
		return apperr.Validation("email %q is not valid", *p.Email)
	}
	if p.Gender != nil {
		switch *p.Gender {
		case "male", "female", "other", "":
		default:
			return apperr.Validation("gender must be male, female, or other")
		}
	}
	for _, m := range p.ContactMethods {
		switch m {
		case "email", "sms", "phone":
		default:
			return apperr.Validation("unknown contact method %q", m)
		}
	}
	return nil
}

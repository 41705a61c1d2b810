package reminder

import (
	"context"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/clinicore/clinic-api/pkg/apperr"
	"github.com/clinicore/clinic-api/pkg/pagination"
)

type Service struct {
	schedules    ScheduleRepository
	history      HistoryRepository
	defaultPrior int
}

// NewService builds the schedule service. defaultPrior is the lead time
// in minutes applied to TIMED schedules created without one.
func NewService(schedules ScheduleRepository, history HistoryRepository, defaultPrior int) *Service {
	return &Service{schedules: schedules, history: history, defaultPrior: defaultPrior}
}

func (s *Service) Create(ctx context.Context, sch *Schedule) error {
	if sch.Trigger == TriggerTimed && sch.PriorMinutes == 0 {
		sch.PriorMinutes = s.defaultPrior
	}
	if err := validate(sch); err != nil {
		return err
	}
	return s.schedules.Create(ctx, sch)
}

func (s *Service) Get(ctx context.Context, clinicID, id uuid.UUID) (*Schedule, error) {
	return s.schedules.GetByID(ctx, clinicID, id)
}

func (s *Service) Update(ctx context.Context, sch *Schedule) error {
	if sch.ID == uuid.Nil {
		return apperr.Validation("schedule id is required")
	}
	if err := validate(sch); err != nil {
		return err
	}
	return s.schedules.Update(ctx, sch)
}

func (s *Service) Delete(ctx context.Context, clinicID, id uuid.UUID) error {
	return s.schedules.Delete(ctx, clinicID, id)
}

func (s *Service) List(ctx context.Context, clinicID uuid.UUID, params url.Values) ([]*Schedule, pagination.Meta, error) {
	return s.schedules.List(ctx, clinicID, params)
}

func (s *Service) ListHistory(ctx context.Context, clinicID uuid.UUID, params url.Values) ([]*History, pagination.Meta, error) {
	return s.history.List(ctx, clinicID, params)
}

func validate(sch *Schedule) error {
	switch sch.Trigger {
	case TriggerTimed:
		if sch.PriorMinutes <= 0 {
			return apperr.Validation("prior_minutes must be positive for TIMED schedules")
		}
	case TriggerDay:
	default:
		return apperr.Validation("trigger must be TIMED or DAY")
	}
	if len(sch.Methods) == 0 {
		return apperr.Validation("at least one method is required")
	}
	for _, m := range sch.Methods {
		if m != MethodEmail && m != MethodSMS {
			return apperr.Validation("unknown method %q", m)
		}
	}
	if strings.TrimSpace(sch.Subject) == "" {
		return apperr.Validation("subject is required")
	}
	if strings.TrimSpace(sch.Body) == "" {
		return apperr.Validation("body is required")
	}
	return nil
}

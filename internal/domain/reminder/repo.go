package reminder

import (
	"context"
	"net/url"

	"github.com/google/uuid"

	"github.com/clinicore/clinic-api/pkg/pagination"
)

type ScheduleRepository interface {
	Create(ctx context.Context, s *Schedule) error
	GetByID(ctx context.Context, clinicID, id uuid.UUID) (*Schedule, error)
	Update(ctx context.Context, s *Schedule) error
	Delete(ctx context.Context, clinicID, id uuid.UUID) error
	List(ctx context.Context, clinicID uuid.UUID, params url.Values) ([]*Schedule, pagination.Meta, error)

	// ListAllActive returns every active schedule across all clinics,
	// for the dispatcher's tick.
	ListAllActive(ctx context.Context) ([]*Schedule, error)
}

type HistoryRepository interface {
	Add(ctx context.Context, h *History) error
	List(ctx context.Context, clinicID uuid.UUID, params url.Values) ([]*History, pagination.Meta, error)
}

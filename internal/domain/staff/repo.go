package staff

import (
	"context"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/clinic-api/pkg/pagination"
)

type Repository interface {
	Create(ctx context.Context, s *Staff) error
	GetByID(ctx context.Context, clinicID, id uuid.UUID) (*Staff, error)
	GetBySeq(ctx context.Context, clinicID uuid.UUID, seqNo int) (*Staff, error)
	Update(ctx context.Context, s *Staff) error
	Delete(ctx context.Context, clinicID, id uuid.UUID) error
	List(ctx context.Context, clinicID uuid.UUID, params url.Values) ([]*Staff, pagination.Meta, error)
}

type HolidayRepository interface {
	Add(ctx context.Context, h *Holiday) error
	Remove(ctx context.Context, clinicID, id uuid.UUID) error
	ListByStaff(ctx context.Context, clinicID, staffID uuid.UUID) ([]*Holiday, error)
	Exists(ctx context.Context, clinicID, staffID uuid.UUID, date time.Time) (bool, error)
}

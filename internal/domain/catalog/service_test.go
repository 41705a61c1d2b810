package catalog

import (
	"context"
	"net/url"
	"testing"

	"github.com/google/uuid"

	"github.com/clinicore/clinic-api/pkg/apperr"
	"github.com/clinicore/clinic-api/pkg/pagination"
)

type mockDisciplineRepo struct {
	byID map[uuid.UUID]*Discipline
}

func newMockDisciplineRepo() *mockDisciplineRepo {
	return &mockDisciplineRepo{byID: make(map[uuid.UUID]*Discipline)}
}

func (m *mockDisciplineRepo) Create(_ context.Context, d *Discipline) error {
	d.ID = uuid.New()
	m.byID[d.ID] = d
	return nil
}

func (m *mockDisciplineRepo) GetByID(_ context.Context, clinicID, id uuid.UUID) (*Discipline, error) {
	d, ok := m.byID[id]
	if !ok || d.ClinicID != clinicID {
		return nil, apperr.NotFound("discipline not found")
	}
	return d, nil
}

func (m *mockDisciplineRepo) Update(_ context.Context, d *Discipline) error {
	if _, ok := m.byID[d.ID]; !ok {
		return apperr.NotFound("discipline not found")
	}
	m.byID[d.ID] = d
	return nil
}

func (m *mockDisciplineRepo) Delete(_ context.Context, clinicID, id uuid.UUID) error {
	d, ok := m.byID[id]
	if !ok || d.ClinicID != clinicID {
		return apperr.NotFound("discipline not found")
	}
	delete(m.byID, id)
	return nil
}

func (m *mockDisciplineRepo) List(_ context.Context, clinicID uuid.UUID, _ url.Values) ([]*Discipline, pagination.Meta, error) {
	var items []*Discipline
	for _, d := range m.byID {
		if d.ClinicID == clinicID {
			items = append(items, d)
		}
	}
	return items, pagination.Meta{Total: len(items)}, nil
}

type mockServiceRepo struct {
	byID map[uuid.UUID]*Service
}

func newMockServiceRepo() *mockServiceRepo {
	return &mockServiceRepo{byID: make(map[uuid.UUID]*Service)}
}

func (m *mockServiceRepo) Create(_ context.Context, s *Service) error {
	s.ID = uuid.New()
	m.byID[s.ID] = s
	return nil
}

func (m *mockServiceRepo) GetByID(_ context.Context, clinicID, id uuid.UUID) (*Service, error) {
	s, ok := m.byID[id]
	if !ok || s.ClinicID != clinicID {
		return nil, apperr.NotFound("service not found")
	}
	return s, nil
}

func (m *mockServiceRepo) Update(_ context.Context, s *Service) error {
	if _, ok := m.byID[s.ID]; !ok {
		return apperr.NotFound("service not found")
	}
	m.byID[s.ID] = s
	return nil
}

func (m *mockServiceRepo) Delete(_ context.Context, clinicID, id uuid.UUID) error {
	s, ok := m.byID[id]
	if !ok || s.ClinicID != clinicID {
		return apperr.NotFound("service not found")
	}
	delete(m.byID, id)
	return nil
}

func (m *mockServiceRepo) List(_ context.Context, clinicID uuid.UUID, _ url.Values) ([]*Service, pagination.Meta, error) {
	var items []*Service
	for _, s := range m.byID {
		if s.ClinicID == clinicID {
			items = append(items, s)
		}
	}
	return items, pagination.Meta{Total: len(items)}, nil
}

func newCatalog() (*Catalog, *mockDisciplineRepo, *mockServiceRepo) {
	d, s := newMockDisciplineRepo(), newMockServiceRepo()
	return NewCatalog(d, s), d, s
}

func TestCreateDiscipline_RequiresName(t *testing.T) {
	cat, _, _ := newCatalog()
	err := cat.CreateDiscipline(context.Background(), &Discipline{ClinicID: uuid.New(), Name: "  "})
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestCreateService_Validation(t *testing.T) {
	cat, _, _ := newCatalog()
	clinic := uuid.New()
	disc := &Discipline{ClinicID: clinic, Name: "Physiotherapy"}
	if err := cat.CreateDiscipline(context.Background(), disc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := []struct {
		name string
		s    Service
	}{
		{"missing name", Service{ClinicID: clinic, DisciplineID: disc.ID, DurationMin: 30}},
		{"missing discipline", Service{ClinicID: clinic, Name: "Massage", DurationMin: 30}},
		{"zero duration", Service{ClinicID: clinic, DisciplineID: disc.ID, Name: "Massage"}},
		{"negative duration", Service{ClinicID: clinic, DisciplineID: disc.ID, Name: "Massage", DurationMin: -15}},
		{"negative price", Service{ClinicID: clinic, DisciplineID: disc.ID, Name: "Massage", DurationMin: 30, PriceCents: -1}},
	}
	for _, tc := range cases {
		err := cat.CreateService(context.Background(), &tc.s)
		if !apperr.IsKind(err, apperr.KindValidation) {
			t.Errorf("%s: expected validation error, got %v", tc.name, err)
		}
	}
}

func TestCreateService_DisciplineMustExist(t *testing.T) {
	cat, _, _ := newCatalog()
	clinic := uuid.New()
	s := &Service{ClinicID: clinic, DisciplineID: uuid.New(), Name: "Massage", DurationMin: 30}
	err := cat.CreateService(context.Background(), s)
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestCreateService_DisciplineScopedToClinic(t *testing.T) {
	cat, _, _ := newCatalog()
	clinicA, clinicB := uuid.New(), uuid.New()

	disc := &Discipline{ClinicID: clinicA, Name: "Dermatology"}
	if err := cat.CreateDiscipline(context.Background(), disc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Another clinic cannot attach a service to clinic A's discipline.
	s := &Service{ClinicID: clinicB, DisciplineID: disc.ID, Name: "Consult", DurationMin: 20}
	err := cat.CreateService(context.Background(), s)
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("expected not found, got %v", err)
	}

	s.ClinicID = clinicA
	if err := cat.CreateService(context.Background(), s); err != nil {
		t.Errorf("owner clinic create failed: %v", err)
	}
}

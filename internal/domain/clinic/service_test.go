package clinic

import (
	"context"
	"net/url"
	"testing"

	"github.com/google/uuid"

	"github.com/clinicore/clinic-api/pkg/apperr"
	"github.com/clinicore/clinic-api/pkg/pagination"
)

type mockRepo struct {
	byID map[uuid.UUID]*Clinic
}

func newMockRepo() *mockRepo { return &mockRepo{byID: make(map[uuid.UUID]*Clinic)} }

func (m *mockRepo) Create(_ context.Context, c *Clinic) error {
	c.ID = uuid.New()
	m.byID[c.ID] = c
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Clinic, error) {
	c, ok := m.byID[id]
	if !ok {
		return nil, apperr.NotFound("clinic not found")
	}
	return c, nil
}

func (m *mockRepo) Update(_ context.Context, c *Clinic) error {
	if _, ok := m.byID[c.ID]; !ok {
		return apperr.NotFound("clinic not found")
	}
	m.byID[c.ID] = c
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.byID[id]; !ok {
		return apperr.NotFound("clinic not found")
	}
	delete(m.byID, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, _ url.Values) ([]*Clinic, pagination.Meta, error) {
	var items []*Clinic
	for _, c := range m.byID {
		items = append(items, c)
	}
	return items, pagination.Meta{Total: len(items)}, nil
}

func TestRegister_DefaultsStatusAndTimezone(t *testing.T) {
	svc := NewService(newMockRepo())
	c := &Clinic{Name: "Northside Physio"}
	if err := svc.Register(context.Background(), c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Status != StatusActive {
		t.Errorf("expected active default, got %q", c.Status)
	}
	if c.Timezone != "UTC" {
		t.Errorf("expected UTC default, got %q", c.Timezone)
	}
}

func TestRegister_Validation(t *testing.T) {
	svc := NewService(newMockRepo())
	bad := "no-at-sign"
	cases := []struct {
		name string
		c    Clinic
	}{
		{"missing name", Clinic{}},
		{"blank name", Clinic{Name: "  "}},
		{"bad email", Clinic{Name: "A", Email: &bad}},
		{"bad timezone", Clinic{Name: "A", Timezone: "Mars/Olympus"}},
		{"bad status", Clinic{Name: "A", Status: "paused"}},
	}
	for _, tc := range cases {
		err := svc.Register(context.Background(), &tc.c)
		if !apperr.IsKind(err, apperr.KindValidation) {
			t.Errorf("%s: expected validation error, got %v", tc.name, err)
		}
	}
}

func TestSetStatus(t *testing.T) {
	svc := NewService(newMockRepo())
	c := &Clinic{Name: "Northside Physio"}
	if err := svc.Register(context.Background(), c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := svc.SetStatus(context.Background(), c.ID, StatusInactive)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Active() {
		t.Error("clinic should be inactive")
	}

	if _, err := svc.SetStatus(context.Background(), c.ID, "paused"); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
	if _, err := svc.SetStatus(context.Background(), uuid.New(), StatusActive); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestDelete_Unknown(t *testing.T) {
	svc := NewService(newMockRepo())
	err := svc.Delete(context.Background(), uuid.New())
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

package valet

import (
	"context"
	"errors"
	"testing"

	"dealertasks.org/internal/auth"
)

type memStore struct {
	byID map[string]*Job
}

func (m *memStore) Create(_ context.Context, job *Job) error {
	m.byID[job.ID] = job
	return nil
}

func (m *memStore) Get(_ context.Context, id string) (*Job, error) {
	if j, ok := m.byID[id]; ok {
		cp := *j
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (m *memStore) List(_ context.Context, limit, offset int) ([]*Job, error) {
	var out []*Job
	for _, j := range m.byID {
		cp := *j
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memStore) Update(_ context.Context, job *Job) error {
	if _, ok := m.byID[job.ID]; !ok {
		return ErrNotFound
	}
	m.byID[job.ID] = job
	return nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	if _, ok := m.byID[id]; !ok {
		return ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func TestValetRoleGuard(t *testing.T) {
	svc := New(&memStore{byID: make(map[string]*Job)})

	valetCtx := auth.ContextWithIdentity(context.Background(), &auth.Identity{
		ID: 3, Email: "valet@example.com", Roles: []string{auth.RoleValet},
	})
	workshopCtx := auth.ContextWithIdentity(context.Background(), &auth.Identity{
		ID: 4, Email: "workshop@example.com", Roles: []string{auth.RoleWorkshop},
	})

	job, err := svc.Create(valetCtx, CreateInput{Comments: "airport pickup"})
	if err != nil {
		t.Fatalf("valet create: %v", err)
	}
	if job.UserID != 3 {
		t.Fatalf("user id = %d, want 3", job.UserID)
	}

	if _, err := svc.Get(workshopCtx, job.ID); !errors.Is(err, auth.ErrNotAuthorized) {
		t.Fatalf("workshop get: expected ErrNotAuthorized, got %v", err)
	}
	if err := svc.Delete(valetCtx, job.ID); err != nil {
		t.Fatalf("valet delete: %v", err)
	}
	if _, err := svc.Get(valetCtx, job.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

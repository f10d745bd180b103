package tasks

import (
	"context"
	"errors"
	"testing"

	"dealertasks.org/internal/auth"
)

type memStore struct {
	byID map[string]*Task
}

func newMemStore() *memStore {
	return &memStore{byID: make(map[string]*Task)}
}

func (m *memStore) Create(_ context.Context, task *Task) error {
	m.byID[task.ID] = task
	return nil
}

func (m *memStore) Get(_ context.Context, id string) (*Task, error) {
	if t, ok := m.byID[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (m *memStore) List(_ context.Context, limit, offset int) ([]*Task, error) {
	var out []*Task
	for _, t := range m.byID {
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memStore) Update(_ context.Context, task *Task) error {
	if _, ok := m.byID[task.ID]; !ok {
		return ErrNotFound
	}
	m.byID[task.ID] = task
	return nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	if _, ok := m.byID[id]; !ok {
		return ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func ctxWithRole(role string) context.Context {
	return auth.ContextWithIdentity(context.Background(), &auth.Identity{
		ID: 7, Email: role + "@example.com", Roles: []string{role},
	})
}

func TestCreateDefaults(t *testing.T) {
	svc := New(newMemStore())

	task, err := svc.Create(ctxWithRole(auth.RoleSales), CreateInput{Title: "Polish the Kodiaq"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if task.Status != StatusPending {
		t.Fatalf("status = %q, want pending", task.Status)
	}
	if task.Priority != PriorityMedium {
		t.Fatalf("priority = %q, want medium", task.Priority)
	}
	if task.CreatedBy != "sales@example.com" {
		t.Fatalf("created_by = %q", task.CreatedBy)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := New(newMemStore())

	if _, err := svc.Create(ctxWithRole(auth.RoleSales), CreateInput{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("empty title: expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.Create(ctxWithRole(auth.RoleSales), CreateInput{Title: "x", Priority: "urgent"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("bad priority: expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.Create(ctxWithRole(auth.RoleWorkshop), CreateInput{Title: "x"}); !errors.Is(err, auth.ErrNotAuthorized) {
		t.Fatalf("workshop create: expected ErrNotAuthorized, got %v", err)
	}
}

func TestUpdateStatusOpenToWorkers(t *testing.T) {
	svc := New(newMemStore())

	task, err := svc.Create(ctxWithRole(auth.RoleSales), CreateInput{Title: "Wash"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// A valet can move the status.
	got, err := svc.Update(ctxWithRole(auth.RoleValet), task.ID, UpdateInput{Status: StatusInProgress})
	if err != nil {
		t.Fatalf("valet status update: %v", err)
	}
	if got.Status != StatusInProgress {
		t.Fatalf("status = %q, want in_progress", got.Status)
	}

	// But not rewrite the title.
	if _, err := svc.Update(ctxWithRole(auth.RoleValet), task.ID, UpdateInput{Title: "Something else"}); !errors.Is(err, auth.ErrNotAuthorized) {
		t.Fatalf("valet meta edit: expected ErrNotAuthorized, got %v", err)
	}

	// Sales can.
	got, err = svc.Update(ctxWithRole(auth.RoleSales), task.ID, UpdateInput{Title: "Wash and wax"})
	if err != nil {
		t.Fatalf("sales meta edit: %v", err)
	}
	if got.Title != "Wash and wax" {
		t.Fatalf("title = %q", got.Title)
	}
}

func TestUpdateRejectsUnknownStatus(t *testing.T) {
	svc := New(newMemStore())

	task, err := svc.Create(ctxWithRole(auth.RoleSales), CreateInput{Title: "Wash"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Update(ctxWithRole(auth.RoleValet), task.ID, UpdateInput{Status: "done"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestDeleteGuard(t *testing.T) {
	svc := New(newMemStore())

	task, err := svc.Create(ctxWithRole(auth.RoleAdmin), CreateInput{Title: "Wash"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.Delete(ctxWithRole(auth.RoleValet), task.ID); !errors.Is(err, auth.ErrNotAuthorized) {
		t.Fatalf("valet delete: expected ErrNotAuthorized, got %v", err)
	}
	if err := svc.Delete(ctxWithRole(auth.RoleAdmin), task.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if _, err := svc.Get(ctxWithRole(auth.RoleAdmin), task.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

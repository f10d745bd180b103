// Package tasks manages dealership work items, optionally linked to a
// car and to a workshop or valet job.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dealertasks.org/internal/auth"
	"dealertasks.org/internal/ids"
)

var (
	ErrNotFound     = errors.New("tasks: not found")
	ErrInvalidInput = errors.New("tasks: invalid input")
)

const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

func validStatus(s string) bool {
	return s == StatusPending || s == StatusInProgress || s == StatusCompleted
}

func validPriority(p string) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	CreatedBy   string     `json:"created_by"`
	CarID       string     `json:"car_id,omitempty"`
	WorkshopID  string     `json:"workshop_id,omitempty"`
	ValetID     string     `json:"valet_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type Store interface {
	Create(ctx context.Context, task *Task) error
	Get(ctx context.Context, id string) (*Task, error)
	List(ctx context.Context, limit, offset int) ([]*Task, error)
	Update(ctx context.Context, task *Task) error
	Delete(ctx context.Context, id string) error
}

type Service struct {
	store Store
	now   func() time.Time
}

func New(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

type CreateInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	Deadline    *time.Time `json:"deadline"`
	CarID       string     `json:"car_id"`
	WorkshopID  string     `json:"workshop_id"`
	ValetID     string     `json:"valet_id"`
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Task, error) {
	if err := auth.RequireAnyRole(ctx, auth.RoleSales, auth.RoleAdmin); err != nil {
		return nil, err
	}
	actor, err := auth.RequireAuthenticated(ctx)
	if err != nil {
		return nil, err
	}
	if in.Title == "" {
		return nil, fmt.Errorf("%w: title required", ErrInvalidInput)
	}
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	if !validPriority(in.Priority) {
		return nil, fmt.Errorf("%w: priority %q", ErrInvalidInput, in.Priority)
	}
	now := s.now().UTC()
	task := &Task{
		ID:          ids.New(),
		Title:       in.Title,
		Description: in.Description,
		Status:      StatusPending,
		Priority:    in.Priority,
		Deadline:    in.Deadline,
		CreatedBy:   actor.Email,
		CarID:       in.CarID,
		WorkshopID:  in.WorkshopID,
		ValetID:     in.ValetID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Task, error) {
	if _, err := auth.RequireAuthenticated(ctx); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Task, error) {
	if _, err := auth.RequireAuthenticated(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.List(ctx, limit, offset)
}

type UpdateInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	Deadline    *time.Time `json:"deadline"`
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*Task, error) {
	// Status moves are open to every worker role; the rest of the
	// fields stay with sales and admin.
	editsMeta := in.Title != "" || in.Description != "" || in.Priority != "" || in.Deadline != nil
	if editsMeta {
		if err := auth.RequireAnyRole(ctx, auth.RoleSales, auth.RoleAdmin); err != nil {
			return nil, err
		}
	} else if _, err := auth.RequireAuthenticated(ctx); err != nil {
		return nil, err
	}
	task, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Title != "" {
		task.Title = in.Title
	}
	if in.Description != "" {
		task.Description = in.Description
	}
	if in.Status != "" {
		if !validStatus(in.Status) {
			return nil, fmt.Errorf("%w: status %q", ErrInvalidInput, in.Status)
		}
		task.Status = in.Status
	}
	if in.Priority != "" {
		if !validPriority(in.Priority) {
			return nil, fmt.Errorf("%w: priority %q", ErrInvalidInput, in.Priority)
		}
		task.Priority = in.Priority
	}
	if in.Deadline != nil {
		task.Deadline = in.Deadline
	}
	task.UpdatedAt = s.now().UTC()
	if err := s.store.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := auth.RequireAnyRole(ctx, auth.RoleSales, auth.RoleAdmin); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

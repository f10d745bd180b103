// Package valet manages vehicle movement and preparation jobs handled
// by valet staff.
package valet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dealertasks.org/internal/auth"
	"dealertasks.org/internal/ids"
)

var (
	ErrNotFound     = errors.New("valet: not found")
	ErrInvalidInput = errors.New("valet: invalid input")
)

const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

func validStatus(s string) bool {
	return s == StatusPending || s == StatusInProgress || s == StatusCompleted
}

type Job struct {
	ID        string    `json:"id"`
	Comments  string    `json:"comments,omitempty"`
	Status    string    `json:"status"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Store interface {
	Create(ctx context.Context, job *Job) error
	Get(ctx context.Context, id string) (*Job, error)
	List(ctx context.Context, limit, offset int) ([]*Job, error)
	Update(ctx context.Context, job *Job) error
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
	Comments string `json:"comments"`
	UserID   int64  `json:"user_id"`
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Job, error) {
	if err := auth.RequireAnyRole(ctx, auth.RoleValet, auth.RoleAdmin); err != nil {
		return nil, err
	}
	actor, err := auth.RequireAuthenticated(ctx)
	if err != nil {
		return nil, err
	}
	if in.UserID == 0 {
		in.UserID = actor.ID
	}
	now := s.now().UTC()
	job := &Job{
		ID:        ids.New(),
		Comments:  in.Comments,
		Status:    StatusPending,
		UserID:    in.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Create(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Job, error) {
	if err := auth.RequireAnyRole(ctx, auth.RoleValet, auth.RoleAdmin); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Job, error) {
	if err := auth.RequireAnyRole(ctx, auth.RoleValet, auth.RoleAdmin); err != nil {
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
	Comments string `json:"comments"`
	Status   string `json:"status"`
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*Job, error) {
	if err := auth.RequireAnyRole(ctx, auth.RoleValet, auth.RoleAdmin); err != nil {
		return nil, err
	}
	job, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Comments != "" {
		job.Comments = in.Comments
	}
	if in.Status != "" {
		if !validStatus(in.Status) {
			return nil, fmt.Errorf("%w: status %q", ErrInvalidInput, in.Status)
		}
		job.Status = in.Status
	}
	job.UpdatedAt = s.now().UTC()
	if err := s.store.Update(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := auth.RequireAnyRole(ctx, auth.RoleValet, auth.RoleAdmin); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

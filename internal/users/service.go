// Package users implements account self-service and administration on
// top of the auth store and authorization policy.
package users

import (
	"context"
	"fmt"
	"time"

	"dealertasks.org/internal/auth"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// Service exposes account operations. Authorization is enforced here,
// against the identity carried in the request context.
type Service struct {
	store auth.Store
	now   func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(store auth.Store, opts ...Option) *Service {
	s := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the identity for id. Callers may always read their own
// account; reading others requires the admin role.
func (s *Service) Get(ctx context.Context, id int64) (*auth.Identity, error) {
	actor, err := auth.RequireAuthenticated(ctx)
	if err != nil {
		return nil, err
	}
	if actor.ID != id {
		if err := auth.RequireRole(ctx, auth.RoleAdmin); err != nil {
			return nil, err
		}
	}
	return s.store.FindByID(ctx, id)
}

// Me returns the account of the calling identity.
func (s *Service) Me(ctx context.Context) (*auth.Identity, error) {
	actor, err := auth.RequireAuthenticated(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.FindByID(ctx, actor.ID)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*auth.Identity, error) {
	if err := auth.RequireRole(ctx, auth.RoleAdmin); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.List(ctx, limit, offset)
}

// UpdateInput carries a self-service profile update. Empty fields are
// left unchanged. Email and roles are absent on purpose: those may only
// move through the admin operations.
type UpdateInput struct {
	FirstName string
	LastName  string
	Password  string
}

// Update applies a self-service update to the caller's own account.
func (s *Service) Update(ctx context.Context, in UpdateInput) (*auth.Identity, error) {
	actor, err := auth.RequireAuthenticated(ctx)
	if err != nil {
		return nil, err
	}
	current, err := s.store.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if in.FirstName != "" {
		current.FirstName = in.FirstName
	}
	if in.LastName != "" {
		current.LastName = in.LastName
	}
	if in.Password != "" {
		if err := auth.ValidatePassword(in.Password); err != nil {
			return nil, err
		}
		hash, err := auth.HashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		current.PasswordHash = hash
	}
	current.LastModifiedBy = actor.Email
	if err := s.store.Update(ctx, current); err != nil {
		return nil, err
	}
	return s.store.FindByID(ctx, current.ID)
}

// AdminUpdateInput carries an administrative profile update for an
// arbitrary account. Email and Roles, when present, must match the
// stored values: identity drift through profile edits is rejected.
type AdminUpdateInput struct {
	FirstName string
	LastName  string
	Password  string
	Email     string
	Roles     []string
}

func (s *Service) AdminUpdate(ctx context.Context, id int64, in AdminUpdateInput) (*auth.Identity, error) {
	actor, err := auth.RequireAuthenticated(ctx)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireRole(ctx, auth.RoleAdmin); err != nil {
		return nil, err
	}
	current, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.ForbidEmailOrRoleDrift(current, in.Email, in.Roles); err != nil {
		return nil, err
	}
	if in.FirstName != "" {
		current.FirstName = in.FirstName
	}
	if in.LastName != "" {
		current.LastName = in.LastName
	}
	if in.Password != "" {
		if err := auth.ValidatePassword(in.Password); err != nil {
			return nil, err
		}
		hash, err := auth.HashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		current.PasswordHash = hash
	}
	current.LastModifiedBy = actor.Email
	if err := s.store.Update(ctx, current); err != nil {
		return nil, err
	}
	return s.store.FindByID(ctx, id)
}

// UpdateRoles replaces the role set of an account.
func (s *Service) UpdateRoles(ctx context.Context, id int64, roles []string) (*auth.Identity, error) {
	if err := auth.RequireRole(ctx, auth.RoleAdmin); err != nil {
		return nil, err
	}
	normalized := auth.NormalizeRoles(roles)
	if len(normalized) == 0 {
		return nil, fmt.Errorf("%w: at least one role required", auth.ErrInvalidInput)
	}
	for _, role := range normalized {
		if !auth.KnownRole(role) {
			return nil, fmt.Errorf("%w: unknown role %q", auth.ErrInvalidInput, role)
		}
	}
	if _, err := s.store.FindByID(ctx, id); err != nil {
		return nil, err
	}
	if err := s.store.UpdateRoles(ctx, id, normalized); err != nil {
		return nil, err
	}
	return s.store.FindByID(ctx, id)
}

// Enable re-activates a disabled account. Enabling an account that is
// already enabled is an error, so a stale admin console cannot mask a
// concurrent state change.
func (s *Service) Enable(ctx context.Context, id int64) (*auth.Identity, error) {
	actor, err := auth.RequireAuthenticated(ctx)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireRole(ctx, auth.RoleAdmin); err != nil {
		return nil, err
	}
	target, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.ForbidRedundantEnable(target); err != nil {
		return nil, err
	}
	if err := s.store.SetEnabled(ctx, id, true, actor.Email); err != nil {
		return nil, err
	}
	return s.store.FindByID(ctx, id)
}

// Disable deactivates an account. Admin accounts cannot be disabled,
// which also rules out admins disabling themselves.
func (s *Service) Disable(ctx context.Context, id int64) (*auth.Identity, error) {
	actor, err := auth.RequireAuthenticated(ctx)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireRole(ctx, auth.RoleAdmin); err != nil {
		return nil, err
	}
	target, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.ForbidSelfDisable(actor, target); err != nil {
		return nil, err
	}
	if err := auth.ForbidAdminDisable(target); err != nil {
		return nil, err
	}
	if err := s.store.SetEnabled(ctx, id, false, actor.Email); err != nil {
		return nil, err
	}
	return s.store.FindByID(ctx, id)
}

// DeletionReceipt confirms a completed account deletion.
type DeletionReceipt struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	DeletedAt time.Time `json:"deleted_at"`
}

// Delete removes an account. Accounts holding the admin role cannot be
// deleted; demote them first.
func (s *Service) Delete(ctx context.Context, id int64) (*DeletionReceipt, error) {
	if err := auth.RequireRole(ctx, auth.RoleAdmin); err != nil {
		return nil, err
	}
	target, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.ForbidAdminDeletion(target); err != nil {
		return nil, err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return nil, err
	}
	return &DeletionReceipt{
		ID:        target.ID,
		Email:     target.Email,
		Message:   fmt.Sprintf("user %s deleted", target.Email),
		DeletedAt: s.now().UTC(),
	}, nil
}

package auth

import (
	"context"
	"fmt"
)

// Policy predicates guarding identity-mutating operations. Each one is a
// pure function over its arguments; none performs I/O, and every guarded
// operation evaluates them fresh.

// RequireAuthenticated returns the identity attached to the context or
// ErrNotAuthenticated when the request is anonymous.
func RequireAuthenticated(ctx context.Context) (*Identity, error) {
	identity, ok := IdentityFromContext(ctx)
	if !ok {
		return nil, ErrNotAuthenticated
	}
	return identity, nil
}

// RequireRole fails with ErrNotAuthenticated for anonymous requests and
// ErrNotAuthorized when the caller lacks the role.
func RequireRole(ctx context.Context, role string) error {
	identity, err := RequireAuthenticated(ctx)
	if err != nil {
		return err
	}
	if !identity.HasRole(role) {
		return ErrNotAuthorized
	}
	return nil
}

// RequireAnyRole is RequireRole over a set: the caller needs at least one
// of the given roles.
func RequireAnyRole(ctx context.Context, roles ...string) error {
	identity, err := RequireAuthenticated(ctx)
	if err != nil {
		return err
	}
	for _, role := range roles {
		if identity.HasRole(role) {
			return nil
		}
	}
	return ErrNotAuthorized
}

// ForbidSelfDisable rejects an actor disabling their own account,
// regardless of role.
func ForbidSelfDisable(actor, target *Identity) error {
	if actor != nil && target != nil && actor.ID == target.ID {
		return fmt.Errorf("%w: disabling own account is not permitted", ErrOperationNotPermitted)
	}
	return nil
}

// ForbidAdminDisable rejects disabling any identity holding the admin
// role; demote the account first.
func ForbidAdminDisable(target *Identity) error {
	if target != nil && target.HasRole(RoleAdmin) {
		return fmt.Errorf("%w: disabling admin users is not permitted", ErrOperationNotPermitted)
	}
	return nil
}

// ForbidAdminDeletion rejects deletion of any identity holding the admin
// role, regardless of who the actor is.
func ForbidAdminDeletion(target *Identity) error {
	if target != nil && target.HasRole(RoleAdmin) {
		return fmt.Errorf("%w: deletion of admin users is not permitted", ErrOperationNotPermitted)
	}
	return nil
}

// ForbidEmailOrRoleDrift rejects a generic profile update that attempts to
// change the email or the role set; both only change through their
// dedicated, more heavily guarded operations. An empty proposedEmail or nil
// proposedRoles means "unchanged".
func ForbidEmailOrRoleDrift(current *Identity, proposedEmail string, proposedRoles []string) error {
	if current == nil {
		return fmt.Errorf("%w: no current identity", ErrOperationNotPermitted)
	}
	if proposedEmail != "" && proposedEmail != current.Email {
		return fmt.Errorf("%w: email changes are not permitted through profile update", ErrOperationNotPermitted)
	}
	if proposedRoles != nil && !sameRoleSet(current.Roles, proposedRoles) {
		return fmt.Errorf("%w: role changes are not permitted through profile update", ErrOperationNotPermitted)
	}
	return nil
}

// ForbidRedundantEnable rejects enabling an identity that is already
// enabled. Surfacing the caller mistake is preferred over a silent no-op.
func ForbidRedundantEnable(target *Identity) error {
	if target != nil && target.Enabled {
		return fmt.Errorf("%w: user is already enabled", ErrOperationNotPermitted)
	}
	return nil
}

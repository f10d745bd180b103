package auth

import (
	"context"
	"time"
)

// Store describes the credential persistence operations required by the
// auth subsystem. Every call reflects the latest committed state; no
// caching happens on this side of the boundary.
type Store interface {
	FindByID(ctx context.Context, id int64) (*Identity, error)
	FindByEmail(ctx context.Context, email string) (*Identity, error)
	FindByResetToken(ctx context.Context, token string) (*Identity, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	Create(ctx context.Context, identity *Identity) error
	Update(ctx context.Context, identity *Identity) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]*Identity, error)

	UpdateRoles(ctx context.Context, id int64, roles []string) error
	SetEnabled(ctx context.Context, id int64, enabled bool, modifiedBy string) error

	// SetResetToken persists the reset token and its expiry on the identity.
	SetResetToken(ctx context.Context, id int64, token string, expiresAt time.Time) error

	// ConsumeResetToken atomically replaces the password hash and clears both
	// reset fields for the identity holding token, provided the token has not
	// expired at now. It returns ErrInvalidToken when no row matches, which
	// covers both an unknown token and a token consumed by a concurrent
	// reset.
	ConsumeResetToken(ctx context.Context, token, passwordHash string, now time.Time) error
}

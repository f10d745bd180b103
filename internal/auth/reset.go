package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ResetWindow is the fixed validity window of a password-reset token.
const ResetWindow = 30 * time.Minute

// Notifier delivers the password-reset link to the account owner.
// Delivery failures surface to the caller but never roll back the
// already-persisted token.
type Notifier interface {
	SendPasswordResetEmail(ctx context.Context, toEmail, resetLink string) error
}

// ResetFlow drives the password-reset token lifecycle: issue a single-use,
// time-limited token; validate it; consume it exactly once on a successful
// password replacement.
type ResetFlow struct {
	store    Store
	notifier Notifier
	baseURL  string
	now      func() time.Time
}

// ResetOption configures a ResetFlow.
type ResetOption func(*ResetFlow)

// WithResetClock overrides the time source (useful for tests).
func WithResetClock(fn func() time.Time) ResetOption {
	return func(f *ResetFlow) {
		if fn != nil {
			f.now = fn
		}
	}
}

// NewResetFlow wires the flow to its store and notifier. baseURL is the
// frontend reset page; the token is appended as a query parameter.
func NewResetFlow(store Store, notifier Notifier, baseURL string, opts ...ResetOption) *ResetFlow {
	f := &ResetFlow{
		store:    store,
		notifier: notifier,
		baseURL:  baseURL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// RequestReset issues a fresh reset token for the account identified by
// email and dispatches the reset link. The token is persisted before
// dispatch, so a delivery failure (returned wrapped in ErrResetDispatch)
// leaves a usable token behind and the user may simply retry.
func (f *ResetFlow) RequestReset(ctx context.Context, email string) (string, error) {
	identity, err := f.store.FindByEmail(ctx, email)
	if err != nil {
		return "", ErrIdentityNotFound
	}

	token := uuid.NewString()
	expiresAt := f.now().UTC().Add(ResetWindow)
	if err := f.store.SetResetToken(ctx, identity.ID, token, expiresAt); err != nil {
		return "", err
	}

	link := f.baseURL + "?token=" + token
	if err := f.notifier.SendPasswordResetEmail(ctx, identity.Email, link); err != nil {
		return token, fmt.Errorf("%w: %v", ErrResetDispatch, err)
	}
	return token, nil
}

// ValidateToken checks a reset token without consuming it; used by the
// frontend to decide whether a reset link is still worth rendering.
func (f *ResetFlow) ValidateToken(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	identity, err := f.store.FindByResetToken(ctx, token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if f.now().After(identity.ResetTokenExpiry) {
		return nil, ErrTokenExpired
	}
	return identity, nil
}

// ResetPassword consumes the token and replaces the password. Verification,
// hashing, and the clear+persist of the reset fields are applied as one
// conditional update, so a token can never survive a failed password write
// and a concurrent consumption loses cleanly with ErrInvalidToken.
func (f *ResetFlow) ResetPassword(ctx context.Context, token, newPassword string) error {
	if _, err := f.ValidateToken(ctx, token); err != nil {
		return err
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}

	return f.store.ConsumeResetToken(ctx, token, hash, f.now().UTC())
}

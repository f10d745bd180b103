package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Authenticator exchanges verified credentials for token pairs and handles
// the stateless parts of the session lifecycle.
type Authenticator struct {
	store Store
	codec *TokenCodec
	now   func() time.Time
}

// NewAuthenticator wires the authenticator to its credential store and codec.
func NewAuthenticator(store Store, codec *TokenCodec) *Authenticator {
	return &Authenticator{store: store, codec: codec, now: time.Now}
}

// Codec exposes the token codec used by this authenticator.
func (a *Authenticator) Codec() *TokenCodec { return a.codec }

// Login verifies email/password against the credential store and mints an
// access+refresh pair. Every failure mode (unknown email, wrong password,
// disabled account) collapses into ErrInvalidCredentials so the response
// shape never reveals which check failed.
func (a *Authenticator) Login(ctx context.Context, email, password string) (TokenPair, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return TokenPair{}, ErrInvalidCredentials
	}

	identity, err := a.store.FindByEmail(ctx, email)
	if err != nil {
		return TokenPair{}, ErrInvalidCredentials
	}
	if err := VerifyPassword(identity.PasswordHash, password); err != nil {
		return TokenPair{}, ErrInvalidCredentials
	}
	if !identity.Enabled {
		return TokenPair{}, ErrInvalidCredentials
	}

	return a.mintPair(identity.Email)
}

// Refresh verifies a refresh token, resolves its subject, and mints a new
// pair. The previous refresh token is not invalidated server-side: there is
// no token store, a deliberate stateless trade-off.
func (a *Authenticator) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	subject, err := a.codec.Subject(refreshToken)
	if err != nil {
		return TokenPair{}, ErrInvalidToken
	}

	identity, err := a.store.FindByEmail(ctx, subject)
	if err != nil {
		return TokenPair{}, ErrIdentityNotFound
	}

	claims, err := a.codec.Verify(refreshToken)
	if err != nil || claims.Subject != identity.Email {
		return TokenPair{}, ErrInvalidToken
	}

	return a.mintPair(identity.Email)
}

// Logout returns the context stripped of any authenticated identity and
// bearer token. Outstanding tokens remain cryptographically valid until
// expiry; there is no server-side revocation list.
func (a *Authenticator) Logout(ctx context.Context) context.Context {
	return context.WithValue(
		context.WithValue(ctx, identityContextKey{}, (*Identity)(nil)),
		tokenContextKey{}, "",
	)
}

// RegisterInput holds the attributes of a new identity.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Roles     []string
}

// Register creates a new enabled identity. The email must be unused, the
// password at least MinPasswordLength characters, and every role one of the
// recognized role names.
func (a *Authenticator) Register(ctx context.Context, input RegisterInput) (*Identity, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: valid email is required", ErrInvalidInput)
	}

	exists, err := a.store.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: email already in use", ErrAlreadyExists)
	}

	if len(input.Password) < MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters long", ErrInvalidInput, MinPasswordLength)
	}

	roles := NormalizeRoles(input.Roles)
	if len(roles) == 0 {
		return nil, fmt.Errorf("%w: at least one role is required", ErrInvalidInput)
	}
	for _, role := range roles {
		if !KnownRole(role) {
			return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
		}
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	identity := &Identity{
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Email:        email,
		PasswordHash: hash,
		Enabled:      true,
		Roles:        roles,
	}
	if err := a.store.Create(ctx, identity); err != nil {
		return nil, err
	}
	return identity, nil
}

func (a *Authenticator) mintPair(subject string) (TokenPair, error) {
	access, accessExp, err := a.codec.MintAccess(subject)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, refreshExp, err := a.codec.MintRefresh(subject, map[string]any{})
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// ResolveBearer resolves a bearer token into a full identity: extract the
// subject, load the identity, then verify the token against it (signature,
// expiry, subject match). Used by the request middleware; callers decide
// what a failure means.
func (a *Authenticator) ResolveBearer(ctx context.Context, token string) (*Identity, error) {
	subject, err := a.codec.Subject(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	identity, err := a.store.FindByEmail(ctx, subject)
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			return nil, ErrIdentityNotFound
		}
		return nil, err
	}
	claims, err := a.codec.Verify(token)
	if err != nil || claims.Subject != identity.Email {
		return nil, ErrInvalidToken
	}
	return identity, nil
}

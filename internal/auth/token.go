package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenCodec mints and verifies compact signed session tokens. It knows
// nothing about identities beyond a subject string and an optional claim
// map; access and refresh tokens are the same container minted with
// different lifetimes.
//
// All methods are pure functions of (token, secret, current time); the
// codec is safe for concurrent use.
type TokenCodec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// Claims holds the verified content of a session token.
type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Extra     map[string]any
}

// CodecOption configures a TokenCodec.
type CodecOption func(*TokenCodec)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) CodecOption {
	return func(c *TokenCodec) {
		if fn != nil {
			c.now = fn
		}
	}
}

// NewTokenCodec validates the signing configuration eagerly: a blank secret
// or a non-positive lifetime is a startup failure, not a lazy one on first
// use.
func NewTokenCodec(secret string, accessTTL, refreshTTL time.Duration, opts ...CodecOption) (*TokenCodec, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("auth: signing secret is not configured")
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, errors.New("auth: token lifetime must be a positive duration")
	}
	c := &TokenCodec{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// AccessTTL returns the configured access token lifetime.
func (c *TokenCodec) AccessTTL() time.Duration { return c.accessTTL }

// RefreshTTL returns the configured refresh token lifetime.
func (c *TokenCodec) RefreshTTL() time.Duration { return c.refreshTTL }

// Mint signs a token for subject with issued-at = now and expiry = now+ttl.
// Extra claims are embedded verbatim; the registered sub/iat/exp claims
// cannot be overridden through the map.
func (c *TokenCodec) Mint(subject string, extra map[string]any, ttl time.Duration) (string, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return "", errors.New("auth: subject is required")
	}
	if ttl <= 0 {
		return "", errors.New("auth: ttl must be greater than zero")
	}

	now := c.now().UTC()
	claims := jwt.MapClaims{}
	for k, v := range extra {
		switch k {
		case "sub", "iat", "exp":
			continue
		}
		claims[k] = v
	}
	claims["sub"] = subject
	claims["iat"] = jwt.NewNumericDate(now)
	claims["exp"] = jwt.NewNumericDate(now.Add(ttl))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// MintAccess mints a short-lived access token for subject.
func (c *TokenCodec) MintAccess(subject string) (string, time.Time, error) {
	expiresAt := c.now().UTC().Add(c.accessTTL)
	token, err := c.Mint(subject, nil, c.accessTTL)
	return token, expiresAt, err
}

// MintRefresh mints a long-lived refresh token for subject carrying the
// given claim map.
func (c *TokenCodec) MintRefresh(subject string, extra map[string]any) (string, time.Time, error) {
	expiresAt := c.now().UTC().Add(c.refreshTTL)
	token, err := c.Mint(subject, extra, c.refreshTTL)
	return token, expiresAt, err
}

// Verify checks signature and structure and returns the embedded claims.
// Malformed, truncated, or mis-signed input yields ErrInvalidToken; a valid
// signature past its expiry yields ErrTokenExpired. Partial claims are
// never returned.
func (c *TokenCodec) Verify(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}

	parsed, err := jwt.Parse(token, c.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claimsFromMap(mapClaims)
}

// Subject extracts the subject claim from a verified token.
func (c *TokenCodec) Subject(token string) (string, error) {
	claims, err := c.Verify(token)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// IsExpired reports whether the embedded expiry is in the past. A token
// that fails signature or structural verification is reported as expired;
// callers do not distinguish the two at this layer.
func (c *TokenCodec) IsExpired(token string) bool {
	parsed, err := jwt.Parse(token, c.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil || !parsed.Valid {
		return true
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return c.now().After(exp.Time)
}

func (c *TokenCodec) keyFunc(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, ErrInvalidToken
	}
	return c.secret, nil
}

func claimsFromMap(m jwt.MapClaims) (*Claims, error) {
	sub, err := m.GetSubject()
	if err != nil || strings.TrimSpace(sub) == "" {
		return nil, ErrInvalidToken
	}
	exp, err := m.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, ErrInvalidToken
	}
	iat, err := m.GetIssuedAt()
	if err != nil || iat == nil {
		return nil, ErrInvalidToken
	}

	claims := &Claims{
		Subject:   sub,
		IssuedAt:  iat.Time,
		ExpiresAt: exp.Time,
	}
	for k, v := range m {
		switch k {
		case "sub", "iat", "exp":
			continue
		}
		if claims.Extra == nil {
			claims.Extra = make(map[string]any)
		}
		claims.Extra[k] = v
	}
	return claims, nil
}

package auth

import (
	"context"
	"sync"
	"time"
)

// memStore is an in-memory Store for tests.
type memStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*Identity
}

func newMemStore() *memStore {
	return &memStore{nextID: 1, users: make(map[int64]*Identity)}
}

func (m *memStore) clone(i *Identity) *Identity {
	cp := *i
	cp.Roles = append([]string(nil), i.Roles...)
	return &cp
}

func (m *memStore) FindByID(_ context.Context, id int64) (*Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		return m.clone(u), nil
	}
	return nil, ErrIdentityNotFound
}

func (m *memStore) FindByEmail(_ context.Context, email string) (*Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return m.clone(u), nil
		}
	}
	return nil, ErrIdentityNotFound
}

func (m *memStore) FindByResetToken(_ context.Context, token string) (*Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if token == "" {
		return nil, ErrIdentityNotFound
	}
	for _, u := range m.users {
		if u.ResetToken == token {
			return m.clone(u), nil
		}
	}
	return nil, ErrIdentityNotFound
}

func (m *memStore) ExistsByEmail(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) Create(_ context.Context, identity *Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	identity.ID = m.nextID
	m.nextID++
	identity.CreatedAt = time.Now().UTC()
	identity.UpdatedAt = identity.CreatedAt
	m.users[identity.ID] = m.clone(identity)
	return nil
}

func (m *memStore) Update(_ context.Context, identity *Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.users[identity.ID]
	if !ok {
		return ErrIdentityNotFound
	}
	stored.FirstName = identity.FirstName
	stored.LastName = identity.LastName
	stored.PasswordHash = identity.PasswordHash
	stored.LastModifiedBy = identity.LastModifiedBy
	stored.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *memStore) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return ErrIdentityNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *memStore) List(_ context.Context, limit, offset int) ([]*Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Identity
	for id := int64(1); id < m.nextID; id++ {
		if u, ok := m.users[id]; ok {
			out = append(out, m.clone(u))
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) UpdateRoles(_ context.Context, id int64, roles []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return ErrIdentityNotFound
	}
	u.Roles = append([]string(nil), roles...)
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *memStore) SetEnabled(_ context.Context, id int64, enabled bool, modifiedBy string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return ErrIdentityNotFound
	}
	u.Enabled = enabled
	u.LastModifiedBy = modifiedBy
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *memStore) SetResetToken(_ context.Context, id int64, token string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return ErrIdentityNotFound
	}
	u.ResetToken = token
	u.ResetTokenExpiry = expiresAt
	return nil
}

func (m *memStore) ConsumeResetToken(_ context.Context, token, passwordHash string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ResetToken == token && token != "" && u.ResetTokenExpiry.After(now) {
			u.PasswordHash = passwordHash
			u.ResetToken = ""
			u.ResetTokenExpiry = time.Time{}
			return nil
		}
	}
	return ErrInvalidToken
}

var _ Store = (*memStore)(nil)

// mustRegister seeds an identity through the real Register path.
func mustRegister(t interface{ Fatalf(string, ...any) }, a *Authenticator, email, password string, roles ...string) *Identity {
	identity, err := a.Register(context.Background(), RegisterInput{
		FirstName: "Test",
		LastName:  "User",
		Email:     email,
		Password:  password,
		Roles:     roles,
	})
	if err != nil {
		t.Fatalf("Register(%s): %v", email, err)
	}
	return identity
}

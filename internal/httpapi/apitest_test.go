package httpapi

import (
	"context"
	"net/http"
	"testing"
	"time"

	"dealertasks.org/internal/auth"
	"dealertasks.org/internal/cars"
	"dealertasks.org/internal/tasks"
	"dealertasks.org/internal/users"
	"dealertasks.org/internal/valet"
	"dealertasks.org/internal/workshop"
)

// stubStore is an in-memory auth.Store backing the HTTP tests.
type stubStore struct {
	nextID int64
	byID   map[int64]*auth.Identity
}

func newStubStore() *stubStore {
	return &stubStore{nextID: 1, byID: make(map[int64]*auth.Identity)}
}

func (s *stubStore) clone(u *auth.Identity) *auth.Identity {
	cp := *u
	cp.Roles = append([]string(nil), u.Roles...)
	return &cp
}

func (s *stubStore) FindByID(_ context.Context, id int64) (*auth.Identity, error) {
	if u, ok := s.byID[id]; ok {
		return s.clone(u), nil
	}
	return nil, auth.ErrIdentityNotFound
}

func (s *stubStore) FindByEmail(_ context.Context, email string) (*auth.Identity, error) {
	for _, u := range s.byID {
		if u.Email == email {
			return s.clone(u), nil
		}
	}
	return nil, auth.ErrIdentityNotFound
}

func (s *stubStore) FindByResetToken(_ context.Context, token string) (*auth.Identity, error) {
	for _, u := range s.byID {
		if token != "" && u.ResetToken == token {
			return s.clone(u), nil
		}
	}
	return nil, auth.ErrIdentityNotFound
}

func (s *stubStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := s.FindByEmail(ctx, email)
	return err == nil, nil
}

func (s *stubStore) Create(_ context.Context, identity *auth.Identity) error {
	identity.ID = s.nextID
	s.nextID++
	s.byID[identity.ID] = s.clone(identity)
	return nil
}

func (s *stubStore) Update(_ context.Context, identity *auth.Identity) error {
	u, ok := s.byID[identity.ID]
	if !ok {
		return auth.ErrIdentityNotFound
	}
	u.FirstName = identity.FirstName
	u.LastName = identity.LastName
	u.PasswordHash = identity.PasswordHash
	u.LastModifiedBy = identity.LastModifiedBy
	return nil
}

func (s *stubStore) Delete(_ context.Context, id int64) error {
	if _, ok := s.byID[id]; !ok {
		return auth.ErrIdentityNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *stubStore) List(_ context.Context, limit, offset int) ([]*auth.Identity, error) {
	var out []*auth.Identity
	for id := int64(1); id < s.nextID; id++ {
		if u, ok := s.byID[id]; ok {
			out = append(out, s.clone(u))
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

func (s *stubStore) UpdateRoles(_ context.Context, id int64, roles []string) error {
	u, ok := s.byID[id]
	if !ok {
		return auth.ErrIdentityNotFound
	}
	u.Roles = append([]string(nil), roles...)
	return nil
}

func (s *stubStore) SetEnabled(_ context.Context, id int64, enabled bool, modifiedBy string) error {
	u, ok := s.byID[id]
	if !ok {
		return auth.ErrIdentityNotFound
	}
	u.Enabled = enabled
	u.LastModifiedBy = modifiedBy
	return nil
}

func (s *stubStore) SetResetToken(_ context.Context, id int64, token string, expiresAt time.Time) error {
	u, ok := s.byID[id]
	if !ok {
		return auth.ErrIdentityNotFound
	}
	u.ResetToken = token
	u.ResetTokenExpiry = expiresAt
	return nil
}

func (s *stubStore) ConsumeResetToken(_ context.Context, token, passwordHash string, now time.Time) error {
	for _, u := range s.byID {
		if token != "" && u.ResetToken == token && u.ResetTokenExpiry.After(now) {
			u.PasswordHash = passwordHash
			u.ResetToken = ""
			u.ResetTokenExpiry = time.Time{}
			return nil
		}
	}
	return auth.ErrInvalidToken
}

var _ auth.Store = (*stubStore)(nil)

// carStubStore is an in-memory cars.Store.
type carStubStore struct {
	byID map[string]*cars.Car
}

func newCarStubStore() *carStubStore {
	return &carStubStore{byID: make(map[string]*cars.Car)}
}

func (s *carStubStore) Create(_ context.Context, car *cars.Car) error {
	s.byID[car.ID] = car
	return nil
}

func (s *carStubStore) Get(_ context.Context, id string) (*cars.Car, error) {
	if c, ok := s.byID[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, cars.ErrNotFound
}

func (s *carStubStore) GetByRegNumber(_ context.Context, regNumber string) (*cars.Car, error) {
	for _, c := range s.byID {
		if c.RegNumber == regNumber {
			cp := *c
			return &cp, nil
		}
	}
	return nil, cars.ErrNotFound
}

func (s *carStubStore) List(_ context.Context, limit, offset int) ([]*cars.Car, error) {
	var out []*cars.Car
	for _, c := range s.byID {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (s *carStubStore) Update(_ context.Context, car *cars.Car) error {
	if _, ok := s.byID[car.ID]; !ok {
		return cars.ErrNotFound
	}
	s.byID[car.ID] = car
	return nil
}

func (s *carStubStore) Delete(_ context.Context, id string) error {
	if _, ok := s.byID[id]; !ok {
		return cars.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

type testEnv struct {
	api   *API
	auth  *auth.Authenticator
	store *stubStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := newStubStore()
	codec, err := auth.NewTokenCodec("test-secret", 15*time.Minute, 7*24*time.Hour)
	if err != nil {
		t.Fatalf("NewTokenCodec: %v", err)
	}
	authenticator := auth.NewAuthenticator(store, codec)
	api := New(Options{
		Auth:           authenticator,
		Reset:          auth.NewResetFlow(store, nopNotifier{}, "https://app.example.com/reset"),
		Users:          users.New(store),
		Cars:           cars.New(newCarStubStore()),
		Tasks:          tasks.New(nopTaskStore{}),
		Workshop:       workshop.New(nopJobStore{}),
		Valet:          valet.New(nopValetStore{}),
		Version:        "test",
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
	})
	return &testEnv{api: api, auth: authenticator, store: store}
}

// register creates an account and returns a live access token for it.
func (e *testEnv) register(t *testing.T, email, password string, roles ...string) string {
	t.Helper()
	if _, err := e.auth.Register(context.Background(), auth.RegisterInput{
		FirstName: "Test",
		LastName:  "User",
		Email:     email,
		Password:  password,
		Roles:     roles,
	}); err != nil {
		t.Fatalf("Register(%s): %v", email, err)
	}
	pair, err := e.auth.Login(context.Background(), email, password)
	if err != nil {
		t.Fatalf("Login(%s): %v", email, err)
	}
	return pair.AccessToken
}

type nopNotifier struct{}

func (nopNotifier) SendPasswordResetEmail(context.Context, string, string) error { return nil }

type nopTaskStore struct{}

func (nopTaskStore) Create(context.Context, *tasks.Task) error { return nil }
func (nopTaskStore) Get(context.Context, string) (*tasks.Task, error) {
	return nil, tasks.ErrNotFound
}
func (nopTaskStore) List(context.Context, int, int) ([]*tasks.Task, error) { return nil, nil }
func (nopTaskStore) Update(context.Context, *tasks.Task) error             { return tasks.ErrNotFound }
func (nopTaskStore) Delete(context.Context, string) error                  { return tasks.ErrNotFound }

type nopJobStore struct{}

func (nopJobStore) Create(context.Context, *workshop.Job) error { return nil }
func (nopJobStore) Get(context.Context, string) (*workshop.Job, error) {
	return nil, workshop.ErrNotFound
}
func (nopJobStore) List(context.Context, int, int) ([]*workshop.Job, error) { return nil, nil }
func (nopJobStore) Update(context.Context, *workshop.Job) error             { return workshop.ErrNotFound }
func (nopJobStore) Delete(context.Context, string) error                    { return workshop.ErrNotFound }

type nopValetStore struct{}

func (nopValetStore) Create(context.Context, *valet.Job) error { return nil }
func (nopValetStore) Get(context.Context, string) (*valet.Job, error) {
	return nil, valet.ErrNotFound
}
func (nopValetStore) List(context.Context, int, int) ([]*valet.Job, error) { return nil, nil }
func (nopValetStore) Update(context.Context, *valet.Job) error             { return valet.ErrNotFound }
func (nopValetStore) Delete(context.Context, string) error                 { return valet.ErrNotFound }

func withBearer(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

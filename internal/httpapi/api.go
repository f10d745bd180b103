// Package httpapi is the HTTP surface of the service: routing,
// authentication middleware, request plumbing and JSON codecs.
package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"dealertasks.org/internal/auth"
	"dealertasks.org/internal/cars"
	"dealertasks.org/internal/obs"
	"dealertasks.org/internal/tasks"
	"dealertasks.org/internal/users"
	"dealertasks.org/internal/valet"
	"dealertasks.org/internal/workshop"
)

// ReadyProbe reports readiness; with a DB configured it pings it.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// Options bundles the services the API exposes.
type Options struct {
	Auth     *auth.Authenticator
	Reset    *auth.ResetFlow
	Users    *users.Service
	Cars     *cars.Service
	Tasks    *tasks.Service
	Workshop *workshop.Service
	Valet    *valet.Service

	Ready   ReadyProbe
	Version string

	RateLimitRPS   float64
	RateLimitBurst int
	MaxBodyBytes   int64
}

// API is the HTTP layer.
type API struct {
	mux        *http.ServeMux
	auth       *auth.Authenticator
	reset      *auth.ResetFlow
	users      *users.Service
	cars       *cars.Service
	tasks      *tasks.Service
	workshop   *workshop.Service
	valet      *valet.Service
	readyProbe ReadyProbe
	version    string

	rateLimitRPS   float64
	rateLimitBurst int
	maxBodyBytes   int64
}

func New(opts Options) *API {
	a := &API{
		mux:            http.NewServeMux(),
		auth:           opts.Auth,
		reset:          opts.Reset,
		users:          opts.Users,
		cars:           opts.Cars,
		tasks:          opts.Tasks,
		workshop:       opts.Workshop,
		valet:          opts.Valet,
		readyProbe:     opts.Ready,
		version:        opts.Version,
		rateLimitRPS:   opts.RateLimitRPS,
		rateLimitBurst: opts.RateLimitBurst,
		maxBodyBytes:   opts.MaxBodyBytes,
	}
	if a.rateLimitRPS <= 0 {
		a.rateLimitRPS = 20
	}
	if a.rateLimitBurst <= 0 {
		a.rateLimitBurst = 40
	}
	if a.maxBodyBytes <= 0 {
		a.maxBodyBytes = 1 << 20
	}

	a.mux.HandleFunc("GET /healthz", a.Healthz)
	a.mux.HandleFunc("GET /readyz", a.Ready)
	a.mux.HandleFunc("GET /v1/info", a.Info)
	a.mux.Handle("GET /metrics", obs.Handler())

	a.mux.HandleFunc("POST /v1/auth/login", a.handleLogin)
	a.mux.HandleFunc("POST /v1/auth/refresh", a.handleRefresh)
	a.mux.HandleFunc("POST /v1/auth/logout", a.handleLogout)
	a.mux.HandleFunc("POST /v1/auth/forgot-password", a.handleForgotPassword)
	a.mux.HandleFunc("GET /v1/auth/reset-password", a.handleValidateResetToken)
	a.mux.HandleFunc("POST /v1/auth/reset-password", a.handleResetPassword)

	a.mux.HandleFunc("GET /v1/users/me", a.handleMe)
	a.mux.HandleFunc("PUT /v1/users/me", a.handleUpdateMe)

	a.mux.HandleFunc("POST /v1/admin/users", a.handleRegisterUser)
	a.mux.HandleFunc("GET /v1/admin/users", a.handleListUsers)
	a.mux.HandleFunc("GET /v1/admin/users/{id}", a.handleGetUser)
	a.mux.HandleFunc("PUT /v1/admin/users/{id}", a.handleAdminUpdateUser)
	a.mux.HandleFunc("DELETE /v1/admin/users/{id}", a.handleDeleteUser)
	a.mux.HandleFunc("PUT /v1/admin/users/{id}/roles", a.handleUpdateUserRoles)
	a.mux.HandleFunc("POST /v1/admin/users/{id}/enable", a.handleEnableUser)
	a.mux.HandleFunc("POST /v1/admin/users/{id}/disable", a.handleDisableUser)

	a.mux.HandleFunc("POST /v1/cars", a.handleCreateCar)
	a.mux.HandleFunc("GET /v1/cars", a.handleListCars)
	a.mux.HandleFunc("GET /v1/cars/{id}", a.handleGetCar)
	a.mux.HandleFunc("PUT /v1/cars/{id}", a.handleUpdateCar)
	a.mux.HandleFunc("DELETE /v1/cars/{id}", a.handleDeleteCar)
	a.mux.HandleFunc("POST /v1/cars/{id}/sell", a.handleSellCar)

	a.mux.HandleFunc("POST /v1/tasks", a.handleCreateTask)
	a.mux.HandleFunc("GET /v1/tasks", a.handleListTasks)
	a.mux.HandleFunc("GET /v1/tasks/{id}", a.handleGetTask)
	a.mux.HandleFunc("PUT /v1/tasks/{id}", a.handleUpdateTask)
	a.mux.HandleFunc("DELETE /v1/tasks/{id}", a.handleDeleteTask)

	a.mux.HandleFunc("POST /v1/workshop", a.handleCreateWorkshopJob)
	a.mux.HandleFunc("GET /v1/workshop", a.handleListWorkshopJobs)
	a.mux.HandleFunc("GET /v1/workshop/{id}", a.handleGetWorkshopJob)
	a.mux.HandleFunc("PUT /v1/workshop/{id}", a.handleUpdateWorkshopJob)
	a.mux.HandleFunc("DELETE /v1/workshop/{id}", a.handleDeleteWorkshopJob)

	a.mux.HandleFunc("POST /v1/valet", a.handleCreateValetJob)
	a.mux.HandleFunc("GET /v1/valet", a.handleListValetJobs)
	a.mux.HandleFunc("GET /v1/valet/{id}", a.handleGetValetJob)
	a.mux.HandleFunc("PUT /v1/valet/{id}", a.handleUpdateValetJob)
	a.mux.HandleFunc("DELETE /v1/valet/{id}", a.handleDeleteValetJob)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the fully wrapped http.Handler for the server.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = a.withAuth(h)
	h = MaxBodyBytes(h, a.maxBodyBytes)
	h = RateLimit(h, a.rateLimitBurst, a.rateLimitRPS)
	h = CORS(h)
	h = SecurityHeaders(h)
	h = LoggingJSON(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "dealertasks-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		obs.SetReady(false)
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	obs.SetReady(true)
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "dealertasks-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}

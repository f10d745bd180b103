package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"dealertasks.org/internal/audit"
	"dealertasks.org/internal/auth"
	"dealertasks.org/internal/users"
)

type registerUserRequest struct {
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Email     string   `json:"email"`
	Password  string   `json:"password"`
	Roles     []string `json:"roles"`
}

type updateMeRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

type adminUpdateUserRequest struct {
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Password  string   `json:"password"`
	Email     string   `json:"email"`
	Roles     []string `json:"roles"`
}

type updateRolesRequest struct {
	Roles []string `json:"roles"`
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	identity, err := a.users.Me(r.Context())
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, identity)
}

func (a *API) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	var req updateMeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	identity, err := a.users.Update(r.Context(), users.UpdateInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, identity)
}

func (a *API) handleRegisterUser(w http.ResponseWriter, r *http.Request) {
	if err := auth.RequireRole(r.Context(), auth.RoleAdmin); err != nil {
		handleAuthError(w, r, err)
		return
	}
	var req registerUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	identity, err := a.auth.Register(r.Context(), auth.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     strings.TrimSpace(req.Email),
		Password:  req.Password,
		Roles:     req.Roles,
	})
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "users.register", map[string]any{
		"email": identity.Email,
		"roles": identity.Roles,
	})
	w.Header().Set("Location", fmt.Sprintf("/v1/admin/users/%d", identity.ID))
	writeJSON(w, http.StatusCreated, identity)
}

func (a *API) handleListUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := listParams(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	list, err := a.users.List(r.Context(), limit, offset)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"users":  list,
		"limit":  limit,
		"offset": offset,
	})
}

func (a *API) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	identity, err := a.users.Get(r.Context(), id)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, identity)
}

func (a *API) handleAdminUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	var req adminUpdateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	identity, err := a.users.AdminUpdate(r.Context(), id, users.AdminUpdateInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
		Email:     strings.TrimSpace(req.Email),
		Roles:     req.Roles,
	})
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "users.update", map[string]any{
		"user_id": id,
	})
	writeJSON(w, http.StatusOK, identity)
}

func (a *API) handleUpdateUserRoles(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	var req updateRolesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	identity, err := a.users.UpdateRoles(r.Context(), id, req.Roles)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "users.roles.update", map[string]any{
		"user_id": id,
		"roles":   identity.Roles,
	})
	writeJSON(w, http.StatusOK, identity)
}

func (a *API) handleEnableUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	identity, err := a.users.Enable(r.Context(), id)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "users.enable", map[string]any{
		"user_id": id,
	})
	writeJSON(w, http.StatusOK, identity)
}

func (a *API) handleDisableUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	identity, err := a.users.Disable(r.Context(), id)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "users.disable", map[string]any{
		"user_id": id,
	})
	writeJSON(w, http.StatusOK, identity)
}

func (a *API) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	receipt, err := a.users.Delete(r.Context(), id)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "users.delete", map[string]any{
		"user_id": id,
		"email":   receipt.Email,
	})
	writeJSON(w, http.StatusOK, receipt)
}

package httpapi

import (
	"errors"
	"net/http"

	"dealertasks.org/internal/auth"
	"dealertasks.org/internal/cars"
	"dealertasks.org/internal/tasks"
	"dealertasks.org/internal/valet"
	"dealertasks.org/internal/workshop"
)

// handleAuthError maps service errors onto HTTP statuses. Credential
// and token failures all collapse to 401 with the same message, so the
// response does not reveal whether an account exists or is disabled.
func handleAuthError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenExpired),
		errors.Is(err, auth.ErrNotAuthenticated):
		writeError(w, r, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, auth.ErrNotAuthorized),
		errors.Is(err, auth.ErrOperationNotPermitted):
		writeError(w, r, http.StatusForbidden, err.Error())
	case errors.Is(err, auth.ErrIdentityNotFound):
		writeError(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, auth.ErrAlreadyExists):
		writeError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, auth.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrResetDispatch):
		writeError(w, r, http.StatusBadGateway, "reset email could not be sent")
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

func handleCRUDError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, cars.ErrNotFound),
		errors.Is(err, tasks.ErrNotFound),
		errors.Is(err, workshop.ErrNotFound),
		errors.Is(err, valet.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, cars.ErrAlreadyExists):
		writeError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, cars.ErrInvalidInput),
		errors.Is(err, tasks.ErrInvalidInput),
		errors.Is(err, workshop.ErrInvalidInput),
		errors.Is(err, valet.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	default:
		handleAuthError(w, r, err)
	}
}

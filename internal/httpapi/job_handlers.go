package httpapi

import (
	"fmt"
	"net/http"

	"dealertasks.org/internal/audit"
	"dealertasks.org/internal/valet"
	"dealertasks.org/internal/workshop"
)

func (a *API) handleCreateWorkshopJob(w http.ResponseWriter, r *http.Request) {
	var req workshop.CreateInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	job, err := a.workshop.Create(r.Context(), req)
	if err != nil {
		handleCRUDError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "workshop.create", map[string]any{
		"job_id": job.ID,
	})
	w.Header().Set("Location", fmt.Sprintf("/v1/workshop/%s", job.ID))
	writeJSON(w, http.StatusCreated, job)
}

func (a *API) handleListWorkshopJobs(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := listParams(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	list, err := a.workshop.List(r.Context(), limit, offset)
	if err != nil {
		handleCRUDError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"jobs":   list,
		"limit":  limit,
		"offset": offset,
	})
}

func (a *API) handleGetWorkshopJob(w http.ResponseWriter, r *http.Request) {
	job, err := a.workshop.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		handleCRUDError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (a *API) handleUpdateWorkshopJob(w http.ResponseWriter, r *http.Request) {
	var req workshop.UpdateInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	job, err := a.workshop.Update(r.Context(), r.PathValue("id"), req)
	if err != nil {
		handleCRUDError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (a *API) handleDeleteWorkshopJob(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := a.workshop.Delete(r.Context(), id); err != nil {
		handleCRUDError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "workshop.delete", map[string]any{
		"job_id": id,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleCreateValetJob(w http.ResponseWriter, r *http.Request) {
	var req valet.CreateInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	job, err := a.valet.Create(r.Context(), req)
	if err != nil {
		handleCRUDError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "valet.create", map[string]any{
		"job_id": job.ID,
	})
	w.Header().Set("Location", fmt.Sprintf("/v1/valet/%s", job.ID))
	writeJSON(w, http.StatusCreated, job)
}

func (a *API) handleListValetJobs(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := listParams(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	list, err := a.valet.List(r.Context(), limit, offset)
	if err != nil {
		handleCRUDError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"jobs":   list,
		"limit":  limit,
		"offset": offset,
	})
}

func (a *API) handleGetValetJob(w http.ResponseWriter, r *http.Request) {
	job, err := a.valet.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		handleCRUDError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (a *API) handleUpdateValetJob(w http.ResponseWriter, r *http.Request) {
	var req valet.UpdateInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	job, err := a.valet.Update(r.Context(), r.PathValue("id"), req)
	if err != nil {
		handleCRUDError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (a *API) handleDeleteValetJob(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := a.valet.Delete(r.Context(), id); err != nil {
		handleCRUDError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "valet.delete", map[string]any{
		"job_id": id,
	})
	w.WriteHeader(http.StatusNoContent)
}

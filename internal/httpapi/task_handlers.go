package httpapi

import (
	"fmt"
	"net/http"

	"dealertasks.org/internal/audit"
	"dealertasks.org/internal/tasks"
)

func (a *API) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req tasks.CreateInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	task, err := a.tasks.Create(r.Context(), req)
	if err != nil {
		handleCRUDError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "tasks.create", map[string]any{
		"task_id": task.ID,
		"title":   task.Title,
	})
	w.Header().Set("Location", fmt.Sprintf("/v1/tasks/%s", task.ID))
	writeJSON(w, http.StatusCreated, task)
}

func (a *API) handleListTasks(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := listParams(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	list, err := a.tasks.List(r.Context(), limit, offset)
	if err != nil {
		handleCRUDError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tasks":  list,
		"limit":  limit,
		"offset": offset,
	})
}

func (a *API) handleGetTask(w http.ResponseWriter, r *http.Request) {
	task, err := a.tasks.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		handleCRUDError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (a *API) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var req tasks.UpdateInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	task, err := a.tasks.Update(r.Context(), r.PathValue("id"), req)
	if err != nil {
		handleCRUDError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (a *API) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := a.tasks.Delete(r.Context(), id); err != nil {
		handleCRUDError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "tasks.delete", map[string]any{
		"task_id": id,
	})
	w.WriteHeader(http.StatusNoContent)
}

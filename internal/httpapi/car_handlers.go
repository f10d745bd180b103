package httpapi

import (
	"fmt"
	"net/http"

	"dealertasks.org/internal/audit"
	"dealertasks.org/internal/cars"
)

type sellCarRequest struct {
	BuyerName string `json:"buyer_name"`
}

func (a *API) handleCreateCar(w http.ResponseWriter, r *http.Request) {
	var req cars.CreateInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	car, err := a.cars.Create(r.Context(), req)
	if err != nil {
		handleCRUDError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "cars.create", map[string]any{
		"car_id":     car.ID,
		"reg_number": car.RegNumber,
	})
	w.Header().Set("Location", fmt.Sprintf("/v1/cars/%s", car.ID))
	writeJSON(w, http.StatusCreated, car)
}

func (a *API) handleListCars(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := listParams(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	list, err := a.cars.List(r.Context(), limit, offset)
	if err != nil {
		handleCRUDError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"cars":   list,
		"limit":  limit,
		"offset": offset,
	})
}

func (a *API) handleGetCar(w http.ResponseWriter, r *http.Request) {
	car, err := a.cars.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		handleCRUDError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, car)
}

func (a *API) handleUpdateCar(w http.ResponseWriter, r *http.Request) {
	var req cars.UpdateInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	car, err := a.cars.Update(r.Context(), r.PathValue("id"), req)
	if err != nil {
		handleCRUDError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, car)
}

func (a *API) handleSellCar(w http.ResponseWriter, r *http.Request) {
	var req sellCarRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	car, err := a.cars.Sell(r.Context(), r.PathValue("id"), req.BuyerName)
	if err != nil {
		handleCRUDError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "cars.sell", map[string]any{
		"car_id": car.ID,
		"buyer":  car.BuyerName,
	})
	writeJSON(w, http.StatusOK, car)
}

func (a *API) handleDeleteCar(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := a.cars.Delete(r.Context(), id); err != nil {
		handleCRUDError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "cars.delete", map[string]any{
		"car_id": id,
	})
	w.WriteHeader(http.StatusNoContent)
}

package api

import (
	"net/http"

	"rentacar/internal/entities"
	"rentacar/internal/service"

	"github.com/gorilla/mux"
)

type VehicleHandler struct {
	Service *service.VehicleService
}

func NewVehicleHandler(svc *service.VehicleService) *VehicleHandler {
	return &VehicleHandler{Service: svc}
}

func (h *VehicleHandler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	filter := entities.VehicleFilter{
		Status:   r.URL.Query().Get("status"),
		Category: r.URL.Query().Get("category"),
		Location: r.URL.Query().Get("location"),
		Search:   r.URL.Query().Get("search"),
	}
	vehicles, err := h.Service.ListVehicles(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vehicles)
}

func (h *VehicleHandler) GetVehicle(w http.ResponseWriter, r *http.Request) {
	vehicle, err := h.Service.GetVehicle(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vehicle)
}

func (h *VehicleHandler) ListBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := h.Service.ListBrands(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, brands)
}

func (h *VehicleHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Service.ListCategories(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *VehicleHandler) ListLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.Service.ListLocations(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, locations)
}

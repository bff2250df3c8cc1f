package api

import (
	"encoding/json"
	"net/http"

	"rentacar/internal/entities"
	apperr "rentacar/internal/errors"
	"rentacar/internal/service"

	"github.com/gorilla/mux"
)

type BookingHandler struct {
	Service *service.BookingService
}

func NewBookingHandler(svc *service.BookingService) *BookingHandler {
	return &BookingHandler{Service: svc}
}

func (h *BookingHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	var req entities.AvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.NewHTTPError(http.StatusBadRequest, "invalid request body"))
		return
	}
	resp, err := h.Service.CheckAvailability(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req entities.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.NewHTTPError(http.StatusBadRequest, "invalid request body"))
		return
	}
	booking, err := h.Service.CreateBooking(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

// ListBookings is the guest's booking history, keyed by email.
func (h *BookingHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	list, err := h.Service.ListBookingsByEmail(r.Context(), email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	number := mux.Vars(r)["number"]
	email := r.URL.Query().Get("email")
	if email == "" {
		writeError(w, apperr.NewHTTPError(http.StatusBadRequest, "email query parameter is required"))
		return
	}
	booking, err := h.Service.GetBooking(r.Context(), number, email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

// BookedDates feeds the disabled-date calendar for a vehicle.
func (h *BookingHandler) BookedDates(w http.ResponseWriter, r *http.Request) {
	vehicleID := mux.Vars(r)["id"]
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	dates, err := h.Service.BookedDates(r.Context(), vehicleID, from, to)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dates)
}

// Quote prices a window for the booking form before submission.
func (h *BookingHandler) Quote(w http.ResponseWriter, r *http.Request) {
	vehicleID := mux.Vars(r)["id"]
	quote, err := h.Service.Quote(r.Context(), vehicleID, r.URL.Query().Get("start_date"), r.URL.Query().Get("end_date"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

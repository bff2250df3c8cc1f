package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"rentacar/internal/entities"
	apperr "rentacar/internal/errors"
	"rentacar/internal/service"

	"github.com/gorilla/mux"
)

type AdminHandler struct {
	Bookings      *service.BookingService
	Posts         *service.SupportService
	Consultations *service.ConsultationService
}

func NewAdminHandler(bookings *service.BookingService, posts *service.SupportService, consultations *service.ConsultationService) *AdminHandler {
	return &AdminHandler{Bookings: bookings, Posts: posts, Consultations: consultations}
}

// ListReservations is the admin view, filterable by covered date and status.
func (h *AdminHandler) ListReservations(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	reservations, err := h.Bookings.ListReservations(r.Context(), r.URL.Query().Get("date"), r.URL.Query().Get("status"), page)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reservations)
}

// UpdateReservationStatus applies confirm/cancel/activate/complete to a
// reservation; the service enforces the transition table and notifies.
func (h *AdminHandler) UpdateReservationStatus(w http.ResponseWriter, r *http.Request) {
	number := mux.Vars(r)["number"]
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.NewHTTPError(http.StatusBadRequest, "invalid request body"))
		return
	}
	updated, err := h.Bookings.UpdateBookingStatus(r.Context(), number, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"reservation_number": updated.ReservationNumber,
		"status":             updated.Status,
	})
}

func (h *AdminHandler) ListConsultations(w http.ResponseWriter, r *http.Request) {
	unreadOnly, _ := strconv.ParseBool(r.URL.Query().Get("unread"))
	consultations, err := h.Consultations.List(r.Context(), unreadOnly)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, consultations)
}

func (h *AdminHandler) MarkConsultationRead(w http.ResponseWriter, r *http.Request) {
	if err := h.Consultations.MarkRead(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "consultation marked as read"})
}

func (h *AdminHandler) UpdateConsultationStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status    string `json:"status"`
		AdminMemo string `json:"admin_memo"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.NewHTTPError(http.StatusBadRequest, "invalid request body"))
		return
	}
	if err := h.Consultations.UpdateStatus(r.Context(), mux.Vars(r)["id"], req.Status, req.AdminMemo); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "consultation updated"})
}

// ListModerationQueue shows posts in any status; ?status= narrows.
func (h *AdminHandler) ListModerationQueue(w http.ResponseWriter, r *http.Request) {
	posts, err := h.Posts.ListModerationQueue(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (h *AdminHandler) ModeratePost(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.NewHTTPError(http.StatusBadRequest, "invalid request body"))
		return
	}
	if err := h.Posts.ModeratePost(r.Context(), mux.Vars(r)["id"], req.Status); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "post moderated"})
}

func (h *AdminHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	if err := h.Posts.DeletePost(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "post deleted"})
}

// CreateNotice publishes an admin post, approved immediately.
func (h *AdminHandler) CreateNotice(w http.ResponseWriter, r *http.Request) {
	var req entities.CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.NewHTTPError(http.StatusBadRequest, "invalid request body"))
		return
	}
	post, err := h.Posts.CreatePost(r.Context(), req, true)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

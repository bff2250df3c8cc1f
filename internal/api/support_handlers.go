package api

import (
	"encoding/json"
	"net/http"

	"rentacar/internal/entities"
	apperr "rentacar/internal/errors"
	"rentacar/internal/service"

	"github.com/gorilla/mux"
)

type SupportHandler struct {
	Posts         *service.SupportService
	Consultations *service.ConsultationService
}

func NewSupportHandler(posts *service.SupportService, consultations *service.ConsultationService) *SupportHandler {
	return &SupportHandler{Posts: posts, Consultations: consultations}
}

// ListPosts returns approved posts; ?type=notice|community narrows.
func (h *SupportHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.Posts.ListPosts(r.Context(), r.URL.Query().Get("type"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (h *SupportHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.Posts.GetPost(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// CreatePost takes a guest submission; it lands in the moderation queue.
func (h *SupportHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req entities.CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.NewHTTPError(http.StatusBadRequest, "invalid request body"))
		return
	}
	post, err := h.Posts.CreatePost(r.Context(), req, false)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

// VerifyPostPassword lets a guest prove ownership of their post.
func (h *SupportHandler) VerifyPostPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.NewHTTPError(http.StatusBadRequest, "invalid request body"))
		return
	}
	verified, err := h.Posts.VerifyPostPassword(r.Context(), mux.Vars(r)["id"], req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"verified": verified})
}

func (h *SupportHandler) CreateConsultation(w http.ResponseWriter, r *http.Request) {
	var req entities.ConsultationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.NewHTTPError(http.StatusBadRequest, "invalid request body"))
		return
	}
	consultation, err := h.Consultations.Create(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, consultation)
}

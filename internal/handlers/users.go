package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Bram-G/SpecialCouscousBackEnd-sub000/internal/auth"
	"github.com/Bram-G/SpecialCouscousBackEnd-sub000/internal/store"
)

type UserHandler struct {
	Store *store.Store
	Log   *zap.Logger
}

func NewUserHandler(s *store.Store, log *zap.Logger) *UserHandler {
	return &UserHandler{Store: s, Log: log}
}

// Routes is mounted under /api/users in main.
func (h *UserHandler) Routes(r chi.Router) {
	r.Get("/me", h.me)
	r.Get("/group", h.groups)
	r.Get("/invites", h.invites)
}

func (h *UserHandler) me(w http.ResponseWriter, r *http.Request) {
	cu := auth.FromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"user": summarize(cu.User), "groups": cu.Groups})
}

func (h *UserHandler) groups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.Store.ListGroupsForUser(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeStoreError(h.Log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

func (h *UserHandler) invites(w http.ResponseWriter, r *http.Request) {
	invites, err := h.Store.ListInvitesForUser(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeStoreError(h.Log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, invites)
}

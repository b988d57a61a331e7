package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Bram-G/SpecialCouscousBackEnd-sub000/internal/auth"
	"github.com/Bram-G/SpecialCouscousBackEnd-sub000/internal/email"
	"github.com/Bram-G/SpecialCouscousBackEnd-sub000/internal/models"
	"github.com/Bram-G/SpecialCouscousBackEnd-sub000/internal/store"
	"github.com/Bram-G/SpecialCouscousBackEnd-sub000/internal/validate"
)

type GroupHandler struct {
	Store  *store.Store
	Tokens *auth.Manager
	Mailer email.Mailer
	Log    *zap.Logger
}

func NewGroupHandler(s *store.Store, tokens *auth.Manager, mailer email.Mailer, log *zap.Logger) *GroupHandler {
	return &GroupHandler{Store: s, Tokens: tokens, Mailer: mailer, Log: log}
}

// Routes is mounted under /api/groups in main.
func (h *GroupHandler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Post("/{id}/leave", h.leave)
	r.Delete("/{id}/members/{userId}", h.removeMember)
	r.Get("/{id}/invite-link", h.inviteLink)
	r.Post("/{id}/invite-link", h.inviteLink)
	r.Post("/join/{inviteToken}", h.join)
	r.Post("/{id}/invites", h.invite)
	r.Patch("/{id}/visibility", h.setVisibility)
}

// PublicRoutes carries the anonymous-readable surface; mounted with the
// optional auth middleware.
func (h *GroupHandler) PublicRoutes(r chi.Router) {
	r.Get("/public/{slug}", h.getPublic)
}

func idParam(r *http.Request, name string) (uint, bool) {
	n, err := strconv.ParseUint(chi.URLParam(r, name), 10, 32)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

func (h *GroupHandler) create(w http.ResponseWriter, r *http.Request) {
	cu := auth.FromContext(r.Context())
	type bodyT struct {
		Name        string `json:"name" validate:"required,min=1,max=100"`
		Description string `json:"description" validate:"max=1000"`
	}
	var b bodyT
	if !decodeBody(w, r, &b) {
		return
	}
	if errs := validate.Map(b); errs != nil {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}
	g := &models.Group{Name: b.Name, Description: b.Description}
	if err := h.Store.CreateGroup(r.Context(), g, cu.User); err != nil {
		writeStoreError(h.Log, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

func (h *GroupHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid group id")
		return
	}
	cu := auth.FromContext(r.Context())
	if !cu.IsInGroup(id) {
		writeError(w, http.StatusForbidden, "not a member of this group")
		return
	}
	g, err := h.Store.GetGroup(r.Context(), id)
	if err != nil {
		writeStoreError(h.Log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (h *GroupHandler) getPublic(w http.ResponseWriter, r *http.Request) {
	g, err := h.Store.GetPublicGroupBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		writeStoreError(h.Log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (h *GroupHandler) leave(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid group id")
		return
	}
	if err := h.Store.LeaveGroup(r.Context(), id, auth.UserID(r.Context())); err != nil {
		writeStoreError(h.Log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "left group"})
}

func (h *GroupHandler) removeMember(w http.ResponseWriter, r *http.Request) {
	groupID, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid group id")
		return
	}
	memberID, ok := idParam(r, "userId")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	if err := h.Store.RemoveGroupMember(r.Context(), groupID, auth.UserID(r.Context()), memberID); err != nil {
		writeStoreError(h.Log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "member removed"})
}

// inviteLink issues a 7-day signed token embedding the group id and name;
// anyone holding it can join once.
func (h *GroupHandler) inviteLink(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid group id")
		return
	}
	cu := auth.FromContext(r.Context())
	if !cu.IsInGroup(id) {
		writeError(w, http.StatusForbidden, "not a member of this group")
		return
	}
	g, err := h.Store.GetGroup(r.Context(), id)
	if err != nil {
		writeStoreError(h.Log, w, err)
		return
	}
	token, err := h.Tokens.IssueInviteToken(g.ID, g.Name)
	if err != nil {
		h.Log.Error("issue invite token", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"inviteToken": token, "groupName": g.Name})
}

func (h *GroupHandler) join(w http.ResponseWriter, r *http.Request) {
	groupID, _, err := h.Tokens.VerifyInviteToken(chi.URLParam(r, "inviteToken"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid or expired invite")
		return
	}
	if err := h.Store.AddGroupMember(r.Context(), groupID, auth.UserID(r.Context())); err != nil {
		writeStoreError(h.Log, w, err)
		return
	}
	g, err := h.Store.GetGroup(r.Context(), groupID)
	if err != nil {
		writeStoreError(h.Log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// invite records a direct email invite and notifies the invitee.
func (h *GroupHandler) invite(w http.ResponseWriter, r *http.Request) {
	groupID, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid group id")
		return
	}
	cu := auth.FromContext(r.Context())
	if !cu.IsInGroup(groupID) {
		writeError(w, http.StatusForbidden, "not a member of this group")
		return
	}
	type bodyT struct {
		Email string `json:"email" validate:"required,email"`
	}
	var b bodyT
	if !decodeBody(w, r, &b) {
		return
	}
	if errs := validate.Map(b); errs != nil {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}
	invitee, err := h.Store.GetUserByEmail(r.Context(), b.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "no account with that email")
			return
		}
		writeStoreError(h.Log, w, err)
		return
	}
	inv := &models.GroupInvite{
		GroupID:       groupID,
		InvitedByID:   cu.User.ID,
		InvitedUserID: invitee.ID,
	}
	if err := h.Store.CreateGroupInvite(r.Context(), inv); err != nil {
		writeStoreError(h.Log, w, err)
		return
	}
	g, err := h.Store.GetGroup(r.Context(), groupID)
	if err == nil {
		token, terr := h.Tokens.IssueInviteToken(g.ID, g.Name)
		if terr == nil {
			if merr := h.Mailer.SendGroupInvite(r.Context(), invitee.Email, g.Name, token); merr != nil {
				h.Log.Error("send invite mail", zap.Error(merr))
			}
		}
	}
	writeJSON(w, http.StatusCreated, inv)
}

// respond handles POST /api/invites/{id}/respond.
func (h *GroupHandler) Respond(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid invite id")
		return
	}
	type bodyT struct {
		Response string `json:"response" validate:"required,oneof=accept reject"`
	}
	var b bodyT
	if !decodeBody(w, r, &b) {
		return
	}
	if errs := validate.Map(b); errs != nil {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}
	inv, err := h.Store.RespondToInvite(r.Context(), id, auth.UserID(r.Context()), b.Response == "accept")
	if err != nil {
		writeStoreError(h.Log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (h *GroupHandler) setVisibility(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid group id")
		return
	}
	type bodyT struct {
		IsPublic *bool `json:"is_public" validate:"required"`
	}
	var b bodyT
	if !decodeBody(w, r, &b) {
		return
	}
	if b.IsPublic == nil {
		writeError(w, http.StatusBadRequest, "is_public is required")
		return
	}
	g, err := h.Store.SetGroupVisibility(r.Context(), id, auth.UserID(r.Context()), *b.IsPublic)
	if err != nil {
		writeStoreError(h.Log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

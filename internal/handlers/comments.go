package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Bram-G/SpecialCouscousBackEnd-sub000/internal/auth"
	"github.com/Bram-G/SpecialCouscousBackEnd-sub000/internal/models"
	"github.com/Bram-G/SpecialCouscousBackEnd-sub000/internal/store"
	"github.com/Bram-G/SpecialCouscousBackEnd-sub000/internal/validate"
)

type CommentHandler struct {
	Store *store.Store
	Log   *zap.Logger
}

func NewCommentHandler(s *store.Store, log *zap.Logger) *CommentHandler {
	return &CommentHandler{Store: s, Log: log}
}

// Routes is mounted under /api/comments in main, behind the required auth
// middleware and the per-user rate limiter.
func (h *CommentHandler) Routes(r chi.Router) {
	r.Post("/{contentType}/{contentId}", h.create)
	r.Patch("/{id}", h.edit)
	r.Delete("/{id}", h.softDelete)
	r.Post("/{id}/vote", h.vote)
	r.Post("/{id}/report", h.report)
}

// PublicRoutes serves threaded listings to anonymous callers too.
func (h *CommentHandler) PublicRoutes(r chi.Router) {
	r.Get("/{contentType}/{contentId}", h.list)
}

func sectionTarget(r *http.Request) (models.ContentType, int64, bool) {
	ct := models.ContentType(chi.URLParam(r, "contentType"))
	if !ct.Valid() {
		return "", 0, false
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "contentId"), 10, 64)
	if err != nil || id <= 0 {
		return "", 0, false
	}
	return ct, id, true
}

// commentView hides soft-deleted content while keeping thread structure.
type commentView struct {
	models.Comment
	MyVote models.VoteType `json:"my_vote,omitempty"`
}

func viewOf(c models.Comment, votes map[uint]models.VoteType) commentView {
	if c.IsDeleted || c.IsHidden {
		c.Content = "[deleted]"
	}
	for i := range c.Replies {
		if c.Replies[i].IsDeleted || c.Replies[i].IsHidden {
			c.Replies[i].Content = "[deleted]"
		}
	}
	return commentView{Comment: c, MyVote: votes[c.ID]}
}

func (h *CommentHandler) list(w http.ResponseWriter, r *http.Request) {
	ct, contentID, ok := sectionTarget(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid content target")
		return
	}
	sec, err := h.Store.EnsureSection(r.Context(), ct, contentID)
	if err != nil {
		writeStoreError(h.Log, w, err)
		return
	}
	comments, err := h.Store.ListComments(r.Context(), sec.ID)
	if err != nil {
		writeStoreError(h.Log, w, err)
		return
	}
	votes := map[uint]models.VoteType{}
	if uid := auth.UserID(r.Context()); uid != 0 {
		if votes, err = h.Store.VotesForUser(r.Context(), sec.ID, uid); err != nil {
			writeStoreError(h.Log, w, err)
			return
		}
	}
	views := make([]commentView, 0, len(comments))
	for _, c := range comments {
		views = append(views, viewOf(c, votes))
	}
	writeJSON(w, http.StatusOK, map[string]any{"section": sec, "comments": views})
}

func (h *CommentHandler) create(w http.ResponseWriter, r *http.Request) {
	ct, contentID, ok := sectionTarget(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid content target")
		return
	}
	type bodyT struct {
		Content         string `json:"content" validate:"required,min=1,max=4000"`
		ParentCommentID *uint  `json:"parent_comment_id" validate:"omitempty,gt=0"`
	}
	var b bodyT
	if !decodeBody(w, r, &b) {
		return
	}
	if errs := validate.Map(b); errs != nil {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}
	sec, err := h.Store.EnsureSection(r.Context(), ct, contentID)
	if err != nil {
		writeStoreError(h.Log, w, err)
		return
	}
	c := &models.Comment{
		SectionID:       sec.ID,
		UserID:          auth.UserID(r.Context()),
		ParentCommentID: b.ParentCommentID,
		Content:         b.Content,
	}
	if err := h.Store.CreateComment(r.Context(), c); err != nil {
		writeStoreError(h.Log, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *CommentHandler) edit(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid comment id")
		return
	}
	type bodyT struct {
		Content string `json:"content" validate:"required,min=1,max=4000"`
	}
	var b bodyT
	if !decodeBody(w, r, &b) {
		return
	}
	if errs := validate.Map(b); errs != nil {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}
	c, err := h.Store.EditComment(r.Context(), id, auth.UserID(r.Context()), b.Content)
	if err != nil {
		writeStoreError(h.Log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CommentHandler) softDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid comment id")
		return
	}
	if err := h.Store.SoftDeleteComment(r.Context(), id, auth.UserID(r.Context())); err != nil {
		writeStoreError(h.Log, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CommentHandler) vote(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid comment id")
		return
	}
	type bodyT struct {
		VoteType string `json:"vote_type" validate:"required,oneof=upvote downvote"`
	}
	var b bodyT
	if !decodeBody(w, r, &b) {
		return
	}
	if errs := validate.Map(b); errs != nil {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}
	c, err := h.Store.VoteComment(r.Context(), id, auth.UserID(r.Context()), models.VoteType(b.VoteType))
	if err != nil {
		writeStoreError(h.Log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"upvotes":    c.Upvotes,
		"downvotes":  c.Downvotes,
		"vote_score": c.VoteScore,
	})
}

func (h *CommentHandler) report(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid comment id")
		return
	}
	type bodyT struct {
		Reason  string `json:"reason" validate:"required,oneof=spam harassment off_topic other"`
		Details string `json:"details" validate:"max=1000"`
	}
	var b bodyT
	if !decodeBody(w, r, &b) {
		return
	}
	if errs := validate.Map(b); errs != nil {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}
	rep := &models.CommentReport{
		CommentID:    id,
		ReportedByID: auth.UserID(r.Context()),
		Reason:       models.ReportReason(b.Reason),
		Details:      b.Details,
	}
	if err := h.Store.ReportComment(r.Context(), rep); err != nil {
		writeStoreError(h.Log, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rep)
}

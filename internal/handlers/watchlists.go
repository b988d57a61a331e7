package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Bram-G/SpecialCouscousBackEnd-sub000/internal/auth"
	"github.com/Bram-G/SpecialCouscousBackEnd-sub000/internal/cache"
	"github.com/Bram-G/SpecialCouscousBackEnd-sub000/internal/models"
	"github.com/Bram-G/SpecialCouscousBackEnd-sub000/internal/store"
	"github.com/Bram-G/SpecialCouscousBackEnd-sub000/internal/tmdb"
	"github.com/Bram-G/SpecialCouscousBackEnd-sub000/internal/validate"
)

type WatchlistHandler struct {
	Store     *store.Store
	TMDB      *tmdb.Client
	FeedCache *cache.TTLCache[string, []models.WatchlistCategory]
	Log       *zap.Logger
}

func NewWatchlistHandler(s *store.Store, t *tmdb.Client, log *zap.Logger) *WatchlistHandler {
	return &WatchlistHandler{
		Store:     s,
		TMDB:      t,
		FeedCache: cache.NewTTL[string, []models.WatchlistCategory](60 * time.Second),
		Log:       log,
	}
}

// Routes is mounted under /api/watchlists in main.
func (h *WatchlistHandler) Routes(r chi.Router) {
	r.Get("/categories", h.listCategories)
	r.Post("/categories", h.createCategory)
	r.Put("/categories/{id}", h.updateCategory)
	r.Delete("/categories/{id}", h.deleteCategory)
	r.Post("/categories/{id}/movies", h.addMovie)
	r.Patch("/categories/{id}/movies/{itemId}", h.updateMovie)
	r.Delete("/categories/{id}/movies/{itemId}", h.removeMovie)
	r.Post("/categories/{id}/reorder", h.reorder)
	r.Post("/categories/{id}/like", h.like)
	r.Post("/movies", h.addToMany)
}

// PublicRoutes is mounted with the optional auth middleware so anonymous
// callers can browse public lists.
func (h *WatchlistHandler) PublicRoutes(r chi.Router) {
	r.Get("/categories/{id}", h.getCategory)
	r.Get("/public", h.listPublic)
	r.Get("/featured", h.featured)
}

// SearchMovies proxies TMDB search for clients building a shortlist.
// Public: GET /api/movies/search?q=...&page=1
func (h *WatchlistHandler) SearchMovies(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	res, err := h.TMDB.SearchMovies(r.Context(), q, page)
	if err != nil {
		writeError(w, http.StatusBadGateway, "movie search failed")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Movie fetches one TMDB movie. Public: GET /api/movies/{id}
func (h *WatchlistHandler) Movie(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "id must be a positive integer")
		return
	}
	mv, err := h.TMDB.GetMovie(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusBadGateway, "movie lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, mv)
}

func (h *WatchlistHandler) listCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.Store.ListCategoriesForUser(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeStoreError(h.Log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

func (h *WatchlistHandler) getCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid category id")
		return
	}
	c, err := h.Store.GetCategory(r.Context(), id)
	if err != nil {
		writeStoreError(h.Log, w, err)
		return
	}
	if !c.IsPublic && c.UserID != auth.UserID(r.Context()) {
		writeError(w, http.StatusForbidden, "this watchlist is private")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *WatchlistHandler) createCategory(w http.ResponseWriter, r *http.Request) {
	type bodyT struct {
		Name        string `json:"name" validate:"required,min=1,max=100"`
		Description string `json:"description" validate:"max=1000"`
		IsPublic    bool   `json:"is_public"`
	}
	var b bodyT
	if !decodeBody(w, r, &b) {
		return
	}
	if errs := validate.Map(b); errs != nil {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}
	c := &models.WatchlistCategory{
		UserID:      auth.UserID(r.Context()),
		Name:        b.Name,
		Description: b.Description,
		IsPublic:    b.IsPublic,
	}
	if err := h.Store.CreateCategory(r.Context(), c); err != nil {
		writeStoreError(h.Log, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *WatchlistHandler) updateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid category id")
		return
	}
	type bodyT struct {
		Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
		Description *string `json:"description" validate:"omitempty,max=1000"`
		IsPublic    *bool   `json:"is_public"`
	}
	var b bodyT
	if !decodeBody(w, r, &b) {
		return
	}
	if errs := validate.Map(b); errs != nil {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}
	c, err := h.Store.UpdateCategory(r.Context(), id, auth.UserID(r.Context()), b.Name, b.Description, b.IsPublic)
	if err != nil {
		writeStoreError(h.Log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *WatchlistHandler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid category id")
		return
	}
	if err := h.Store.DeleteCategory(r.Context(), id, auth.UserID(r.Context())); err != nil {
		writeStoreError(h.Log, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// addMovie is the explicit path: a duplicate in the category is a conflict,
// unlike quick-add.
func (h *WatchlistHandler) addMovie(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid category id")
		return
	}
	type bodyT struct {
		TmdbMovieID int64  `json:"tmdb_movie_id" validate:"required,gt=0"`
		UserNote    string `json:"user_note" validate:"max=1000"`
	}
	var b bodyT
	if !decodeBody(w, r, &b) {
		return
	}
	if errs := validate.Map(b); errs != nil {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}
	mv, err := h.TMDB.GetMovie(r.Context(), b.TmdbMovieID)
	if err != nil {
		writeError(w, http.StatusBadGateway, "movie lookup failed")
		return
	}
	it := &models.WatchlistItem{
		CategoryID:  id,
		TmdbMovieID: b.TmdbMovieID,
		Title:       mv.Title,
		PosterPath:  mv.PosterPath,
		UserNote:    b.UserNote,
	}
	if err := h.Store.AddItem(r.Context(), it, auth.UserID(r.Context())); err != nil {
		writeStoreError(h.Log, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, it)
}

// addToMany adds one movie to several of the caller's categories in one
// transaction.
func (h *WatchlistHandler) addToMany(w http.ResponseWriter, r *http.Request) {
	type bodyT struct {
		TmdbMovieID int64  `json:"tmdb_movie_id" validate:"required,gt=0"`
		CategoryIDs []uint `json:"category_ids" validate:"required,min=1,dive,gt=0"`
	}
	var b bodyT
	if !decodeBody(w, r, &b) {
		return
	}
	if errs := validate.Map(b); errs != nil {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}
	mv, err := h.TMDB.GetMovie(r.Context(), b.TmdbMovieID)
	if err != nil {
		writeError(w, http.StatusBadGateway, "movie lookup failed")
		return
	}
	template := &models.WatchlistItem{
		TmdbMovieID: b.TmdbMovieID,
		Title:       mv.Title,
		PosterPath:  mv.PosterPath,
	}
	added, skipped, err := h.Store.AddToCategories(r.Context(), auth.UserID(r.Context()), b.CategoryIDs, template)
	if err != nil {
		writeStoreError(h.Log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"added": added, "alreadyInCategories": skipped})
}

func (h *WatchlistHandler) updateMovie(w http.ResponseWriter, r *http.Request) {
	itemID, ok := idParam(r, "itemId")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}
	type bodyT struct {
		UserNote   *string  `json:"user_note" validate:"omitempty,max=1000"`
		UserRating *float64 `json:"user_rating" validate:"omitempty,gte=0,lte=10"`
		Watched    *bool    `json:"watched"`
	}
	var b bodyT
	if !decodeBody(w, r, &b) {
		return
	}
	if errs := validate.Map(b); errs != nil {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}
	updates := map[string]any{}
	if b.UserNote != nil {
		updates["user_note"] = *b.UserNote
	}
	if b.UserRating != nil {
		updates["user_rating"] = *b.UserRating
	}
	if b.Watched != nil {
		updates["watched"] = *b.Watched
		if *b.Watched {
			updates["watched_date"] = time.Now()
		} else {
			updates["watched_date"] = nil
		}
	}
	if len(updates) == 0 {
		writeError(w, http.StatusBadRequest, "nothing to update")
		return
	}
	it, err := h.Store.UpdateItem(r.Context(), itemID, auth.UserID(r.Context()), updates)
	if err != nil {
		writeStoreError(h.Log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (h *WatchlistHandler) removeMovie(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid category id")
		return
	}
	itemID, ok := idParam(r, "itemId")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}
	if err := h.Store.RemoveItem(r.Context(), categoryID, itemID, auth.UserID(r.Context())); err != nil {
		writeStoreError(h.Log, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *WatchlistHandler) reorder(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid category id")
		return
	}
	type orderEntry struct {
		ItemID    uint `json:"item_id" validate:"required,gt=0"`
		SortOrder int  `json:"sort_order" validate:"gte=0"`
	}
	type bodyT struct {
		Items []orderEntry `json:"items" validate:"required,min=1,dive"`
	}
	var b bodyT
	if !decodeBody(w, r, &b) {
		return
	}
	if errs := validate.Map(b); errs != nil {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}
	order := make(map[uint]int, len(b.Items))
	for _, e := range b.Items {
		order[e.ItemID] = e.SortOrder
	}
	if err := h.Store.ReorderItems(r.Context(), id, auth.UserID(r.Context()), order); err != nil {
		writeStoreError(h.Log, w, err)
		return
	}
	c, err := h.Store.GetCategory(r.Context(), id)
	if err != nil {
		writeStoreError(h.Log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *WatchlistHandler) like(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid category id")
		return
	}
	liked, likesCount, err := h.Store.ToggleLike(r.Context(), id, auth.UserID(r.Context()))
	if err != nil {
		writeStoreError(h.Log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"liked": liked, "likes_count": likesCount})
}

func (h *WatchlistHandler) listPublic(w http.ResponseWriter, r *http.Request) {
	if cats, ok := h.FeedCache.Get("public"); ok {
		writeJSON(w, http.StatusOK, cats)
		return
	}
	cats, err := h.Store.ListPublicCategories(r.Context(), 50)
	if err != nil {
		writeStoreError(h.Log, w, err)
		return
	}
	h.FeedCache.Set("public", cats)
	writeJSON(w, http.StatusOK, cats)
}

func (h *WatchlistHandler) featured(w http.ResponseWriter, r *http.Request) {
	if cats, ok := h.FeedCache.Get("featured"); ok {
		writeJSON(w, http.StatusOK, cats)
		return
	}
	cats, err := h.Store.FeaturedCategories(r.Context(), 20)
	if err != nil {
		writeStoreError(h.Log, w, err)
		return
	}
	h.FeedCache.Set("featured", cats)
	writeJSON(w, http.StatusOK, cats)
}

package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Bram-G/SpecialCouscousBackEnd-sub000/internal/auth"
	"github.com/Bram-G/SpecialCouscousBackEnd-sub000/internal/models"
	"github.com/Bram-G/SpecialCouscousBackEnd-sub000/internal/store"
	"github.com/Bram-G/SpecialCouscousBackEnd-sub000/internal/tmdb"
	"github.com/Bram-G/SpecialCouscousBackEnd-sub000/internal/validate"
)

// maxCreditedCast caps how many cast rows are stored per selection.
const maxCreditedCast = 10

type MovieMondayHandler struct {
	Store *store.Store
	TMDB  *tmdb.Client
	Log   *zap.Logger
}

func NewMovieMondayHandler(s *store.Store, t *tmdb.Client, log *zap.Logger) *MovieMondayHandler {
	return &MovieMondayHandler{Store: s, TMDB: t, Log: log}
}

// Routes is mounted under /api/movie-monday in main.
func (h *MovieMondayHandler) Routes(r chi.Router) {
	r.Post("/create", h.create)
	r.Post("/add-movie", h.addMovie)
	r.Get("/watch-later", h.watchLater)
	r.Post("/watch-later", h.quickAdd)
	r.Get("/group/{groupId}", h.listForGroup)
	r.Get("/{date}", h.getByDate)
	r.Post("/{id}/set-winner", h.setWinner)
	r.Put("/{id}/event-details", h.eventDetails)
}

func (h *MovieMondayHandler) create(w http.ResponseWriter, r *http.Request) {
	cu := auth.FromContext(r.Context())
	type bodyT struct {
		Date         string `json:"date" validate:"required,datetime=2006-01-02"`
		GroupID      uint   `json:"group_id" validate:"required,gt=0"`
		PickerUserID uint   `json:"picker_user_id"`
		WeekTheme    string `json:"week_theme" validate:"max=200"`
	}
	var b bodyT
	if !decodeBody(w, r, &b) {
		return
	}
	if errs := validate.Map(b); errs != nil {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}
	if !cu.IsInGroup(b.GroupID) {
		writeError(w, http.StatusForbidden, "not a member of this group")
		return
	}
	date, _ := time.Parse("2006-01-02", b.Date)
	picker := b.PickerUserID
	if picker == 0 {
		picker = cu.User.ID
	} else if ok, err := h.Store.IsGroupMember(r.Context(), b.GroupID, picker); err != nil || !ok {
		if err != nil {
			writeStoreError(h.Log, w, err)
			return
		}
		writeError(w, http.StatusBadRequest, "picker must be a group member")
		return
	}
	mm := &models.MovieMonday{Date: date, GroupID: b.GroupID, PickerUserID: picker, WeekTheme: b.WeekTheme}
	if err := h.Store.CreateMovieMonday(r.Context(), mm); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			writeError(w, http.StatusConflict, "a movie monday already exists for this group and date")
			return
		}
		writeStoreError(h.Log, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, mm)
}

// addMovie fetches title/poster/genres and the credited cast and crew from
// TMDB, then appends the selection.
func (h *MovieMondayHandler) addMovie(w http.ResponseWriter, r *http.Request) {
	cu := auth.FromContext(r.Context())
	type bodyT struct {
		MovieMondayID uint  `json:"movie_monday_id" validate:"required,gt=0"`
		TmdbMovieID   int64 `json:"tmdb_movie_id" validate:"required,gt=0"`
	}
	var b bodyT
	if !decodeBody(w, r, &b) {
		return
	}
	if errs := validate.Map(b); errs != nil {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}
	mm, err := h.Store.GetMovieMonday(r.Context(), b.MovieMondayID)
	if err != nil {
		writeStoreError(h.Log, w, err)
		return
	}
	if !cu.IsInGroup(mm.GroupID) {
		writeError(w, http.StatusForbidden, "not a member of this group")
		return
	}
	mv, err := h.TMDB.GetMovie(r.Context(), b.TmdbMovieID)
	if err != nil {
		writeError(w, http.StatusBadGateway, "movie lookup failed")
		return
	}
	sel := &models.MovieSelection{
		MovieMondayID: b.MovieMondayID,
		TmdbMovieID:   b.TmdbMovieID,
		Title:         mv.Title,
		PosterPath:    mv.PosterPath,
		Genres:        mv.GenreNames(),
		ReleaseYear:   mv.ReleaseYear(),
	}
	if credits, err := h.TMDB.GetCredits(r.Context(), b.TmdbMovieID); err == nil {
		for i, c := range credits.Cast {
			if i >= maxCreditedCast {
				break
			}
			sel.Cast = append(sel.Cast, models.MovieCast{
				ActorID: c.ID, Name: c.Name, Character: c.Character,
				ProfilePath: c.ProfilePath, SortOrder: c.Order,
			})
		}
		for _, c := range credits.Crew {
			if c.Job == "Director" || c.Job == "Screenplay" || c.Job == "Writer" {
				sel.Crew = append(sel.Crew, models.MovieCrew{
					PersonID: c.ID, Name: c.Name, Job: c.Job, ProfilePath: c.ProfilePath,
				})
			}
		}
	} else {
		h.Log.Warn("credits lookup failed", zap.Int64("tmdb_id", b.TmdbMovieID), zap.Error(err))
	}
	if err := h.Store.AddSelection(r.Context(), sel); err != nil {
		writeStoreError(h.Log, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sel)
}

func (h *MovieMondayHandler) listForGroup(w http.ResponseWriter, r *http.Request) {
	groupID, ok := idParam(r, "groupId")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid group id")
		return
	}
	cu := auth.FromContext(r.Context())
	if !cu.IsInGroup(groupID) {
		writeError(w, http.StatusForbidden, "not a member of this group")
		return
	}
	mondays, err := h.Store.ListMovieMondaysForGroup(r.Context(), groupID)
	if err != nil {
		writeStoreError(h.Log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, mondays)
}

func (h *MovieMondayHandler) getByDate(w http.ResponseWriter, r *http.Request) {
	cu := auth.FromContext(r.Context())
	date, err := time.Parse("2006-01-02", chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	groupIDs := make([]uint, 0, len(cu.Groups))
	for _, g := range cu.Groups {
		groupIDs = append(groupIDs, g.ID)
	}
	if len(groupIDs) == 0 {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	mm, err := h.Store.GetMovieMondayByDate(r.Context(), date, groupIDs)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		writeStoreError(h.Log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, mm)
}

func (h *MovieMondayHandler) setWinner(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid movie monday id")
		return
	}
	type bodyT struct {
		SelectionID uint `json:"selection_id" validate:"required,gt=0"`
	}
	var b bodyT
	if !decodeBody(w, r, &b) {
		return
	}
	if errs := validate.Map(b); errs != nil {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}
	mm, err := h.Store.SetWinner(r.Context(), id, b.SelectionID, auth.UserID(r.Context()))
	if err != nil {
		writeStoreError(h.Log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, mm)
}

func (h *MovieMondayHandler) eventDetails(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid movie monday id")
		return
	}
	cu := auth.FromContext(r.Context())
	mm, err := h.Store.GetMovieMonday(r.Context(), id)
	if err != nil {
		writeStoreError(h.Log, w, err)
		return
	}
	if !cu.IsInGroup(mm.GroupID) {
		writeError(w, http.StatusForbidden, "not a member of this group")
		return
	}
	type bodyT struct {
		Meals     []string `json:"meals"`
		Cocktails []string `json:"cocktails"`
		Desserts  []string `json:"desserts"`
		Notes     string   `json:"notes" validate:"max=2000"`
	}
	var b bodyT
	if !decodeBody(w, r, &b) {
		return
	}
	if errs := validate.Map(b); errs != nil {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}
	details := &models.MovieMondayEventDetails{
		MovieMondayID: id,
		Meals:         b.Meals,
		Cocktails:     b.Cocktails,
		Desserts:      b.Desserts,
		Notes:         b.Notes,
	}
	if err := h.Store.UpsertEventDetails(r.Context(), details); err != nil {
		writeStoreError(h.Log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

// watchLater returns the caller's default category.
func (h *MovieMondayHandler) watchLater(w http.ResponseWriter, r *http.Request) {
	def, err := h.Store.DefaultCategory(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeStoreError(h.Log, w, err)
		return
	}
	c, err := h.Store.GetCategory(r.Context(), def.ID)
	if err != nil {
		writeStoreError(h.Log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// quickAdd drops a movie onto the caller's default category; a repeat add
// returns the existing item with alreadyExists set.
func (h *MovieMondayHandler) quickAdd(w http.ResponseWriter, r *http.Request) {
	type bodyT struct {
		TmdbMovieID int64 `json:"tmdb_movie_id" validate:"required,gt=0"`
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
		TmdbMovieID: b.TmdbMovieID,
		Title:       mv.Title,
		PosterPath:  mv.PosterPath,
	}
	item, alreadyExists, err := h.Store.QuickAdd(r.Context(), auth.UserID(r.Context()), it)
	if err != nil {
		writeStoreError(h.Log, w, err)
		return
	}
	status := http.StatusCreated
	if alreadyExists {
		status = http.StatusOK
	}
	writeJSON(w, status, map[string]any{"item": item, "alreadyExists": alreadyExists})
}

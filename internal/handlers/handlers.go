package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Bram-G/SpecialCouscousBackEnd-sub000/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeStoreError maps store sentinels onto the HTTP taxonomy. Anything
// unrecognized is logged and returned as a generic 500.
func writeStoreError(log *zap.Logger, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrDuplicate),
		errors.Is(err, store.ErrDuplicateItem),
		errors.Is(err, store.ErrDuplicateSelection):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrForbidden),
		errors.Is(err, store.ErrNotGroupOwner),
		errors.Is(err, store.ErrNotPicker):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, store.ErrAlreadyMember),
		errors.Is(err, store.ErrOwnerCannotLeave),
		errors.Is(err, store.ErrCannotRemoveSelf),
		errors.Is(err, store.ErrNotGroupMember),
		errors.Is(err, store.ErrSelectionLimit),
		errors.Is(err, store.ErrLastCategory),
		errors.Is(err, store.ErrDefaultCategory),
		errors.Is(err, store.ErrInviteExpired),
		errors.Is(err, store.ErrInviteResolved):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Error("store error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

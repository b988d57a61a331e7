package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Bram-G/SpecialCouscousBackEnd-sub000/internal/auth"
	"github.com/Bram-G/SpecialCouscousBackEnd-sub000/internal/email"
	"github.com/Bram-G/SpecialCouscousBackEnd-sub000/internal/models"
	"github.com/Bram-G/SpecialCouscousBackEnd-sub000/internal/store"
	"github.com/Bram-G/SpecialCouscousBackEnd-sub000/internal/validate"
)

type AuthHandler struct {
	Store  *store.Store
	Tokens *auth.Manager
	Mailer email.Mailer
	Log    *zap.Logger
}

func NewAuthHandler(s *store.Store, tokens *auth.Manager, mailer email.Mailer, log *zap.Logger) *AuthHandler {
	return &AuthHandler{Store: s, Tokens: tokens, Mailer: mailer, Log: log}
}

// Routes is mounted under /auth in main.
func (h *AuthHandler) Routes(r chi.Router) {
	r.Post("/register", h.register)
	r.Get("/verify-email/{token}", h.verifyEmail)
	r.Post("/login", h.login)
	r.Post("/forgot-password", h.forgotPassword)
	r.Post("/reset-password/{token}", h.resetPassword)
}

type userSummary struct {
	ID         uint   `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	IsVerified bool   `json:"is_verified"`
}

func summarize(u *models.User) userSummary {
	return userSummary{ID: u.ID, Username: u.Username, Email: u.Email, IsVerified: u.IsVerified}
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	type bodyT struct {
		Username string `json:"username" validate:"required,min=3,max=30"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=8,max=72"`
	}
	var b bodyT
	if !decodeBody(w, r, &b) {
		return
	}
	if errs := validate.Map(b); errs != nil {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(b.Password), bcrypt.DefaultCost)
	if err != nil {
		h.Log.Error("hash password", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	expiry := time.Now().Add(24 * time.Hour)
	u := &models.User{
		Username:           b.Username,
		Email:              b.Email,
		PasswordHash:       string(hash),
		VerificationToken:  uuid.NewString(),
		VerificationExpiry: &expiry,
	}
	if err := h.Store.CreateUser(r.Context(), u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			writeError(w, http.StatusConflict, "username or email already taken")
			return
		}
		writeStoreError(h.Log, w, err)
		return
	}
	if err := h.Mailer.SendVerification(r.Context(), u.Email, u.VerificationToken); err != nil {
		// the account exists; the user can request another mail
		h.Log.Error("send verification mail", zap.Error(err), zap.String("email", u.Email))
	}
	writeJSON(w, http.StatusCreated, summarize(u))
}

func (h *AuthHandler) verifyEmail(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	u, err := h.Store.GetUserByVerificationToken(r.Context(), token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusBadRequest, "invalid or expired verification link")
			return
		}
		writeStoreError(h.Log, w, err)
		return
	}
	if u.IsVerified {
		writeJSON(w, http.StatusOK, map[string]string{"message": "email already verified"})
		return
	}
	if u.VerificationExpiry != nil && time.Now().After(*u.VerificationExpiry) {
		writeError(w, http.StatusBadRequest, "invalid or expired verification link")
		return
	}
	if err := h.Store.MarkVerified(r.Context(), u.ID); err != nil {
		writeStoreError(h.Log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "email verified"})
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	type bodyT struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	var b bodyT
	if !decodeBody(w, r, &b) {
		return
	}
	if errs := validate.Map(b); errs != nil {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}
	u, err := h.Store.GetUserByEmail(r.Context(), b.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		writeStoreError(h.Log, w, err)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(b.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if !u.IsVerified {
		writeJSON(w, http.StatusForbidden, map[string]any{
			"error":             "email not verified",
			"needsVerification": true,
		})
		return
	}
	token, err := h.Tokens.IssueToken(u.ID)
	if err != nil {
		h.Log.Error("issue token", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": token, "user": summarize(u)})
}

func (h *AuthHandler) forgotPassword(w http.ResponseWriter, r *http.Request) {
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
	// Same response whether or not the account exists.
	ack := map[string]string{"message": "if that account exists, a reset link has been sent"}
	u, err := h.Store.GetUserByEmail(r.Context(), b.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusOK, ack)
			return
		}
		writeStoreError(h.Log, w, err)
		return
	}
	token := uuid.NewString()
	if err := h.Store.SetResetToken(r.Context(), u.ID, token, time.Now().Add(time.Hour)); err != nil {
		writeStoreError(h.Log, w, err)
		return
	}
	if err := h.Mailer.SendPasswordReset(r.Context(), u.Email, token); err != nil {
		h.Log.Error("send reset mail", zap.Error(err), zap.String("email", u.Email))
	}
	writeJSON(w, http.StatusOK, ack)
}

func (h *AuthHandler) resetPassword(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	type bodyT struct {
		Password string `json:"password" validate:"required,min=8,max=72"`
	}
	var b bodyT
	if !decodeBody(w, r, &b) {
		return
	}
	if errs := validate.Map(b); errs != nil {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}
	u, err := h.Store.GetUserByResetToken(r.Context(), token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusBadRequest, "invalid or expired reset link")
			return
		}
		writeStoreError(h.Log, w, err)
		return
	}
	if u.ResetExpiry == nil || time.Now().After(*u.ResetExpiry) {
		writeError(w, http.StatusBadRequest, "invalid or expired reset link")
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(b.Password), bcrypt.DefaultCost)
	if err != nil {
		h.Log.Error("hash password", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if err := h.Store.UpdatePassword(r.Context(), u.ID, string(hash)); err != nil {
		writeStoreError(h.Log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}

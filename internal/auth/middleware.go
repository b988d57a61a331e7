package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/Bram-G/SpecialCouscousBackEnd-sub000/internal/models"
)

type ctxKeyUser struct{}

// CurrentUser is the loaded user plus its group memberships, attached to the
// request context by Required/Optional.
type CurrentUser struct {
	User   *models.User
	Groups []models.Group
}

func (c *CurrentUser) IsInGroup(groupID uint) bool {
	for _, g := range c.Groups {
		if g.ID == groupID {
			return true
		}
	}
	return false
}

func (c *CurrentUser) IsGroupOwner(groupID uint) bool {
	for _, g := range c.Groups {
		if g.ID == groupID {
			return g.CreatedByID == c.User.ID
		}
	}
	return false
}

// UserLoader fetches a user with its group memberships.
type UserLoader interface {
	GetUserWithGroups(ctx context.Context, id uint) (*models.User, []models.Group, error)
}

// Middleware verifies session tokens and attaches the caller to the context.
type Middleware struct {
	Manager *Manager
	Users   UserLoader
}

func tokenFromRequest(r *http.Request) string {
	authz := r.Header.Get("Authorization")
	if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
		return strings.TrimSpace(authz[len("bearer "):])
	}
	if c, err := r.Cookie("token"); err == nil {
		return c.Value
	}
	return ""
}

func (m *Middleware) resolve(r *http.Request) (*CurrentUser, error) {
	uid, err := m.Manager.VerifyToken(tokenFromRequest(r))
	if err != nil {
		return nil, err
	}
	u, groups, err := m.Users.GetUserWithGroups(r.Context(), uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserMissing
		}
		return nil, err
	}
	return &CurrentUser{User: u, Groups: groups}, nil
}

// Required rejects requests without a valid token.
func (m *Middleware) Required(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cu, err := m.resolve(r)
		if err != nil {
			status := http.StatusUnauthorized
			msg := err.Error()
			switch err {
			case ErrNoToken, ErrBadSignature, ErrExpired, ErrUserMissing:
			default:
				status = http.StatusInternalServerError
				msg = "internal error"
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyUser{}, cu)))
	})
}

// Optional performs the same lookup but never rejects; anonymous callers pass
// through with no attached user.
func (m *Middleware) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cu, err := m.resolve(r); err == nil {
			r = r.WithContext(context.WithValue(r.Context(), ctxKeyUser{}, cu))
		}
		next.ServeHTTP(w, r)
	})
}

// FromContext returns the attached caller, nil for anonymous requests.
func FromContext(ctx context.Context) *CurrentUser {
	if v, ok := ctx.Value(ctxKeyUser{}).(*CurrentUser); ok {
		return v
	}
	return nil
}

// UserID returns the caller's id, 0 for anonymous requests.
func UserID(ctx context.Context) uint {
	if cu := FromContext(ctx); cu != nil {
		return cu.User.ID
	}
	return 0
}

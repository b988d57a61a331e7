package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoToken      = errors.New("No token provided")
	ErrBadSignature = errors.New("Token signature is invalid")
	ErrExpired      = errors.New("Token expired")
	ErrUserMissing  = errors.New("User not found")
)

type userClaims struct {
	UserID uint `json:"user_id"`
	jwt.RegisteredClaims
}

type inviteClaims struct {
	GroupID   uint   `json:"group_id"`
	GroupName string `json:"group_name"`
	jwt.RegisteredClaims
}

// Manager signs and verifies the HS256 tokens used for sessions and group
// invite links. The secret is injected at startup.
type Manager struct {
	secret    []byte
	tokenTTL  time.Duration
	inviteTTL time.Duration
}

func NewManager(secret string, tokenTTL time.Duration) (*Manager, error) {
	if secret == "" {
		return nil, errors.New("auth: empty token secret")
	}
	if tokenTTL <= 0 {
		tokenTTL = 72 * time.Hour
	}
	return &Manager{secret: []byte(secret), tokenTTL: tokenTTL, inviteTTL: 7 * 24 * time.Hour}, nil
}

func (m *Manager) keyFunc(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected method: %v", token.Header["alg"])
	}
	return m.secret, nil
}

// IssueToken returns a signed session token embedding the user id.
func (m *Manager) IssueToken(userID uint) (string, error) {
	now := time.Now()
	claims := &userClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// VerifyToken returns the embedded user id or one of the sentinel errors.
func (m *Manager) VerifyToken(token string) (uint, error) {
	if token == "" {
		return 0, ErrNoToken
	}
	var claims userClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, m.keyFunc)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return 0, ErrExpired
	case err != nil:
		return 0, ErrBadSignature
	case !parsed.Valid || claims.UserID == 0:
		return 0, ErrBadSignature
	}
	return claims.UserID, nil
}

// IssueInviteToken returns a 7-day token redeemable for group membership.
func (m *Manager) IssueInviteToken(groupID uint, groupName string) (string, error) {
	now := time.Now()
	claims := &inviteClaims{
		GroupID:   groupID,
		GroupName: groupName,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.inviteTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// VerifyInviteToken returns the group id and name embedded in an invite link.
func (m *Manager) VerifyInviteToken(token string) (uint, string, error) {
	if token == "" {
		return 0, "", ErrNoToken
	}
	var claims inviteClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, m.keyFunc)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return 0, "", ErrExpired
	case err != nil:
		return 0, "", ErrBadSignature
	case !parsed.Valid || claims.GroupID == 0:
		return 0, "", ErrBadSignature
	}
	return claims.GroupID, claims.GroupName, nil
}

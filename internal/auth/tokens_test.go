package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	m, err := NewManager("test-secret", time.Hour)
	require.NoError(t, err)

	token, err := m.IssueToken(42)
	require.NoError(t, err)

	userID, err := m.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)
}

func TestVerifyTokenEmpty(t *testing.T) {
	m, err := NewManager("test-secret", time.Hour)
	require.NoError(t, err)

	_, err = m.VerifyToken("")
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestVerifyTokenExpired(t *testing.T) {
	m, err := NewManager("test-secret", time.Millisecond)
	require.NoError(t, err)

	token, err := m.IssueToken(1)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	_, err = m.VerifyToken(token)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	signer, err := NewManager("secret-one", time.Hour)
	require.NoError(t, err)
	verifier, err := NewManager("secret-two", time.Hour)
	require.NoError(t, err)

	token, err := signer.IssueToken(1)
	require.NoError(t, err)

	_, err = verifier.VerifyToken(token)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestVerifyTokenGarbage(t *testing.T) {
	m, err := NewManager("test-secret", time.Hour)
	require.NoError(t, err)

	_, err = m.VerifyToken("not.a.token")
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestInviteTokenRoundTrip(t *testing.T) {
	m, err := NewManager("test-secret", time.Hour)
	require.NoError(t, err)

	token, err := m.IssueInviteToken(7, "Film Club")
	require.NoError(t, err)

	groupID, groupName, err := m.VerifyInviteToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), groupID)
	assert.Equal(t, "Film Club", groupName)
}

func TestInviteTokenNotValidAsSession(t *testing.T) {
	m, err := NewManager("test-secret", time.Hour)
	require.NoError(t, err)

	token, err := m.IssueInviteToken(7, "Film Club")
	require.NoError(t, err)

	// invite tokens carry no user_id claim
	_, err = m.VerifyToken(token)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestNewManagerRejectsEmptySecret(t *testing.T) {
	_, err := NewManager("", time.Hour)
	assert.Error(t, err)
}

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bram-G/SpecialCouscousBackEnd-sub000/internal/models"
)

func TestCreateGroupAddsOwnerAsMember(t *testing.T) {
	s := newTestStore(t)
	u := seedUser(t, s)
	g := seedGroup(t, s, u, "Film Club")

	assert.Equal(t, u.ID, g.CreatedByID)
	member, err := s.IsGroupMember(context.Background(), g.ID, u.ID)
	require.NoError(t, err)
	assert.True(t, member)
}

func TestAddGroupMemberRejectsRepeatJoin(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := seedUser(t, s)
	joiner := seedUser(t, s)
	g := seedGroup(t, s, owner, "Film Club")

	require.NoError(t, s.AddGroupMember(ctx, g.ID, joiner.ID))
	assert.ErrorIs(t, s.AddGroupMember(ctx, g.ID, joiner.ID), ErrAlreadyMember)
}

func TestLeaveGroupRules(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := seedUser(t, s)
	member := seedUser(t, s)
	g := seedGroup(t, s, owner, "Film Club")
	require.NoError(t, s.AddGroupMember(ctx, g.ID, member.ID))

	assert.ErrorIs(t, s.LeaveGroup(ctx, g.ID, owner.ID), ErrOwnerCannotLeave)
	assert.NoError(t, s.LeaveGroup(ctx, g.ID, member.ID))
	assert.ErrorIs(t, s.LeaveGroup(ctx, g.ID, member.ID), ErrNotGroupMember)
}

func TestRemoveGroupMemberRules(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := seedUser(t, s)
	member := seedUser(t, s)
	outsider := seedUser(t, s)
	g := seedGroup(t, s, owner, "Film Club")
	require.NoError(t, s.AddGroupMember(ctx, g.ID, member.ID))

	assert.ErrorIs(t, s.RemoveGroupMember(ctx, g.ID, member.ID, owner.ID), ErrNotGroupOwner)
	assert.ErrorIs(t, s.RemoveGroupMember(ctx, g.ID, owner.ID, owner.ID), ErrCannotRemoveSelf)
	assert.ErrorIs(t, s.RemoveGroupMember(ctx, g.ID, owner.ID, outsider.ID), ErrNotGroupMember)
	assert.NoError(t, s.RemoveGroupMember(ctx, g.ID, owner.ID, member.ID))
}

func TestPublishDerivesUniqueSlug(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := seedUser(t, s)
	first := seedGroup(t, s, u, "Film Club")
	second := seedGroup(t, s, u, "Film Club")

	got, err := s.SetGroupVisibility(ctx, first.ID, u.ID, true)
	require.NoError(t, err)
	assert.Equal(t, "film-club", got.Slug)

	got, err = s.SetGroupVisibility(ctx, second.ID, u.ID, true)
	require.NoError(t, err)
	assert.Equal(t, "film-club-1", got.Slug)

	// unpublishing keeps the slug; republishing does not mint a new one
	got, err = s.SetGroupVisibility(ctx, first.ID, u.ID, false)
	require.NoError(t, err)
	assert.Equal(t, "film-club", got.Slug)

	pub, err := s.GetPublicGroupBySlug(ctx, "film-club-1")
	require.NoError(t, err)
	assert.Equal(t, second.ID, pub.ID)
	_, err = s.GetPublicGroupBySlug(ctx, "film-club")
	assert.Error(t, err)
}

func TestGroupInviteLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := seedUser(t, s)
	invitee := seedUser(t, s)
	g := seedGroup(t, s, owner, "Film Club")

	inv := &models.GroupInvite{GroupID: g.ID, InvitedByID: owner.ID, InvitedUserID: invitee.ID}
	require.NoError(t, s.CreateGroupInvite(ctx, inv))
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), inv.ExpiresAt, time.Minute)

	// a second pending invite for the same pair is rejected
	again := &models.GroupInvite{GroupID: g.ID, InvitedByID: owner.ID, InvitedUserID: invitee.ID}
	assert.ErrorIs(t, s.CreateGroupInvite(ctx, again), ErrDuplicate)

	got, err := s.RespondToInvite(ctx, inv.ID, invitee.ID, true)
	require.NoError(t, err)
	assert.Equal(t, models.InviteAccepted, got.Status)

	member, err := s.IsGroupMember(ctx, g.ID, invitee.ID)
	require.NoError(t, err)
	assert.True(t, member)

	_, err = s.RespondToInvite(ctx, inv.ID, invitee.ID, true)
	assert.ErrorIs(t, err, ErrInviteResolved)
}

func TestExpiredInviteCannotBeAccepted(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := seedUser(t, s)
	invitee := seedUser(t, s)
	g := seedGroup(t, s, owner, "Film Club")

	inv := &models.GroupInvite{
		GroupID:       g.ID,
		InvitedByID:   owner.ID,
		InvitedUserID: invitee.ID,
		ExpiresAt:     time.Now().Add(-time.Hour),
	}
	require.NoError(t, s.DB.Create(inv).Error)

	_, err := s.RespondToInvite(ctx, inv.ID, invitee.ID, true)
	assert.ErrorIs(t, err, ErrInviteExpired)
}

func TestInviteToExistingMemberRejected(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := seedUser(t, s)
	g := seedGroup(t, s, owner, "Film Club")

	inv := &models.GroupInvite{GroupID: g.ID, InvitedByID: owner.ID, InvitedUserID: owner.ID}
	assert.ErrorIs(t, s.CreateGroupInvite(ctx, inv), ErrAlreadyMember)
}

package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Wal-20/roomchat/internal/models"
	"github.com/Wal-20/roomchat/internal/testutil"
	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type invitationFixture struct {
	rooms   *RoomService
	invites *InvitationService
	db      *gorm.DB
	room    *models.Room
	admin   uint
	guest   uint
	other   uint
}

func newInvitationFixture(t *testing.T) invitationFixture {
	t.Helper()
	store, db := testutil.NewStore(t)
	log := testutil.Logger()
	f := invitationFixture{
		rooms:   NewRoomService(store, cache.New(time.Minute, time.Minute), log),
		invites: NewInvitationService(store, log),
		db:      db,
	}
	users := testutil.CreateUsers(t, db, "alice", "bob", "carol")
	f.admin, f.guest, f.other = users[0].ID, users[1].ID, users[2].ID
	room, err := f.rooms.CreateRoom(context.Background(), CreateRoomInput{Name: "Secret", IsPrivate: true, CreatorID: f.admin})
	require.NoError(t, err)
	f.room = room
	return f
}

func (f invitationFixture) pendingCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.Invitation{}).
		Where("room_id = ? AND invitee_id = ? AND status = ?", f.room.ID, f.guest, models.InvitationPending).
		Count(&n).Error)
	return n
}

func TestInvitationService_InviteToRoom(t *testing.T) {
	ctx := context.Background()

	t.Run("should reject a second pending invite for the same invitee", func(t *testing.T) {
		req := require.New(t)
		f := newInvitationFixture(t)

		inv, err := f.invites.InviteToRoom(ctx, f.room.ID, f.admin, f.guest)
		req.NoError(err)
		req.Equal(models.InvitationPending, inv.Status)
		req.NotNil(inv.Room)
		req.Equal("Secret", inv.Room.Name)

		_, err = f.invites.InviteToRoom(ctx, f.room.ID, f.admin, f.guest)
		req.ErrorIs(err, ErrInvitationPending)
		req.EqualValues(1, f.pendingCount(t))
	})

	t.Run("should require the inviter to be admin", func(t *testing.T) {
		req := require.New(t)
		f := newInvitationFixture(t)

		_, err := f.invites.InviteToRoom(ctx, f.room.ID, f.other, f.guest)
		req.ErrorIs(err, ErrNotAdmin)
		req.Zero(f.pendingCount(t))
	})

	t.Run("should reject members and unknown users", func(t *testing.T) {
		req := require.New(t)
		f := newInvitationFixture(t)

		_, err := f.invites.InviteToRoom(ctx, f.room.ID, f.admin, f.admin)
		req.ErrorIs(err, ErrAlreadyMember)
		_, err = f.invites.InviteToRoom(ctx, f.room.ID, f.admin, 999)
		req.ErrorIs(err, ErrUserNotFound)
		_, err = f.invites.InviteToRoom(ctx, 999, f.admin, f.guest)
		req.ErrorIs(err, ErrRoomNotFound)
	})

	t.Run("should insert a single pending row under concurrent invites", func(t *testing.T) {
		req := require.New(t)
		f := newInvitationFixture(t)

		const n = 6
		errs := make([]error, n)
		var wg sync.WaitGroup
		for i := range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, errs[i] = f.invites.InviteToRoom(ctx, f.room.ID, f.admin, f.guest)
			}()
		}
		wg.Wait()

		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
				continue
			}
			req.ErrorIs(err, ErrInvitationPending)
		}
		req.Equal(1, succeeded)
		req.EqualValues(1, f.pendingCount(t))
	})

	t.Run("should allow a new invite once the previous one is resolved", func(t *testing.T) {
		req := require.New(t)
		f := newInvitationFixture(t)

		inv, err := f.invites.InviteToRoom(ctx, f.room.ID, f.admin, f.guest)
		req.NoError(err)
		_, err = f.invites.DeclineInvitation(ctx, inv.ID, f.guest)
		req.NoError(err)

		again, err := f.invites.InviteToRoom(ctx, f.room.ID, f.admin, f.guest)
		req.NoError(err)
		req.NotEqual(inv.ID, again.ID)
	})
}

func TestInvitationService_Decline(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newInvitationFixture(t)

	inv, err := f.invites.InviteToRoom(ctx, f.room.ID, f.admin, f.guest)
	req.NoError(err)

	declined, err := f.invites.DeclineInvitation(ctx, inv.ID, f.guest)
	req.NoError(err)
	req.Equal(models.InvitationDeclined, declined.Status)
	req.NotNil(declined.RespondedAt)

	stored, err := f.invites.GetInvitation(ctx, inv.ID, f.guest)
	req.NoError(err)
	req.Equal(models.InvitationDeclined, stored.Status)
	req.NotNil(stored.RespondedAt)

	member, err := f.rooms.IsRoomMember(ctx, f.room.ID, f.guest)
	req.NoError(err)
	req.False(member)

	// Accepting a declined invitation changes nothing
	_, err = f.invites.AcceptInvitation(ctx, inv.ID, f.guest)
	req.ErrorIs(err, ErrInvitationResolved)
	stored, err = f.invites.GetInvitation(ctx, inv.ID, f.guest)
	req.NoError(err)
	req.Equal(models.InvitationDeclined, stored.Status)
	member, err = f.rooms.IsRoomMember(ctx, f.room.ID, f.guest)
	req.NoError(err)
	req.False(member)
}

func TestInvitationService_Accept(t *testing.T) {
	ctx := context.Background()

	t.Run("should accept and add a regular member in one step", func(t *testing.T) {
		req := require.New(t)
		f := newInvitationFixture(t)
		inv, err := f.invites.InviteToRoom(ctx, f.room.ID, f.admin, f.guest)
		req.NoError(err)

		res, err := f.invites.AcceptInvitation(ctx, inv.ID, f.guest)
		req.NoError(err)
		req.False(res.AlreadyMember)
		req.Equal(models.InvitationAccepted, res.Invitation.Status)
		req.NotNil(res.Invitation.RespondedAt)

		member, err := f.rooms.IsRoomMember(ctx, f.room.ID, f.guest)
		req.NoError(err)
		req.True(member)
		admin, err := f.rooms.IsRoomAdmin(ctx, f.room.ID, f.guest)
		req.NoError(err)
		req.False(admin)

		_, err = f.invites.AcceptInvitation(ctx, inv.ID, f.guest)
		req.ErrorIs(err, ErrInvitationResolved)
	})

	t.Run("should hide foreign invitations", func(t *testing.T) {
		req := require.New(t)
		f := newInvitationFixture(t)
		inv, err := f.invites.InviteToRoom(ctx, f.room.ID, f.admin, f.guest)
		req.NoError(err)

		_, err = f.invites.AcceptInvitation(ctx, inv.ID, f.other)
		req.ErrorIs(err, ErrInvitationNotFound)
		_, err = f.invites.DeclineInvitation(ctx, inv.ID, f.other)
		req.ErrorIs(err, ErrInvitationNotFound)
		_, err = f.invites.AcceptInvitation(ctx, 999, f.guest)
		req.ErrorIs(err, ErrInvitationNotFound)
		req.EqualValues(1, f.pendingCount(t))
	})

	t.Run("should succeed without a duplicate row when already a member", func(t *testing.T) {
		req := require.New(t)
		f := newInvitationFixture(t)
		inv, err := f.invites.InviteToRoom(ctx, f.room.ID, f.admin, f.guest)
		req.NoError(err)
		// Given the guest was added by another path while the invitation was pending
		req.NoError(f.db.Create(&models.Member{RoomID: f.room.ID, UserID: f.guest}).Error)

		res, err := f.invites.AcceptInvitation(ctx, inv.ID, f.guest)
		req.NoError(err)
		req.True(res.AlreadyMember)

		total, _ := countMembers(t, f.db, f.room.ID)
		req.EqualValues(2, total)
	})
}

func TestInvitationService_Listing(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newInvitationFixture(t)
	second, err := f.rooms.CreateRoom(ctx, CreateRoomInput{Name: "Vault", IsPrivate: true, CreatorID: f.admin})
	req.NoError(err)

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	f.invites.now = func() time.Time { return base }
	first, err := f.invites.InviteToRoom(ctx, f.room.ID, f.admin, f.guest)
	req.NoError(err)
	f.invites.now = func() time.Time { return base.Add(time.Hour) }
	latest, err := f.invites.InviteToRoom(ctx, second.ID, f.admin, f.guest)
	req.NoError(err)

	pending, err := f.invites.GetPendingInvitations(ctx, f.guest)
	req.NoError(err)
	req.Len(pending, 2)
	req.Equal(latest.ID, pending[0].ID)
	req.Equal(first.ID, pending[1].ID)
	req.NotNil(pending[0].Inviter)
	req.Equal("alice", pending[0].Inviter.Name)

	_, err = f.invites.GetInvitation(ctx, first.ID, f.other)
	req.ErrorIs(err, ErrInvitationNotFound)
}

func TestInvitationService_ExpireStale(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newInvitationFixture(t)

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	f.invites.now = func() time.Time { return base }
	stale, err := f.invites.InviteToRoom(ctx, f.room.ID, f.admin, f.guest)
	req.NoError(err)
	f.invites.now = func() time.Time { return base.Add(47 * time.Hour) }
	fresh, err := f.invites.InviteToRoom(ctx, f.room.ID, f.admin, f.other)
	req.NoError(err)

	f.invites.now = func() time.Time { return base.Add(72 * time.Hour) }
	n, err := f.invites.ExpireStale(ctx, 48*time.Hour)
	req.NoError(err)
	req.EqualValues(1, n)

	got, err := f.invites.GetInvitation(ctx, stale.ID, f.guest)
	req.NoError(err)
	req.Equal(models.InvitationExpired, got.Status)
	req.NotNil(got.RespondedAt)
	_, err = f.invites.AcceptInvitation(ctx, stale.ID, f.guest)
	req.ErrorIs(err, ErrInvitationResolved)

	got, err = f.invites.GetInvitation(ctx, fresh.ID, f.other)
	req.NoError(err)
	req.Equal(models.InvitationPending, got.Status)

	// The expired row no longer blocks a new invitation
	_, err = f.invites.InviteToRoom(ctx, f.room.ID, f.admin, f.guest)
	req.NoError(err)
}

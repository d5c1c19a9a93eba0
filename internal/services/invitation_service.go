package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/Wal-20/roomchat/internal/models"
	"github.com/Wal-20/roomchat/internal/repositories"
)

type InvitationService struct {
	store *repositories.Store
	log   *slog.Logger
	now   func() time.Time
}

func NewInvitationService(store *repositories.Store, log *slog.Logger) *InvitationService {
	return &InvitationService{
		store: store,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// AcceptResult is a successful accept. AlreadyMember is set when the invitee had
// joined the room by another path and no membership row was added.
type AcceptResult struct {
	Invitation    *models.Invitation
	AlreadyMember bool
}

// InviteToRoom records a pending invitation from a room admin.
func (s *InvitationService) InviteToRoom(ctx context.Context, roomID, inviterID, inviteeID uint) (*models.Invitation, error) {
	var inv *models.Invitation
	err := s.store.Transaction(ctx, func(r repositories.Repos) error {
		if _, err := r.Rooms.FindByID(roomID); err != nil {
			return notFound(err, ErrRoomNotFound)
		}
		admin, err := r.Members.IsAdmin(roomID, inviterID)
		if err != nil {
			return err
		}
		if !admin {
			return ErrNotAdmin
		}
		if _, err := r.Users.FindByID(inviteeID); err != nil {
			return notFound(err, ErrUserNotFound)
		}
		member, err := r.Members.Exists(roomID, inviteeID)
		if err != nil {
			return err
		}
		if member {
			return ErrAlreadyMember
		}
		pending, err := r.Invitations.HasPending(roomID, inviteeID)
		if err != nil {
			return err
		}
		if pending {
			return ErrInvitationPending
		}

		created := &models.Invitation{RoomID: roomID, InviterID: inviterID, InviteeID: inviteeID, CreatedAt: s.now()}
		ok, err := r.Invitations.CreatePending(created)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvitationPending
		}
		inv, err = r.Invitations.FindByID(created.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Invitation sent", "invitation_id", inv.ID, "room_id", roomID, "inviter_id", inviterID, "invitee_id", inviteeID)
	return inv, nil
}

// AcceptInvitation resolves the invitation and adds the invitee to the room together.
func (s *InvitationService) AcceptInvitation(ctx context.Context, invitationID, userID uint) (AcceptResult, error) {
	var res AcceptResult
	err := s.store.Transaction(ctx, func(r repositories.Repos) error {
		inv, err := s.pendingFor(r, invitationID, userID)
		if err != nil {
			return err
		}
		if _, err := r.Rooms.LockByID(inv.RoomID); err != nil {
			return notFound(err, ErrRoomNotFound)
		}
		at := s.now()
		ok, err := r.Invitations.Resolve(inv.ID, models.InvitationAccepted, at)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvitationResolved
		}
		inv.Status = models.InvitationAccepted
		inv.RespondedAt = &at
		res = AcceptResult{Invitation: inv}

		exists, err := r.Members.Exists(inv.RoomID, userID)
		if err != nil {
			return err
		}
		if exists {
			res.AlreadyMember = true
			return nil
		}
		created, err := r.Members.CreateIfAbsent(&models.Member{RoomID: inv.RoomID, UserID: userID, JoinedAt: at})
		if err != nil {
			return err
		}
		res.AlreadyMember = !created
		return nil
	})
	if err != nil {
		return AcceptResult{}, err
	}
	s.log.Info("Invitation accepted", "invitation_id", invitationID, "room_id", res.Invitation.RoomID, "user_id", userID, "already_member", res.AlreadyMember)
	return res, nil
}

func (s *InvitationService) DeclineInvitation(ctx context.Context, invitationID, userID uint) (*models.Invitation, error) {
	var inv *models.Invitation
	err := s.store.Transaction(ctx, func(r repositories.Repos) error {
		var err error
		inv, err = s.pendingFor(r, invitationID, userID)
		if err != nil {
			return err
		}
		at := s.now()
		ok, err := r.Invitations.Resolve(inv.ID, models.InvitationDeclined, at)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvitationResolved
		}
		inv.Status = models.InvitationDeclined
		inv.RespondedAt = &at
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Invitation declined", "invitation_id", invitationID, "user_id", userID)
	return inv, nil
}

// pendingFor loads an invitation addressed to userID that is still pending. A foreign
// invitation reads as not found.
func (s *InvitationService) pendingFor(r repositories.Repos, invitationID, userID uint) (*models.Invitation, error) {
	inv, err := r.Invitations.FindByID(invitationID)
	if err != nil {
		return nil, notFound(err, ErrInvitationNotFound)
	}
	if inv.InviteeID != userID {
		return nil, ErrInvitationNotFound
	}
	if inv.Status.Terminal() {
		return nil, ErrInvitationResolved
	}
	return inv, nil
}

// GetPendingInvitations lists the user's pending invitations, newest first.
func (s *InvitationService) GetPendingInvitations(ctx context.Context, userID uint) ([]models.Invitation, error) {
	var invs []models.Invitation
	err := s.store.View(ctx, func(r repositories.Repos) error {
		var err error
		invs, err = r.Invitations.ListPending(userID)
		return err
	})
	return invs, err
}

// GetInvitation returns an invitation visible to userID as its invitee or inviter.
func (s *InvitationService) GetInvitation(ctx context.Context, invitationID, userID uint) (*models.Invitation, error) {
	var inv *models.Invitation
	err := s.store.View(ctx, func(r repositories.Repos) error {
		var err error
		inv, err = r.Invitations.FindByID(invitationID)
		if err != nil {
			return notFound(err, ErrInvitationNotFound)
		}
		if inv.InviteeID != userID && inv.InviterID != userID {
			return ErrInvitationNotFound
		}
		return nil
	})
	return inv, err
}

// ExpireStale moves invitations pending for longer than ttl to Expired.
func (s *InvitationService) ExpireStale(ctx context.Context, ttl time.Duration) (int64, error) {
	now := s.now()
	var n int64
	err := s.store.Transaction(ctx, func(r repositories.Repos) error {
		var err error
		n, err = r.Invitations.ExpireBefore(now.Add(-ttl), now)
		return err
	})
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info("Expired stale invitations", "count", n)
	}
	return n, nil
}

package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Wal-20/roomchat/internal/models"
	"github.com/Wal-20/roomchat/internal/repositories"
	"github.com/go-playground/validator/v10"
	"github.com/patrickmn/go-cache"
)

var validate = validator.New()

type CreateRoomInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
	IsPrivate   bool   `json:"isPrivate"`
	CreatorID   uint   `json:"-" validate:"required"`
}

// LeaveOutcome tells a successful LeaveRoom apart from one that removed the whole room.
type LeaveOutcome int

const (
	Left LeaveOutcome = iota
	RoomDeleted
)

type RoomService struct {
	store      *repositories.Store
	membership *cache.Cache
	log        *slog.Logger
	now        func() time.Time
}

func NewRoomService(store *repositories.Store, membership *cache.Cache, log *slog.Logger) *RoomService {
	return &RoomService{
		store:      store,
		membership: membership,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func membershipKey(roomID, userID uint) string {
	return fmt.Sprintf("membership:%d:%d", roomID, userID)
}

// CreateRoom creates the room and makes the creator its sole admin in one transaction.
func (s *RoomService) CreateRoom(ctx context.Context, in CreateRoomInput) (*models.Room, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if err := validate.Struct(in); err != nil {
		return nil, invalid(err)
	}

	var room *models.Room
	err := s.store.Transaction(ctx, func(r repositories.Repos) error {
		creator, err := r.Users.FindByID(in.CreatorID)
		if err != nil {
			return notFound(err, ErrUserNotFound)
		}
		room = &models.Room{
			Name:        in.Name,
			IsPrivate:   in.IsPrivate,
			CreatedByID: &creator.ID,
			CreatedAt:   s.now(),
		}
		if in.Description != "" {
			room.Description = &in.Description
		}
		if err := r.Rooms.Create(room); err != nil {
			return err
		}
		admin := models.Member{RoomID: room.ID, UserID: creator.ID, IsAdmin: true, JoinedAt: s.now()}
		if _, err := r.Members.CreateIfAbsent(&admin); err != nil {
			return err
		}
		admin.User = creator
		room.Members = []models.Member{admin}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Room created", "room_id", room.ID, "creator_id", in.CreatorID, "private", room.IsPrivate)
	return room, nil
}

// JoinPublicRoom adds userID as a regular member of a public room.
func (s *RoomService) JoinPublicRoom(ctx context.Context, roomID, userID uint) error {
	err := s.store.Transaction(ctx, func(r repositories.Repos) error {
		room, err := r.Rooms.LockByID(roomID)
		if err != nil {
			return notFound(err, ErrRoomNotFound)
		}
		if room.IsPrivate {
			return ErrRoomPrivate
		}
		if _, err := r.Users.FindByID(userID); err != nil {
			return notFound(err, ErrUserNotFound)
		}
		exists, err := r.Members.Exists(roomID, userID)
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadyMember
		}
		created, err := r.Members.CreateIfAbsent(&models.Member{RoomID: roomID, UserID: userID, JoinedAt: s.now()})
		if err != nil {
			return err
		}
		if !created {
			return ErrAlreadyMember
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Debug("User joined public room", "room_id", roomID, "user_id", userID)
	return nil
}

// LeaveRoom removes userID from the room. A lone admin cannot leave while others
// remain; the last member leaving deletes the room.
func (s *RoomService) LeaveRoom(ctx context.Context, roomID, userID uint) (LeaveOutcome, error) {
	outcome := Left
	err := s.store.Transaction(ctx, func(r repositories.Repos) error {
		if _, err := r.Rooms.LockByID(roomID); err != nil {
			return notFound(err, ErrRoomNotFound)
		}
		member, err := r.Members.Find(roomID, userID)
		if err != nil {
			return notFound(err, ErrNotMember)
		}
		total, admins, err := r.Members.Counts(roomID)
		if err != nil {
			return err
		}
		switch {
		case member.IsAdmin && admins == 1 && total > 1:
			return ErrLastAdmin
		case total == 1:
			outcome = RoomDeleted
			return r.Rooms.DeleteCascade(roomID)
		default:
			outcome = Left
			return r.Members.Delete(member)
		}
	})
	if err != nil {
		return Left, err
	}
	s.membership.Delete(membershipKey(roomID, userID))
	if outcome == RoomDeleted {
		s.log.Info("Room deleted as last member left", "room_id", roomID, "user_id", userID)
	}
	return outcome, nil
}

// IsRoomMember always reads the store.
func (s *RoomService) IsRoomMember(ctx context.Context, roomID, userID uint) (bool, error) {
	var ok bool
	err := s.store.View(ctx, func(r repositories.Repos) error {
		var err error
		ok, err = r.Members.Exists(roomID, userID)
		return err
	})
	return ok, err
}

// IsRoomMemberCached serves read-only gates. Only positive answers are cached and
// LeaveRoom evicts them.
func (s *RoomService) IsRoomMemberCached(ctx context.Context, roomID, userID uint) (bool, error) {
	key := membershipKey(roomID, userID)
	if _, found := s.membership.Get(key); found {
		return true, nil
	}
	ok, err := s.IsRoomMember(ctx, roomID, userID)
	if err != nil || !ok {
		return ok, err
	}
	s.membership.SetDefault(key, struct{}{})
	return true, nil
}

func (s *RoomService) IsRoomAdmin(ctx context.Context, roomID, userID uint) (bool, error) {
	var ok bool
	err := s.store.View(ctx, func(r repositories.Repos) error {
		var err error
		ok, err = r.Members.IsAdmin(roomID, userID)
		return err
	})
	return ok, err
}

// FindRoom loads the room row alone.
func (s *RoomService) FindRoom(ctx context.Context, roomID uint) (*models.Room, error) {
	var room *models.Room
	err := s.store.View(ctx, func(r repositories.Repos) error {
		var err error
		room, err = r.Rooms.FindByID(roomID)
		return notFound(err, ErrRoomNotFound)
	})
	return room, err
}

func (s *RoomService) GetRoom(ctx context.Context, roomID uint) (*models.Room, error) {
	var room *models.Room
	err := s.store.View(ctx, func(r repositories.Repos) error {
		var err error
		room, err = r.Rooms.FindWithMembers(roomID)
		return notFound(err, ErrRoomNotFound)
	})
	return room, err
}

func (s *RoomService) GetRoomMembers(ctx context.Context, roomID uint) ([]models.User, error) {
	var users []models.User
	err := s.store.View(ctx, func(r repositories.Repos) error {
		if _, err := r.Rooms.FindByID(roomID); err != nil {
			return notFound(err, ErrRoomNotFound)
		}
		var err error
		users, err = r.Members.ListUsers(roomID)
		return err
	})
	return users, err
}

// SearchRooms matches term against name and description. When userID is set, each
// room's Members holds only that user's membership, if any.
func (s *RoomService) SearchRooms(ctx context.Context, term string, userID *uint) ([]models.Room, error) {
	term = strings.TrimSpace(term)
	var rooms []models.Room
	err := s.store.View(ctx, func(r repositories.Repos) error {
		var err error
		rooms, err = r.Rooms.Search(term, userID)
		return err
	})
	return rooms, err
}

func (s *RoomService) GetUserRooms(ctx context.Context, userID uint) ([]models.Room, error) {
	var rooms []models.Room
	err := s.store.View(ctx, func(r repositories.Repos) error {
		var err error
		rooms, err = r.Rooms.ListByUser(userID)
		return err
	})
	return rooms, err
}

func (s *RoomService) GetPublicRooms(ctx context.Context) ([]models.Room, error) {
	var rooms []models.Room
	err := s.store.View(ctx, func(r repositories.Repos) error {
		var err error
		rooms, err = r.Rooms.ListPublic()
		return err
	})
	return rooms, err
}

package services

import (
	"context"
	"strings"
	"time"

	"github.com/Wal-20/roomchat/internal/models"
	"github.com/Wal-20/roomchat/internal/repositories"
)

// UserService is the user directory: lookups and presence.
type UserService struct {
	store *repositories.Store
	now   func() time.Time
}

func NewUserService(store *repositories.Store) *UserService {
	return &UserService{store: store, now: func() time.Time { return time.Now().UTC() }}
}

func (s *UserService) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var u *models.User
	err := s.store.View(ctx, func(r repositories.Repos) error {
		var err error
		u, err = r.Users.FindByID(id)
		return notFound(err, ErrUserNotFound)
	})
	return u, err
}

// SetPresence stores the online flag and stamps last-seen.
func (s *UserService) SetPresence(ctx context.Context, id uint, online bool) (time.Time, error) {
	at := s.now()
	err := s.store.Transaction(ctx, func(r repositories.Repos) error {
		return notFound(r.Users.SetPresence(id, online, at), ErrUserNotFound)
	})
	return at, err
}

func (s *UserService) GetOnlineUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.store.View(ctx, func(r repositories.Repos) error {
		var err error
		users, err = r.Users.ListOnline()
		return err
	})
	return users, err
}

func (s *UserService) SearchUsers(ctx context.Context, term string) ([]models.User, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []models.User{}, nil
	}
	var users []models.User
	err := s.store.View(ctx, func(r repositories.Repos) error {
		var err error
		users, err = r.Users.Search(term)
		return err
	})
	return users, err
}

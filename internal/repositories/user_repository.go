package repositories

import (
	"time"

	"github.com/Wal-20/roomchat/internal/models"
	"gorm.io/gorm"
)

const UserSearchLimit = 10

type UserRepository interface {
	FindByID(id uint) (*models.User, error)
	Create(user *models.User) error
	SetPresence(id uint, online bool, at time.Time) error
	ListOnline() ([]models.User, error)
	Search(term string) ([]models.User, error)
}

type GormUserRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) *GormUserRepository { return &GormUserRepository{db: db} }

func (r *GormUserRepository) FindByID(id uint) (*models.User, error) {
	var u models.User
	if err := r.db.First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *GormUserRepository) Create(user *models.User) error { return r.db.Create(user).Error }

func (r *GormUserRepository) SetPresence(id uint, online bool, at time.Time) error {
	res := r.db.Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]any{"is_online": online, "last_seen": at})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormUserRepository) ListOnline() ([]models.User, error) {
	var users []models.User
	err := r.db.Where("is_online = ?", true).
		Order("COALESCE(display_name, name) ASC").
		Find(&users).Error
	return users, err
}

func (r *GormUserRepository) Search(term string) ([]models.User, error) {
	pattern := "%" + escapeLike(term) + "%"
	var users []models.User
	err := r.db.Where("name LIKE ? ESCAPE '!' OR display_name LIKE ? ESCAPE '!'", pattern, pattern).
		Order("COALESCE(display_name, name) ASC").
		Limit(UserSearchLimit).
		Find(&users).Error
	return users, err
}

package repositories

import (
	"strings"

	"github.com/Wal-20/roomchat/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const SearchLimit = 20

type RoomRepository interface {
	FindByID(id uint) (*models.Room, error)
	FindWithMembers(id uint) (*models.Room, error)
	LockByID(id uint) (*models.Room, error)
	Create(room *models.Room) error
	DeleteCascade(id uint) error
	ListPublic() ([]models.Room, error)
	ListByUser(userID uint) ([]models.Room, error)
	Search(term string, userID *uint) ([]models.Room, error)
}

type GormRoomRepository struct{ db *gorm.DB }

func NewRoomRepository(db *gorm.DB) *GormRoomRepository { return &GormRoomRepository{db: db} }

func (r *GormRoomRepository) FindByID(id uint) (*models.Room, error) {
	var room models.Room
	if err := r.db.First(&room, id).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *GormRoomRepository) FindWithMembers(id uint) (*models.Room, error) {
	var room models.Room
	if err := r.db.Preload("Members.User").First(&room, id).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

// LockByID reads the room row with SELECT ... FOR UPDATE so membership changes of the
// same room serialize for the rest of the transaction.
func (r *GormRoomRepository) LockByID(id uint) (*models.Room, error) {
	var room models.Room
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&room, id).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *GormRoomRepository) Create(room *models.Room) error {
	return r.db.Omit(clause.Associations).Create(room).Error
}

// DeleteCascade removes the room and every row that depends on it.
func (r *GormRoomRepository) DeleteCascade(id uint) error {
	if err := r.db.Where("room_id = ?", id).Delete(&models.Invitation{}).Error; err != nil {
		return err
	}
	if err := r.db.Where("room_id = ?", id).Delete(&models.Message{}).Error; err != nil {
		return err
	}
	if err := r.db.Where("room_id = ?", id).Delete(&models.Member{}).Error; err != nil {
		return err
	}
	return r.db.Where("id = ?", id).Delete(&models.Room{}).Error
}

func (r *GormRoomRepository) ListPublic() ([]models.Room, error) {
	var rooms []models.Room
	err := r.db.Preload("Members.User").
		Where("is_private = ?", false).
		Order("name ASC").
		Find(&rooms).Error
	return rooms, err
}

func (r *GormRoomRepository) ListByUser(userID uint) ([]models.Room, error) {
	var rooms []models.Room
	err := r.db.Preload("Members.User").
		Joins("JOIN room_members ON room_members.room_id = rooms.id").
		Where("room_members.user_id = ?", userID).
		Order("rooms.name ASC").
		Find(&rooms).Error
	return rooms, err
}

// Search matches name or description. With a userID only that user's membership is
// preloaded, so the caller can tell which results it already belongs to.
func (r *GormRoomRepository) Search(term string, userID *uint) ([]models.Room, error) {
	pattern := "%" + escapeLike(term) + "%"
	query := r.db.Where("name LIKE ? ESCAPE '!' OR (description IS NOT NULL AND description LIKE ? ESCAPE '!')", pattern, pattern)
	if userID != nil {
		query = query.Preload("Members", "user_id = ?", *userID)
	} else {
		query = query.Preload("Members.User")
	}
	var rooms []models.Room
	err := query.Order("name ASC").Limit(SearchLimit).Find(&rooms).Error
	return rooms, err
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}

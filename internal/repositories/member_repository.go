package repositories

import (
	"github.com/Wal-20/roomchat/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MemberRepository interface {
	Find(roomID, userID uint) (*models.Member, error)
	Exists(roomID, userID uint) (bool, error)
	IsAdmin(roomID, userID uint) (bool, error)
	// CreateIfAbsent inserts the member and reports false when (room, user) already exists.
	CreateIfAbsent(m *models.Member) (bool, error)
	Delete(m *models.Member) error
	Counts(roomID uint) (total int64, admins int64, err error)
	ListUsers(roomID uint) ([]models.User, error)
}

type GormMemberRepository struct{ db *gorm.DB }

func NewMemberRepository(db *gorm.DB) *GormMemberRepository { return &GormMemberRepository{db: db} }

func (r *GormMemberRepository) Find(roomID, userID uint) (*models.Member, error) {
	var m models.Member
	if err := r.db.Where("room_id = ? AND user_id = ?", roomID, userID).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *GormMemberRepository) Exists(roomID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Member{}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *GormMemberRepository) IsAdmin(roomID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Member{}).
		Where("room_id = ? AND user_id = ? AND is_admin = ?", roomID, userID, true).
		Count(&count).Error
	return count > 0, err
}

func (r *GormMemberRepository) CreateIfAbsent(m *models.Member) (bool, error) {
	res := r.db.Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(m)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *GormMemberRepository) Delete(m *models.Member) error {
	return r.db.Where("id = ?", m.ID).Delete(&models.Member{}).Error
}

func (r *GormMemberRepository) Counts(roomID uint) (int64, int64, error) {
	var row struct {
		Total  int64
		Admins int64
	}
	err := r.db.Model(&models.Member{}).
		Select("COUNT(*) AS total, COALESCE(SUM(CASE WHEN is_admin THEN 1 ELSE 0 END), 0) AS admins").
		Where("room_id = ?", roomID).
		Scan(&row).Error
	return row.Total, row.Admins, err
}

func (r *GormMemberRepository) ListUsers(roomID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.Model(&models.User{}).
		Joins("JOIN room_members ON room_members.user_id = users.id").
		Where("room_members.room_id = ?", roomID).
		Order("COALESCE(users.display_name, users.name) ASC").
		Find(&users).Error
	return users, err
}

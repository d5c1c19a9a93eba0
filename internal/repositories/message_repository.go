package repositories

import (
	"slices"

	"github.com/Wal-20/roomchat/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MessageRepository interface {
	Create(message *models.Message) error
	// ListRoom returns one page of a room's history, oldest first. offset counts back
	// from the newest message.
	ListRoom(roomID uint, offset, limit int) ([]models.Message, error)
	ListPrivate(userA, userB uint, offset, limit int) ([]models.Message, error)
	MarkRead(id, recipientID uint) (bool, error)
}

type GormMessageRepository struct{ db *gorm.DB }

func NewMessageRepository(db *gorm.DB) *GormMessageRepository { return &GormMessageRepository{db: db} }

func (r *GormMessageRepository) Create(message *models.Message) error {
	return r.db.Omit(clause.Associations).Create(message).Error
}

func (r *GormMessageRepository) ListRoom(roomID uint, offset, limit int) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.Preload("Sender").
		Where("room_id = ?", roomID).
		Order("sent_at DESC").Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	slices.Reverse(msgs)
	return msgs, nil
}

func (r *GormMessageRepository) ListPrivate(userA, userB uint, offset, limit int) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.Preload("Sender").
		Where("is_private = ?", true).
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)", userA, userB, userB, userA).
		Order("sent_at DESC").Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	slices.Reverse(msgs)
	return msgs, nil
}

// MarkRead flips IsRead for a direct message addressed to recipientID. It reports
// false when no such message exists.
func (r *GormMessageRepository) MarkRead(id, recipientID uint) (bool, error) {
	var m models.Message
	err := r.db.Select("id", "is_read").
		Where("id = ? AND recipient_id = ?", id, recipientID).
		First(&m).Error
	if err != nil {
		return false, err
	}
	if m.IsRead {
		return true, nil
	}
	return true, r.db.Model(&models.Message{}).Where("id = ?", id).Update("is_read", true).Error
}

package repositories

import (
	"time"

	"github.com/Wal-20/roomchat/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InvitationRepository interface {
	FindByID(id uint) (*models.Invitation, error)
	// CreatePending inserts a pending invitation and reports false when one is
	// already pending for the same (room, invitee).
	CreatePending(inv *models.Invitation) (bool, error)
	HasPending(roomID, inviteeID uint) (bool, error)
	// Resolve moves a pending invitation to a terminal status. It reports false when
	// the invitation was no longer pending.
	Resolve(id uint, status models.InvitationStatus, at time.Time) (bool, error)
	ListPending(inviteeID uint) ([]models.Invitation, error)
	// ExpireBefore moves every invitation still pending since before cutoff to Expired.
	ExpireBefore(cutoff, at time.Time) (int64, error)
}

type GormInvitationRepository struct{ db *gorm.DB }

func NewInvitationRepository(db *gorm.DB) *GormInvitationRepository {
	return &GormInvitationRepository{db: db}
}

func (r *GormInvitationRepository) FindByID(id uint) (*models.Invitation, error) {
	var inv models.Invitation
	if err := r.db.Preload("Room").Preload("Inviter").First(&inv, id).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *GormInvitationRepository) CreatePending(inv *models.Invitation) (bool, error) {
	inv.Status = models.InvitationPending
	res := r.db.Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(inv)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *GormInvitationRepository) HasPending(roomID, inviteeID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Invitation{}).
		Where("room_id = ? AND invitee_id = ? AND status = ?", roomID, inviteeID, models.InvitationPending).
		Count(&count).Error
	return count > 0, err
}

func (r *GormInvitationRepository) Resolve(id uint, status models.InvitationStatus, at time.Time) (bool, error) {
	res := r.db.Model(&models.Invitation{}).
		Where("id = ? AND status = ?", id, models.InvitationPending).
		Updates(map[string]any{
			"status":       status,
			"pending":      nil,
			"responded_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *GormInvitationRepository) ListPending(inviteeID uint) ([]models.Invitation, error) {
	var invs []models.Invitation
	err := r.db.Preload("Room").Preload("Inviter").
		Where("invitee_id = ? AND status = ?", inviteeID, models.InvitationPending).
		Order("created_at DESC").Order("id DESC").
		Find(&invs).Error
	return invs, err
}

func (r *GormInvitationRepository) ExpireBefore(cutoff, at time.Time) (int64, error) {
	res := r.db.Model(&models.Invitation{}).
		Where("status = ? AND created_at < ?", models.InvitationPending, cutoff).
		Updates(map[string]any{
			"status":       models.InvitationExpired,
			"pending":      nil,
			"responded_at": at,
		})
	return res.RowsAffected, res.Error
}

package config

import (
	"github.com/Wal-20/roomchat/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedDemoData fills an empty database with three users and three public rooms
// every user belongs to. The first user administers all of them.
func SeedDemoData(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		users := []models.User{
			{Name: "alice", DisplayName: ptr("Alice Johnson")},
			{Name: "bob", DisplayName: ptr("Bob Smith")},
			{Name: "charlie", DisplayName: ptr("Charlie Brown")},
		}
		if err := tx.Create(&users).Error; err != nil {
			return err
		}

		owner := users[0].ID
		rooms := []models.Room{
			{Name: "General", Description: ptr("General discussion"), CreatedByID: &owner},
			{Name: "Tech Talk", Description: ptr("Technology discussions"), CreatedByID: &owner},
			{Name: "Random", Description: ptr("Random conversations"), CreatedByID: &owner},
		}
		if err := tx.Omit(clause.Associations).Create(&rooms).Error; err != nil {
			return err
		}

		var members []models.Member
		for _, room := range rooms {
			for _, user := range users {
				members = append(members, models.Member{RoomID: room.ID, UserID: user.ID, IsAdmin: user.ID == owner})
			}
		}
		return tx.Omit(clause.Associations).Create(&members).Error
	})
}

func ptr[T any](v T) *T { return &v }

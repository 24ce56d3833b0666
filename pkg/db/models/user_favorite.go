package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserFavorite links a user to a bookmarked car.
type UserFavorite struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	UserID    string    `gorm:"column:user_id;not null;index:user_favorites_user_id_idx;uniqueIndex:user_favorites_user_car_key"`
	CarID     uuid.UUID `gorm:"column:car_id;type:uuid;not null;index:user_favorites_car_id_idx;uniqueIndex:user_favorites_user_car_key"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (f *UserFavorite) BeforeCreate(*gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

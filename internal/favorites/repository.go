package favorites

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/automarkt/automarkt-backend/pkg/db/models"
)

// Repository encapsulates favorite persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a favorites repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Add inserts a favorite entry and ignores duplicates. The unique index on
// (user_id, car_id) makes repeated adds idempotent.
func (r *Repository) Add(ctx context.Context, userID string, carID uuid.UUID) error {
	if userID == "" || carID == uuid.Nil {
		return gorm.ErrInvalidValue
	}

	// Raw insert bypasses the model hooks, so the row id is generated here.
	return r.db.WithContext(ctx).
		Exec(`INSERT INTO user_favorites (id, user_id, car_id, created_at) VALUES (?, ?, ?, ?) ON CONFLICT (user_id, car_id) DO NOTHING`,
			uuid.New(), userID, carID, time.Now().UTC()).
		Error
}

// Remove deletes the favorite if it exists. Removing an absent entry is a no-op.
func (r *Repository) Remove(ctx context.Context, userID string, carID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND car_id = ?", userID, carID).
		Delete(&models.UserFavorite{}).
		Error
}

// IsFavorited reports whether the user has bookmarked the car.
func (r *Repository) IsFavorited(ctx context.Context, userID string, carID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.UserFavorite{}).
		Where("user_id = ? AND car_id = ?", userID, carID).
		Count(&count).
		Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListCars returns the cars a user has favorited, most recently added first.
func (r *Repository) ListCars(ctx context.Context, userID string) ([]models.Car, error) {
	var cars []models.Car
	err := r.db.WithContext(ctx).
		Model(&models.Car{}).
		Joins("JOIN user_favorites uf ON uf.car_id = cars.id").
		Where("uf.user_id = ?", userID).
		Order("uf.created_at DESC").
		Order("uf.id DESC").
		Find(&cars).
		Error
	if err != nil {
		return nil, err
	}
	return cars, nil
}

// Count returns how many favorites the user has.
func (r *Repository) Count(ctx context.Context, userID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.UserFavorite{}).
		Where("user_id = ?", userID).
		Count(&count).
		Error; err != nil {
		return 0, err
	}
	return count, nil
}

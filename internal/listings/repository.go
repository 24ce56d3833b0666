package listings

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/automarkt/automarkt-backend/pkg/db/models"
	"github.com/automarkt/automarkt-backend/pkg/pagination"
)

// Repository encapsulates listing persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads a listing by identifier.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Car, error) {
	var car models.Car
	if err := r.db.WithContext(ctx).First(&car, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &car, nil
}

// FindOwned loads a listing only when it belongs to the given user. An
// ownership mismatch surfaces as ErrRecordNotFound so existence never leaks.
func (r *Repository) FindOwned(ctx context.Context, id uuid.UUID, userID string) (*models.Car, error) {
	var car models.Car
	if err := r.db.WithContext(ctx).First(&car, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		return nil, err
	}
	return &car, nil
}

// Create inserts a new listing row.
func (r *Repository) Create(ctx context.Context, car *models.Car) (*models.Car, error) {
	if err := r.db.WithContext(ctx).Create(car).Error; err != nil {
		return nil, err
	}
	return car, nil
}

// Update saves all fields of an existing listing row.
func (r *Repository) Update(ctx context.Context, car *models.Car) (*models.Car, error) {
	if err := r.db.WithContext(ctx).Save(car).Error; err != nil {
		return nil, err
	}
	return car, nil
}

// DeleteOwned removes a listing scoped by owner. Returns ErrRecordNotFound
// when nothing matched, covering both a missing row and a non-owner caller.
func (r *Repository) DeleteOwned(ctx context.Context, id uuid.UUID, userID string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Car{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListByOwner returns all listings owned by the user, newest first.
func (r *Repository) ListByOwner(ctx context.Context, userID string) ([]models.Car, error) {
	var rows []models.Car
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).
		Error
	return rows, err
}

// Search executes the filtered query with offset pagination plus a separate
// count that reflects all filters but ignores the page window.
func (r *Repository) Search(ctx context.Context, filters FilterSet, page pagination.Params) ([]models.Car, int64, error) {
	page = page.Normalize()

	base := filters.Apply(r.db.WithContext(ctx).Model(&models.Car{}))

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Car
	err := base.Session(&gorm.Session{}).
		Order("created_at DESC").
		Order("id DESC").
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&rows).
		Error
	if err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}

package favorites

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/automarkt/automarkt-backend/internal/listings"
	pkgerrors "github.com/automarkt/automarkt-backend/pkg/errors"
)

// ServiceParams groups dependencies for the favorites service.
type ServiceParams struct {
	FavoritesRepo *Repository
	ListingsRepo  *listings.Repository
}

// Service exposes business rules for favorite management.
type Service interface {
	Add(ctx context.Context, userID string, carID uuid.UUID) error
	Remove(ctx context.Context, userID string, carID uuid.UUID) error
	IsFavorited(ctx context.Context, userID string, carID uuid.UUID) (bool, error)
	List(ctx context.Context, userID string) ([]FavoriteDTO, error)
}

type service struct {
	favoritesRepo *Repository
	listingsRepo  *listings.Repository
}

// NewService builds a favorites service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.FavoritesRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "favorites repo is required")
	}
	if params.ListingsRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listings repo is required")
	}
	return &service{
		favoritesRepo: params.FavoritesRepo,
		listingsRepo:  params.ListingsRepo,
	}, nil
}

// Add ensures the listing exists and bookmarks it for the user.
func (s *service) Add(ctx context.Context, userID string, carID uuid.UUID) error {
	if userID == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if carID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "car id is required")
	}
	if _, err := s.listingsRepo.FindByID(ctx, carID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "listing not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}
	if err := s.favoritesRepo.Add(ctx, userID, carID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add favorite")
	}
	return nil
}

// Remove drops the favorite regardless of prior state.
func (s *service) Remove(ctx context.Context, userID string, carID uuid.UUID) error {
	if userID == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if carID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "car id is required")
	}
	if err := s.favoritesRepo.Remove(ctx, userID, carID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove favorite")
	}
	return nil
}

// IsFavorited reports whether the user bookmarked the car. An anonymous
// caller is never favorited and never an error.
func (s *service) IsFavorited(ctx context.Context, userID string, carID uuid.UUID) (bool, error) {
	if userID == "" || carID == uuid.Nil {
		return false, nil
	}
	return s.favoritesRepo.IsFavorited(ctx, userID, carID)
}

// List returns the user's favorited cars, most recently added first.
func (s *service) List(ctx context.Context, userID string) ([]FavoriteDTO, error) {
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	cars, err := s.favoritesRepo.ListCars(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list favorites")
	}
	return NewFavoriteDTOs(cars), nil
}

package favorites

import (
	"github.com/google/uuid"

	"github.com/automarkt/automarkt-backend/internal/listings"
	"github.com/automarkt/automarkt-backend/pkg/db/models"
)

// FavoriteDTO is a single row of the favorites list. The nested listing is
// keyed "cars" to match the join shape clients already consume.
type FavoriteDTO struct {
	CarID uuid.UUID           `json:"car_id"`
	Car   listings.ListingDTO `json:"cars"`
}

// NewFavoriteDTOs maps favorited cars into list rows preserving order.
func NewFavoriteDTOs(cars []models.Car) []FavoriteDTO {
	out := make([]FavoriteDTO, 0, len(cars))
	for i := range cars {
		out = append(out, FavoriteDTO{
			CarID: cars[i].ID,
			Car:   *listings.NewListingDTO(&cars[i]),
		})
	}
	return out
}

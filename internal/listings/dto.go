package listings

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/automarkt/automarkt-backend/pkg/db/models"
)

// ListingDTO is the full vehicle listing payload returned to clients.
type ListingDTO struct {
	ID     uuid.UUID `json:"id"`
	UserID string    `json:"user_id"`

	Make         string          `json:"make"`
	Model        string          `json:"model"`
	Year         int             `json:"year"`
	Price        decimal.Decimal `json:"price"`
	Mileage      int             `json:"mileage"`
	Description  string          `json:"description"`
	Condition    string          `json:"condition"`
	Transmission string          `json:"transmission"`
	FuelType     string          `json:"fuel_type"`
	Location     string          `json:"location"`
	Images       []string        `json:"images"`

	VIN       *string `json:"vin,omitempty"`
	HasTuning bool    `json:"has_tuning"`

	IsFirstOwner       bool `json:"is_first_owner"`
	IsAccidentFree     bool `json:"is_accident_free"`
	IsDamaged          bool `json:"is_damaged"`
	IsServicedAtDealer bool `json:"is_serviced_at_dealer"`

	IsRegistered          bool       `json:"is_registered"`
	RegistrationNumber    *string    `json:"registration_number,omitempty"`
	FirstRegistrationDate *time.Time `json:"first_registration_date,omitempty"`
	ShowRegistrationInfo  bool       `json:"show_registration_info"`

	IsImported    bool    `json:"is_imported"`
	ImportCountry *string `json:"import_country,omitempty"`

	SellerName  string `json:"seller_name"`
	SellerPhone string `json:"seller_phone"`

	IsFavorited *bool `json:"is_favorited,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SearchResultDTO is a page of listings plus the paging metadata the UI needs.
type SearchResultDTO struct {
	Listings   []ListingDTO `json:"listings"`
	Total      int64        `json:"total"`
	TotalPages int          `json:"total_pages"`
	Page       int          `json:"page"`
	ViewMode   string       `json:"view_mode"`
}

// NewListingDTO builds a DTO from the persisted model.
func NewListingDTO(car *models.Car) *ListingDTO {
	return &ListingDTO{
		ID:                    car.ID,
		UserID:                car.UserID,
		Make:                  car.Make,
		Model:                 car.Model,
		Year:                  car.Year,
		Price:                 car.Price,
		Mileage:               car.Mileage,
		Description:           car.Description,
		Condition:             car.Condition.String(),
		Transmission:          car.Transmission.String(),
		FuelType:              car.FuelType.String(),
		Location:              car.Location,
		Images:                append([]string{}, car.Images...),
		VIN:                   car.VIN,
		HasTuning:             car.HasTuning,
		IsFirstOwner:          car.IsFirstOwner,
		IsAccidentFree:        car.IsAccidentFree,
		IsDamaged:             car.IsDamaged,
		IsServicedAtDealer:    car.IsServicedAtDealer,
		IsRegistered:          car.IsRegistered,
		RegistrationNumber:    car.RegistrationNumber,
		FirstRegistrationDate: car.FirstRegistrationDate,
		ShowRegistrationInfo:  car.ShowRegistrationInfo,
		IsImported:            car.IsImported,
		ImportCountry:         car.ImportCountry,
		SellerName:            car.SellerName,
		SellerPhone:           car.SellerPhone,
		CreatedAt:             car.CreatedAt,
		UpdatedAt:             car.UpdatedAt,
	}
}

// NewListingDTOs maps a slice of models preserving order.
func NewListingDTOs(cars []models.Car) []ListingDTO {
	out := make([]ListingDTO, 0, len(cars))
	for i := range cars {
		out = append(out, *NewListingDTO(&cars[i]))
	}
	return out
}

package listings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/automarkt/automarkt-backend/pkg/db"
	"github.com/automarkt/automarkt-backend/pkg/db/models"
	dbtypes "github.com/automarkt/automarkt-backend/pkg/db/types"
	"github.com/automarkt/automarkt-backend/pkg/enums"
	pkgerrors "github.com/automarkt/automarkt-backend/pkg/errors"
	"github.com/automarkt/automarkt-backend/pkg/logger"
	"github.com/automarkt/automarkt-backend/pkg/pagination"
)

const (
	minListingYear    = 1900
	minDescriptionLen = 10
	maxDescriptionLen = 1000
	vinLength         = 17
)

var maxListingPrice = decimal.NewFromInt(10_000_000)

const maxListingMileage = 1_000_000

// Service exposes listing search and CRUD operations.
type Service interface {
	Search(ctx context.Context, filters FilterSet, page int) SearchResultDTO
	Get(ctx context.Context, id uuid.UUID, viewerID string) (*ListingDTO, error)
	Create(ctx context.Context, userID string, input CreateListingInput) (*ListingDTO, error)
	Update(ctx context.Context, userID string, id uuid.UUID, input UpdateListingInput) (*ListingDTO, error)
	Delete(ctx context.Context, userID string, id uuid.UUID) error
	ListByOwner(ctx context.Context, userID string) ([]ListingDTO, error)
}

// CreateListingInput holds the validated payload to create a listing.
type CreateListingInput struct {
	Make         string
	Model        string
	Year         int
	Price        decimal.Decimal
	Mileage      int
	Description  string
	Condition    enums.Condition
	Transmission enums.Transmission
	FuelType     enums.FuelType
	Location     string
	Images       []string

	VIN       *string
	HasTuning bool

	IsFirstOwner       bool
	IsAccidentFree     bool
	IsDamaged          bool
	IsServicedAtDealer bool

	IsRegistered          bool
	RegistrationNumber    *string
	FirstRegistrationDate *time.Time
	ShowRegistrationInfo  bool

	IsImported    bool
	ImportCountry *string

	SellerName  string
	SellerPhone string
}

// UpdateListingInput holds optional mutation values for a listing.
type UpdateListingInput struct {
	Make         *string
	Model        *string
	Year         *int
	Price        *decimal.Decimal
	Mileage      *int
	Description  *string
	Condition    *enums.Condition
	Transmission *enums.Transmission
	FuelType     *enums.FuelType
	Location     *string
	Images       *[]string

	VIN       *string
	HasTuning *bool

	IsFirstOwner       *bool
	IsAccidentFree     *bool
	IsDamaged          *bool
	IsServicedAtDealer *bool

	IsRegistered          *bool
	RegistrationNumber    *string
	FirstRegistrationDate *time.Time
	ShowRegistrationInfo  *bool

	IsImported    *bool
	ImportCountry *string

	SellerName  *string
	SellerPhone *string
}

type favoriteChecker interface {
	IsFavorited(ctx context.Context, userID string, carID uuid.UUID) (bool, error)
}

// ServiceParams groups dependencies for the listing service.
type ServiceParams struct {
	Repo      *Repository
	DBClient  *db.Client
	Favorites favoriteChecker
	Logger    *logger.Logger
	PageSize  int
}

type service struct {
	repo      *Repository
	dbClient  *db.Client
	favorites favoriteChecker
	logg      *logger.Logger
	pageSize  int
}

// NewService constructs a listing service instance.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("listing repository required")
	}
	if params.DBClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	pageSize := params.PageSize
	if pageSize <= 0 {
		pageSize = pagination.DefaultPageSize
	}
	return &service{
		repo:      params.Repo,
		dbClient:  params.DBClient,
		favorites: params.Favorites,
		logg:      params.Logger,
		pageSize:  pageSize,
	}, nil
}

// Search runs the filtered page query. A store fault degrades to an empty
// result with zero counts; reads never propagate the failure.
func (s *service) Search(ctx context.Context, filters FilterSet, page int) SearchResultDTO {
	params := pagination.Params{Page: page, PageSize: s.pageSize}.Normalize()

	rows, total, err := s.repo.Search(ctx, filters, params)
	if err != nil {
		s.logg.Error(ctx, "listing search failed", err)
		return SearchResultDTO{
			Listings: []ListingDTO{},
			Page:     params.Page,
			ViewMode: filters.ViewMode.String(),
		}
	}

	return SearchResultDTO{
		Listings:   NewListingDTOs(rows),
		Total:      total,
		TotalPages: pagination.TotalPages(total, params.PageSize),
		Page:       params.Page,
		ViewMode:   filters.ViewMode.String(),
	}
}

// Get loads one listing. Authenticated viewers get the is_favorited flag.
func (s *service) Get(ctx context.Context, id uuid.UUID, viewerID string) (*ListingDTO, error) {
	car, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}

	dto := NewListingDTO(car)
	if viewerID != "" && s.favorites != nil {
		favorited, err := s.favorites.IsFavorited(ctx, viewerID, car.ID)
		if err != nil {
			// annotation only; the listing itself is still served
			s.logg.Error(ctx, "favorite annotation failed", err)
		} else {
			dto.IsFavorited = &favorited
		}
	}
	return dto, nil
}

// Create persists a new listing owned by the caller as a single atomic insert.
func (s *service) Create(ctx context.Context, userID string, input CreateListingInput) (*ListingDTO, error) {
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	car := carFromCreateInput(userID, input)
	applyDerivedDefaults(car)
	if err := validateListing(car, time.Now()); err != nil {
		return nil, err
	}

	var created *models.Car
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		row, err := s.repo.WithTx(tx).Create(ctx, car)
		if err != nil {
			return err
		}
		created = row
		return nil
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert listing")
	}

	return NewListingDTO(created), nil
}

// Update mutates an owned listing. Ownership mismatches surface as not found.
func (s *service) Update(ctx context.Context, userID string, id uuid.UUID, input UpdateListingInput) (*ListingDTO, error) {
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	car, err := s.repo.FindOwned(ctx, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}

	applyUpdateToCar(car, input)
	applyDerivedDefaults(car)
	if err := validateListing(car, time.Now()); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, car)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update listing")
	}
	return NewListingDTO(updated), nil
}

// Delete removes an owned listing permanently.
func (s *service) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	if userID == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	if err := s.repo.DeleteOwned(ctx, id, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete listing")
	}
	return nil
}

// ListByOwner returns the caller's own inventory, newest first.
func (s *service) ListByOwner(ctx context.Context, userID string) ([]ListingDTO, error) {
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	rows, err := s.repo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list own listings")
	}
	return NewListingDTOs(rows), nil
}

func carFromCreateInput(userID string, input CreateListingInput) *models.Car {
	return &models.Car{
		UserID:                userID,
		Make:                  strings.TrimSpace(input.Make),
		Model:                 strings.TrimSpace(input.Model),
		Year:                  input.Year,
		Price:                 input.Price,
		Mileage:               input.Mileage,
		Description:           strings.TrimSpace(input.Description),
		Condition:             input.Condition,
		Transmission:          input.Transmission,
		FuelType:              input.FuelType,
		Location:              strings.TrimSpace(input.Location),
		Images:                dbtypes.StringArray(append([]string(nil), input.Images...)),
		VIN:                   input.VIN,
		HasTuning:             input.HasTuning,
		IsFirstOwner:          input.IsFirstOwner,
		IsAccidentFree:        input.IsAccidentFree,
		IsDamaged:             input.IsDamaged,
		IsServicedAtDealer:    input.IsServicedAtDealer,
		IsRegistered:          input.IsRegistered,
		RegistrationNumber:    input.RegistrationNumber,
		FirstRegistrationDate: input.FirstRegistrationDate,
		ShowRegistrationInfo:  input.ShowRegistrationInfo,
		IsImported:            input.IsImported,
		ImportCountry:         input.ImportCountry,
		SellerName:            strings.TrimSpace(input.SellerName),
		SellerPhone:           strings.TrimSpace(input.SellerPhone),
	}
}

func applyUpdateToCar(car *models.Car, input UpdateListingInput) {
	if input.Make != nil {
		car.Make = strings.TrimSpace(*input.Make)
	}
	if input.Model != nil {
		car.Model = strings.TrimSpace(*input.Model)
	}
	if input.Year != nil {
		car.Year = *input.Year
	}
	if input.Price != nil {
		car.Price = *input.Price
	}
	if input.Mileage != nil {
		car.Mileage = *input.Mileage
	}
	if input.Description != nil {
		car.Description = strings.TrimSpace(*input.Description)
	}
	if input.Condition != nil {
		car.Condition = *input.Condition
	}
	if input.Transmission != nil {
		car.Transmission = *input.Transmission
	}
	if input.FuelType != nil {
		car.FuelType = *input.FuelType
	}
	if input.Location != nil {
		car.Location = strings.TrimSpace(*input.Location)
	}
	if input.Images != nil {
		car.Images = dbtypes.StringArray(append([]string(nil), (*input.Images)...))
	}
	if input.VIN != nil {
		car.VIN = input.VIN
	}
	if input.HasTuning != nil {
		car.HasTuning = *input.HasTuning
	}
	if input.IsFirstOwner != nil {
		car.IsFirstOwner = *input.IsFirstOwner
	}
	if input.IsAccidentFree != nil {
		car.IsAccidentFree = *input.IsAccidentFree
	}
	if input.IsDamaged != nil {
		car.IsDamaged = *input.IsDamaged
	}
	if input.IsServicedAtDealer != nil {
		car.IsServicedAtDealer = *input.IsServicedAtDealer
	}
	if input.IsRegistered != nil {
		car.IsRegistered = *input.IsRegistered
	}
	if input.RegistrationNumber != nil {
		car.RegistrationNumber = input.RegistrationNumber
	}
	if input.FirstRegistrationDate != nil {
		car.FirstRegistrationDate = input.FirstRegistrationDate
	}
	if input.ShowRegistrationInfo != nil {
		car.ShowRegistrationInfo = *input.ShowRegistrationInfo
	}
	if input.IsImported != nil {
		car.IsImported = *input.IsImported
	}
	if input.ImportCountry != nil {
		car.ImportCountry = input.ImportCountry
	}
	if input.SellerName != nil {
		car.SellerName = strings.TrimSpace(*input.SellerName)
	}
	if input.SellerPhone != nil {
		car.SellerPhone = strings.TrimSpace(*input.SellerPhone)
	}
}

// applyDerivedDefaults nulls conditional fields whose governing flag is off.
func applyDerivedDefaults(car *models.Car) {
	if !car.IsImported {
		car.ImportCountry = nil
	}
	if !car.IsRegistered {
		car.RegistrationNumber = nil
		car.FirstRegistrationDate = nil
		car.ShowRegistrationInfo = false
	}
}

func validateListing(car *models.Car, now time.Time) error {
	if car.Make == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "make is required")
	}
	if car.Model == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "model is required")
	}
	if car.Location == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "location is required")
	}
	maxYear := now.Year() + 1
	if car.Year < minListingYear || car.Year > maxYear {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("year must be between %d and %d", minListingYear, maxYear))
	}
	if !car.Price.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}
	if car.Price.GreaterThanOrEqual(maxListingPrice) {
		return pkgerrors.New(pkgerrors.CodeValidation, "price is out of range")
	}
	if car.Mileage <= 0 || car.Mileage >= maxListingMileage {
		return pkgerrors.New(pkgerrors.CodeValidation, "mileage is out of range")
	}
	if l := len(car.Description); l < minDescriptionLen || l > maxDescriptionLen {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("description must be %d to %d characters", minDescriptionLen, maxDescriptionLen))
	}
	if !car.Condition.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid condition")
	}
	if !car.Transmission.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid transmission")
	}
	if !car.FuelType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid fuel type")
	}
	if car.VIN != nil && len(*car.VIN) != vinLength {
		return pkgerrors.New(pkgerrors.CodeValidation, "vin must be exactly 17 characters")
	}
	if len(car.Images) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one image is required")
	}
	if car.IsRegistered {
		if car.RegistrationNumber == nil || strings.TrimSpace(*car.RegistrationNumber) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "registration number is required for registered vehicles")
		}
		if car.FirstRegistrationDate == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "first registration date is required for registered vehicles")
		}
		if car.FirstRegistrationDate.Year() < car.Year {
			return pkgerrors.New(pkgerrors.CodeValidation, "first registration date cannot precede the model year")
		}
	}
	if car.IsImported {
		if car.ImportCountry == nil || strings.TrimSpace(*car.ImportCountry) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "import country is required for imported vehicles")
		}
	}
	if car.SellerName == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "seller name is required")
	}
	if car.SellerPhone == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "seller phone is required")
	}
	return nil
}

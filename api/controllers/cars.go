package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/automarkt/automarkt-backend/api/middleware"
	"github.com/automarkt/automarkt-backend/api/responses"
	"github.com/automarkt/automarkt-backend/api/validators"
	"github.com/automarkt/automarkt-backend/internal/listings"
	"github.com/automarkt/automarkt-backend/pkg/enums"
	pkgerrors "github.com/automarkt/automarkt-backend/pkg/errors"
	"github.com/automarkt/automarkt-backend/pkg/logger"
)

const dateLayout = "2006-01-02"

type createCarPayload struct {
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

	VIN       *string `json:"vin"`
	HasTuning bool    `json:"has_tuning"`

	IsFirstOwner       bool `json:"is_first_owner"`
	IsAccidentFree     bool `json:"is_accident_free"`
	IsDamaged          bool `json:"is_damaged"`
	IsServicedAtDealer bool `json:"is_serviced_at_dealer"`

	IsRegistered          bool    `json:"is_registered"`
	RegistrationNumber    *string `json:"registration_number"`
	FirstRegistrationDate *string `json:"first_registration_date"`
	ShowRegistrationInfo  bool    `json:"show_registration_info"`

	IsImported    bool    `json:"is_imported"`
	ImportCountry *string `json:"import_country"`

	SellerName  string `json:"seller_name"`
	SellerPhone string `json:"seller_phone"`
}

type updateCarPayload struct {
	Make         *string          `json:"make"`
	Model        *string          `json:"model"`
	Year         *int             `json:"year"`
	Price        *decimal.Decimal `json:"price"`
	Mileage      *int             `json:"mileage"`
	Description  *string          `json:"description"`
	Condition    *string          `json:"condition"`
	Transmission *string          `json:"transmission"`
	FuelType     *string          `json:"fuel_type"`
	Location     *string          `json:"location"`
	Images       *[]string        `json:"images"`

	VIN       *string `json:"vin"`
	HasTuning *bool   `json:"has_tuning"`

	IsFirstOwner       *bool `json:"is_first_owner"`
	IsAccidentFree     *bool `json:"is_accident_free"`
	IsDamaged          *bool `json:"is_damaged"`
	IsServicedAtDealer *bool `json:"is_serviced_at_dealer"`

	IsRegistered          *bool   `json:"is_registered"`
	RegistrationNumber    *string `json:"registration_number"`
	FirstRegistrationDate *string `json:"first_registration_date"`
	ShowRegistrationInfo  *bool   `json:"show_registration_info"`

	IsImported    *bool   `json:"is_imported"`
	ImportCountry *string `json:"import_country"`

	SellerName  *string `json:"seller_name"`
	SellerPhone *string `json:"seller_phone"`
}

// CarsSearch serves the listing search page. `owner=me` switches to the
// caller's own inventory and requires authentication; everything else is
// public and degrades gracefully on store faults.
func CarsSearch(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listing service unavailable"))
			return
		}

		if strings.TrimSpace(r.URL.Query().Get("owner")) == "me" {
			userID := middleware.UserIDFromContext(ctx)
			if userID == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
				return
			}
			mine, err := svc.ListByOwner(ctx, userID)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			w.Header().Set("X-Total-Count", strconv.Itoa(len(mine)))
			w.Header().Set("X-Total-Pages", "1")
			responses.WriteSuccess(w, mine)
			return
		}

		result := svc.Search(ctx, listings.ParseFilterSet(r.URL.Query()), searchPage(r.URL.Query().Get("page")))
		w.Header().Set("X-Total-Count", strconv.FormatInt(result.Total, 10))
		w.Header().Set("X-Total-Pages", strconv.Itoa(result.TotalPages))
		responses.WriteSuccess(w, result.Listings)
	}
}

// CarDetail returns a single listing, annotated with the caller's favorite
// state when authenticated.
func CarDetail(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listing service unavailable"))
			return
		}

		id, err := carIDFromRequest(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		listing, err := svc.Get(ctx, id, middleware.UserIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, listing)
	}
}

// CarCreate persists a new listing owned by the caller. Unlike the other
// mutations it checks credentials itself and reports failures as `{message}`
// bodies, which is what the storefront's create form reads.
func CarCreate(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteMessageError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listing service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(ctx)
		if userID == "" {
			responses.WriteMessageError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "please sign in to create a listing"))
			return
		}

		var payload createCarPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteMessageError(ctx, logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteMessageError(ctx, logg, w, err)
			return
		}

		listing, err := svc.Create(ctx, userID, input)
		if err != nil {
			responses.WriteMessageError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, listing)
	}
}

// CarUpdate applies a partial update to a listing the caller owns.
func CarUpdate(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listing service unavailable"))
			return
		}

		id, err := carIDFromRequest(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload updateCarPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		listing, err := svc.Update(ctx, middleware.UserIDFromContext(ctx), id, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, listing)
	}
}

// CarDelete removes a listing the caller owns.
func CarDelete(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listing service unavailable"))
			return
		}

		id, err := carIDFromRequest(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Delete(ctx, middleware.UserIDFromContext(ctx), id); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"success": true})
	}
}

// searchPage reads the page number the way the storefront does: anything
// that does not parse as a positive number means page one. A page past the
// last one simply yields an empty result.
func searchPage(raw string) int {
	page, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func carIDFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "carID"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "car id is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "listing not found")
	}
	return id, nil
}

func (p createCarPayload) toInput() (listings.CreateListingInput, error) {
	condition, err := enums.ParseCondition(p.Condition)
	if err != nil {
		return listings.CreateListingInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid condition")
	}
	transmission, err := enums.ParseTransmission(p.Transmission)
	if err != nil {
		return listings.CreateListingInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid transmission")
	}
	fuelType, err := enums.ParseFuelType(p.FuelType)
	if err != nil {
		return listings.CreateListingInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid fuel type")
	}
	registrationDate, err := parseDateField(p.FirstRegistrationDate)
	if err != nil {
		return listings.CreateListingInput{}, err
	}

	return listings.CreateListingInput{
		Make:                  p.Make,
		Model:                 p.Model,
		Year:                  p.Year,
		Price:                 p.Price,
		Mileage:               p.Mileage,
		Description:           p.Description,
		Condition:             condition,
		Transmission:          transmission,
		FuelType:              fuelType,
		Location:              p.Location,
		Images:                p.Images,
		VIN:                   p.VIN,
		HasTuning:             p.HasTuning,
		IsFirstOwner:          p.IsFirstOwner,
		IsAccidentFree:        p.IsAccidentFree,
		IsDamaged:             p.IsDamaged,
		IsServicedAtDealer:    p.IsServicedAtDealer,
		IsRegistered:          p.IsRegistered,
		RegistrationNumber:    p.RegistrationNumber,
		FirstRegistrationDate: registrationDate,
		ShowRegistrationInfo:  p.ShowRegistrationInfo,
		IsImported:            p.IsImported,
		ImportCountry:         p.ImportCountry,
		SellerName:            p.SellerName,
		SellerPhone:           p.SellerPhone,
	}, nil
}

func (p updateCarPayload) toInput() (listings.UpdateListingInput, error) {
	input := listings.UpdateListingInput{
		Make:                 p.Make,
		Model:                p.Model,
		Year:                 p.Year,
		Price:                p.Price,
		Mileage:              p.Mileage,
		Description:          p.Description,
		Location:             p.Location,
		Images:               p.Images,
		VIN:                  p.VIN,
		HasTuning:            p.HasTuning,
		IsFirstOwner:         p.IsFirstOwner,
		IsAccidentFree:       p.IsAccidentFree,
		IsDamaged:            p.IsDamaged,
		IsServicedAtDealer:   p.IsServicedAtDealer,
		IsRegistered:         p.IsRegistered,
		RegistrationNumber:   p.RegistrationNumber,
		ShowRegistrationInfo: p.ShowRegistrationInfo,
		IsImported:           p.IsImported,
		ImportCountry:        p.ImportCountry,
		SellerName:           p.SellerName,
		SellerPhone:          p.SellerPhone,
	}

	if p.Condition != nil {
		condition, err := enums.ParseCondition(*p.Condition)
		if err != nil {
			return listings.UpdateListingInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid condition")
		}
		input.Condition = &condition
	}
	if p.Transmission != nil {
		transmission, err := enums.ParseTransmission(*p.Transmission)
		if err != nil {
			return listings.UpdateListingInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid transmission")
		}
		input.Transmission = &transmission
	}
	if p.FuelType != nil {
		fuelType, err := enums.ParseFuelType(*p.FuelType)
		if err != nil {
			return listings.UpdateListingInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid fuel type")
		}
		input.FuelType = &fuelType
	}
	registrationDate, err := parseDateField(p.FirstRegistrationDate)
	if err != nil {
		return listings.UpdateListingInput{}, err
	}
	input.FirstRegistrationDate = registrationDate

	return input, nil
}

func parseDateField(raw *string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	value := strings.TrimSpace(*raw)
	if value == "" {
		return nil, nil
	}
	if parsed, err := time.Parse(dateLayout, value); err == nil {
		return &parsed, nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid first registration date")
	}
	return &parsed, nil
}

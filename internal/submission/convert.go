package submission

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/automarkt/automarkt-backend/internal/listings"
	"github.com/automarkt/automarkt-backend/pkg/enums"
	pkgerrors "github.com/automarkt/automarkt-backend/pkg/errors"
)

// toCreateInput assembles the final listing payload from a validated draft.
// The listing service reapplies the derived defaults, so conditional fields
// are passed through as entered.
func (r DraftRecord) toCreateInput(imageURLs []string) (listings.CreateListingInput, *pkgerrors.Error) {
	price, err := decimal.NewFromString(strings.TrimSpace(r.Price))
	if err != nil {
		return listings.CreateListingInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "price is not a number")
	}
	condition, err := enums.ParseCondition(r.Condition)
	if err != nil {
		return listings.CreateListingInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid condition")
	}
	transmission, err := enums.ParseTransmission(r.Transmission)
	if err != nil {
		return listings.CreateListingInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid transmission")
	}
	fuelType, err := enums.ParseFuelType(r.FuelType)
	if err != nil {
		return listings.CreateListingInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid fuel type")
	}

	input := listings.CreateListingInput{
		Make:                 strings.TrimSpace(r.Make),
		Model:                strings.TrimSpace(r.Model),
		Year:                 r.Year,
		Price:                price,
		Mileage:              r.Mileage,
		Description:          strings.TrimSpace(r.Description),
		Condition:            condition,
		Transmission:         transmission,
		FuelType:             fuelType,
		Location:             strings.TrimSpace(r.Location),
		Images:               append([]string{}, imageURLs...),
		HasTuning:            r.HasTuning,
		IsFirstOwner:         r.IsFirstOwner,
		IsAccidentFree:       r.IsAccidentFree,
		IsDamaged:            r.IsDamaged,
		IsServicedAtDealer:   r.IsServicedAtDealer,
		IsRegistered:         r.IsRegistered,
		ShowRegistrationInfo: r.ShowRegistrationInfo,
		IsImported:           r.IsImported,
		SellerName:           strings.TrimSpace(r.SellerName),
		SellerPhone:          strings.TrimSpace(r.SellerPhone),
	}

	if vin := strings.TrimSpace(r.VIN); vin != "" {
		input.VIN = &vin
	}
	if number := strings.TrimSpace(r.RegistrationNumber); number != "" {
		input.RegistrationNumber = &number
	}
	if raw := strings.TrimSpace(r.FirstRegistrationDate); raw != "" {
		parsed, err := time.Parse(registrationDateLayout, raw)
		if err != nil {
			return listings.CreateListingInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid first registration date")
		}
		input.FirstRegistrationDate = &parsed
	}
	if country := strings.TrimSpace(r.ImportCountry); country != "" {
		input.ImportCountry = &country
	}
	return input, nil
}

package submission

// DraftPatch carries partial field changes. Nil pointers leave the stored
// value untouched, so a step can save only the fields it owns.
type DraftPatch struct {
	Make  *string `json:"make"`
	Model *string `json:"model"`
	Year  *int    `json:"year"`
	VIN   *string `json:"vin"`

	Condition          *string `json:"condition"`
	Mileage            *int    `json:"mileage"`
	HasTuning          *bool   `json:"has_tuning"`
	IsFirstOwner       *bool   `json:"is_first_owner"`
	IsAccidentFree     *bool   `json:"is_accident_free"`
	IsDamaged          *bool   `json:"is_damaged"`
	IsServicedAtDealer *bool   `json:"is_serviced_at_dealer"`

	Transmission          *string `json:"transmission"`
	FuelType              *string `json:"fuel_type"`
	IsRegistered          *bool   `json:"is_registered"`
	RegistrationNumber    *string `json:"registration_number"`
	FirstRegistrationDate *string `json:"first_registration_date"`
	ShowRegistrationInfo  *bool   `json:"show_registration_info"`
	IsImported            *bool   `json:"is_imported"`
	ImportCountry         *string `json:"import_country"`

	Price       *string `json:"price"`
	Description *string `json:"description"`
	Location    *string `json:"location"`

	SellerName  *string `json:"seller_name"`
	SellerPhone *string `json:"seller_phone"`

	Images *[]string `json:"images"`
}

func (p DraftPatch) apply(record *DraftRecord) {
	if p.Make != nil {
		record.Make = *p.Make
	}
	if p.Model != nil {
		record.Model = *p.Model
	}
	if p.Year != nil {
		record.Year = *p.Year
	}
	if p.VIN != nil {
		record.VIN = *p.VIN
	}
	if p.Condition != nil {
		record.Condition = *p.Condition
	}
	if p.Mileage != nil {
		record.Mileage = *p.Mileage
	}
	if p.HasTuning != nil {
		record.HasTuning = *p.HasTuning
	}
	if p.IsFirstOwner != nil {
		record.IsFirstOwner = *p.IsFirstOwner
	}
	if p.IsAccidentFree != nil {
		record.IsAccidentFree = *p.IsAccidentFree
	}
	if p.IsDamaged != nil {
		record.IsDamaged = *p.IsDamaged
	}
	if p.IsServicedAtDealer != nil {
		record.IsServicedAtDealer = *p.IsServicedAtDealer
	}
	if p.Transmission != nil {
		record.Transmission = *p.Transmission
	}
	if p.FuelType != nil {
		record.FuelType = *p.FuelType
	}
	if p.IsRegistered != nil {
		record.IsRegistered = *p.IsRegistered
	}
	if p.RegistrationNumber != nil {
		record.RegistrationNumber = *p.RegistrationNumber
	}
	if p.FirstRegistrationDate != nil {
		record.FirstRegistrationDate = *p.FirstRegistrationDate
	}
	if p.ShowRegistrationInfo != nil {
		record.ShowRegistrationInfo = *p.ShowRegistrationInfo
	}
	if p.IsImported != nil {
		record.IsImported = *p.IsImported
	}
	if p.ImportCountry != nil {
		record.ImportCountry = *p.ImportCountry
	}
	if p.Price != nil {
		record.Price = *p.Price
	}
	if p.Description != nil {
		record.Description = *p.Description
	}
	if p.Location != nil {
		record.Location = *p.Location
	}
	if p.SellerName != nil {
		record.SellerName = *p.SellerName
	}
	if p.SellerPhone != nil {
		record.SellerPhone = *p.SellerPhone
	}
	if p.Images != nil {
		record.Images = append([]string{}, (*p.Images)...)
	}
}

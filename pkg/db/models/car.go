package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	dbtypes "github.com/automarkt/automarkt-backend/pkg/db/types"
	"github.com/automarkt/automarkt-backend/pkg/enums"
)

// Car represents the canonical vehicle listing.
type Car struct {
	ID     uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	UserID string    `gorm:"column:user_id;not null;index:cars_user_id_idx"`

	Make         string              `gorm:"column:make;not null;index:cars_make_idx"`
	Model        string              `gorm:"column:model;not null"`
	Year         int                 `gorm:"column:year;not null"`
	Price        decimal.Decimal     `gorm:"column:price;type:numeric(12,2);not null"`
	Mileage      int                 `gorm:"column:mileage;not null"`
	Description  string              `gorm:"column:description;not null"`
	Condition    enums.Condition     `gorm:"column:condition;not null"`
	Transmission enums.Transmission  `gorm:"column:transmission;not null"`
	FuelType     enums.FuelType      `gorm:"column:fuel_type;not null"`
	Location     string              `gorm:"column:location;not null"`
	Images       dbtypes.StringArray `gorm:"column:images;type:text;not null"`

	VIN       *string `gorm:"column:vin"`
	HasTuning bool    `gorm:"column:has_tuning;not null;default:false"`

	IsFirstOwner       bool `gorm:"column:is_first_owner;not null;default:false"`
	IsAccidentFree     bool `gorm:"column:is_accident_free;not null;default:false"`
	IsDamaged          bool `gorm:"column:is_damaged;not null;default:false"`
	IsServicedAtDealer bool `gorm:"column:is_serviced_at_dealer;not null;default:false"`

	IsRegistered          bool       `gorm:"column:is_registered;not null;default:false"`
	RegistrationNumber    *string    `gorm:"column:registration_number"`
	FirstRegistrationDate *time.Time `gorm:"column:first_registration_date"`
	ShowRegistrationInfo  bool       `gorm:"column:show_registration_info;not null;default:false"`

	IsImported    bool    `gorm:"column:is_imported;not null;default:false"`
	ImportCountry *string `gorm:"column:import_country"`

	SellerName  string `gorm:"column:seller_name;not null"`
	SellerPhone string `gorm:"column:seller_phone;not null"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index:cars_created_at_idx"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns the identifier app-side so inserts work across drivers.
func (c *Car) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

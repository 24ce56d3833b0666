package listings

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/automarkt/automarkt-backend/pkg/db/models"
	dbtypes "github.com/automarkt/automarkt-backend/pkg/db/types"
	"github.com/automarkt/automarkt-backend/pkg/enums"
	"github.com/automarkt/automarkt-backend/pkg/pagination"
)

type carOverride func(*models.Car)

func testPage() pagination.Params {
	return pagination.Params{Page: 1, PageSize: pagination.DefaultPageSize}
}

func mustCreateTestCar(t *testing.T, tx *gorm.DB, userID string, overrides ...carOverride) *models.Car {
	t.Helper()
	car := &models.Car{
		UserID:       userID,
		Make:         "BMW",
		Model:        "3 Series",
		Year:         2021,
		Price:        decimal.NewFromInt(120000),
		Mileage:      15000,
		Description:  fmt.Sprintf("Well maintained test vehicle %d", time.Now().UnixNano()),
		Condition:    enums.ConditionUsed,
		Transmission: enums.TransmissionManual,
		FuelType:     enums.FuelTypeGasoline,
		Location:     "Warsaw",
		Images:       dbtypes.StringArray{"https://img.example.com/1.jpg"},
		SellerName:   "Test Seller",
		SellerPhone:  "+48123456789",
	}
	for _, override := range overrides {
		override(car)
	}
	if err := tx.Create(car).Error; err != nil {
		t.Fatalf("create car: %v", err)
	}
	return car
}

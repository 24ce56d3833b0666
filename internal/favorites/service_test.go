package favorites

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/automarkt/automarkt-backend/internal/listings"
	"github.com/automarkt/automarkt-backend/pkg/db/models"
	dbtypes "github.com/automarkt/automarkt-backend/pkg/db/types"
	"github.com/automarkt/automarkt-backend/pkg/enums"
	pkgerrors "github.com/automarkt/automarkt-backend/pkg/errors"
)

var testDBSeq atomic.Int64

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:favorites_test_%d?mode=memory&cache=shared", testDBSeq.Add(1))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := conn.AutoMigrate(&models.Car{}, &models.UserFavorite{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return conn
}

func newTestService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		FavoritesRepo: NewRepository(conn),
		ListingsRepo:  listings.NewRepository(conn),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func mustCreateTestCar(t *testing.T, conn *gorm.DB, userID string) *models.Car {
	t.Helper()
	car := &models.Car{
		UserID:       userID,
		Make:         "Audi",
		Model:        "A4",
		Year:         2020,
		Price:        decimal.NewFromInt(89000),
		Mileage:      42000,
		Description:  fmt.Sprintf("Favorites test vehicle %d", time.Now().UnixNano()),
		Condition:    enums.ConditionUsed,
		Transmission: enums.TransmissionAutomatic,
		FuelType:     enums.FuelTypeDiesel,
		Location:     "Krakow",
		Images:       dbtypes.StringArray{"https://img.example.com/a4.jpg"},
		SellerName:   "Test Seller",
		SellerPhone:  "+48123456789",
	}
	if err := conn.Create(car).Error; err != nil {
		t.Fatalf("create car: %v", err)
	}
	return car
}

func TestAddIsIdempotentAtStoreLevel(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)
	car := mustCreateTestCar(t, conn, "seller_1")

	for i := 0; i < 3; i++ {
		if err := repo.Add(context.Background(), "buyer_1", car.ID); err != nil {
			t.Fatalf("add favorite: %v", err)
		}
	}

	count, err := repo.Count(context.Background(), "buyer_1")
	if err != nil {
		t.Fatalf("count favorites: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected a single favorite row, got %d", count)
	}
}

func TestAddMissingListingIsNotFound(t *testing.T) {
	conn := openTestDB(t)
	svc := newTestService(t, conn)

	err := svc.Add(context.Background(), "buyer_1", uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestAddRequiresAuthenticatedUser(t *testing.T) {
	conn := openTestDB(t)
	svc := newTestService(t, conn)
	car := mustCreateTestCar(t, conn, "seller_1")

	err := svc.Add(context.Background(), "", car.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestListReturnsNewestFirst(t *testing.T) {
	conn := openTestDB(t)
	svc := newTestService(t, conn)

	first := mustCreateTestCar(t, conn, "seller_1")
	second := mustCreateTestCar(t, conn, "seller_2")

	if err := svc.Add(context.Background(), "buyer_1", first.ID); err != nil {
		t.Fatalf("add first favorite: %v", err)
	}
	// Distinct created_at so the ordering is deterministic.
	time.Sleep(5 * time.Millisecond)
	if err := svc.Add(context.Background(), "buyer_1", second.ID); err != nil {
		t.Fatalf("add second favorite: %v", err)
	}

	items, err := svc.List(context.Background(), "buyer_1")
	if err != nil {
		t.Fatalf("list favorites: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 favorites, got %d", len(items))
	}
	if items[0].CarID != second.ID || items[1].CarID != first.ID {
		t.Fatalf("expected newest favorite first, got %v then %v", items[0].CarID, items[1].CarID)
	}
	if items[0].Car.Make != "Audi" || items[0].Car.ID != second.ID {
		t.Fatalf("expected nested listing payload, got %+v", items[0].Car)
	}
}

func TestListDoesNotLeakOtherUsers(t *testing.T) {
	conn := openTestDB(t)
	svc := newTestService(t, conn)
	car := mustCreateTestCar(t, conn, "seller_1")

	if err := svc.Add(context.Background(), "buyer_1", car.ID); err != nil {
		t.Fatalf("add favorite: %v", err)
	}

	items, err := svc.List(context.Background(), "buyer_2")
	if err != nil {
		t.Fatalf("list favorites: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty list for another user, got %d items", len(items))
	}
}

func TestListRequiresAuthenticatedUser(t *testing.T) {
	conn := openTestDB(t)
	svc := newTestService(t, conn)

	_, err := svc.List(context.Background(), "")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestRemoveAbsentFavoriteIsNoOp(t *testing.T) {
	conn := openTestDB(t)
	svc := newTestService(t, conn)

	if err := svc.Remove(context.Background(), "buyer_1", uuid.New()); err != nil {
		t.Fatalf("expected no-op remove, got %v", err)
	}
}

func TestAddThenRemoveRestoresBaseline(t *testing.T) {
	conn := openTestDB(t)
	svc := newTestService(t, conn)
	repo := NewRepository(conn)
	car := mustCreateTestCar(t, conn, "seller_1")

	baseline, err := repo.Count(context.Background(), "buyer_1")
	if err != nil {
		t.Fatalf("count favorites: %v", err)
	}

	if err := svc.Add(context.Background(), "buyer_1", car.ID); err != nil {
		t.Fatalf("add favorite: %v", err)
	}
	if err := svc.Remove(context.Background(), "buyer_1", car.ID); err != nil {
		t.Fatalf("remove favorite: %v", err)
	}

	after, err := repo.Count(context.Background(), "buyer_1")
	if err != nil {
		t.Fatalf("count favorites: %v", err)
	}
	if after != baseline {
		t.Fatalf("expected count %d after add+remove, got %d", baseline, after)
	}
}

func TestIsFavoritedToggles(t *testing.T) {
	conn := openTestDB(t)
	svc := newTestService(t, conn)
	car := mustCreateTestCar(t, conn, "seller_1")

	favorited, err := svc.IsFavorited(context.Background(), "buyer_1", car.ID)
	if err != nil || favorited {
		t.Fatalf("expected not favorited, got %v err=%v", favorited, err)
	}

	if err := svc.Add(context.Background(), "buyer_1", car.ID); err != nil {
		t.Fatalf("add favorite: %v", err)
	}
	favorited, err = svc.IsFavorited(context.Background(), "buyer_1", car.ID)
	if err != nil || !favorited {
		t.Fatalf("expected favorited, got %v err=%v", favorited, err)
	}
}

func TestIsFavoritedAnonymousNeverErrors(t *testing.T) {
	conn := openTestDB(t)
	svc := newTestService(t, conn)

	favorited, err := svc.IsFavorited(context.Background(), "", uuid.New())
	if err != nil {
		t.Fatalf("anonymous check must not error: %v", err)
	}
	if favorited {
		t.Fatal("anonymous caller can never have favorites")
	}
}

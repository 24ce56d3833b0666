package listings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/automarkt/automarkt-backend/pkg/db/models"
	"github.com/automarkt/automarkt-backend/pkg/pagination"
)

func TestRepositoryFindOwnedMasksOtherOwners(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)

	car := mustCreateTestCar(t, conn, "owner-1")

	if _, err := repo.FindOwned(context.Background(), car.ID, "owner-1"); err != nil {
		t.Fatalf("owner lookup failed: %v", err)
	}

	_, err := repo.FindOwned(context.Background(), car.ID, "intruder")
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected record-not-found for non-owner, got %v", err)
	}
}

func TestRepositoryDeleteOwned(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)

	car := mustCreateTestCar(t, conn, "owner-1")

	if err := repo.DeleteOwned(context.Background(), car.ID, "intruder"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected not-found for non-owner delete, got %v", err)
	}
	if _, err := repo.FindByID(context.Background(), car.ID); err != nil {
		t.Fatalf("row must survive a non-owner delete: %v", err)
	}

	if err := repo.DeleteOwned(context.Background(), car.ID, "owner-1"); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}
	if _, err := repo.FindByID(context.Background(), car.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected row gone, got %v", err)
	}

	if err := repo.DeleteOwned(context.Background(), uuid.New(), "owner-1"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected not-found for missing row, got %v", err)
	}
}

func TestRepositorySearchPagination(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		created := base.Add(time.Duration(i) * time.Minute)
		mustCreateTestCar(t, conn, "owner-1", func(c *models.Car) {
			c.CreatedAt = created
		})
	}

	pageOne, total, err := repo.Search(context.Background(), FilterSet{}, pagination.Params{Page: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("search page 1: %v", err)
	}
	if total != 5 {
		t.Fatalf("expected total 5, got %d", total)
	}
	if len(pageOne) != 2 {
		t.Fatalf("expected 2 rows on page 1, got %d", len(pageOne))
	}

	_, totalPage3, err := repo.Search(context.Background(), FilterSet{}, pagination.Params{Page: 3, PageSize: 2})
	if err != nil {
		t.Fatalf("search page 3: %v", err)
	}
	if totalPage3 != total {
		t.Fatalf("total must be page-invariant: %d vs %d", totalPage3, total)
	}

	beyond, _, err := repo.Search(context.Background(), FilterSet{}, pagination.Params{Page: 9, PageSize: 2})
	if err != nil {
		t.Fatalf("search beyond last page: %v", err)
	}
	if len(beyond) != 0 {
		t.Fatalf("expected empty page beyond last, got %d rows", len(beyond))
	}

	if got := pagination.TotalPages(total, 2); got != 3 {
		t.Fatalf("expected 3 total pages, got %d", got)
	}
}

func TestRepositorySearchOrdersNewestFirst(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)

	old := mustCreateTestCar(t, conn, "owner-1", func(c *models.Car) {
		c.CreatedAt = time.Now().Add(-2 * time.Hour)
	})
	recent := mustCreateTestCar(t, conn, "owner-1", func(c *models.Car) {
		c.CreatedAt = time.Now().Add(-time.Minute)
	})

	rows, _, err := repo.Search(context.Background(), FilterSet{}, testPage())
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].ID != recent.ID || rows[1].ID != old.ID {
		t.Fatal("expected newest-first ordering")
	}
}

func TestRepositoryListByOwner(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)

	mustCreateTestCar(t, conn, "owner-1")
	mustCreateTestCar(t, conn, "owner-1")
	mustCreateTestCar(t, conn, "owner-2")

	rows, err := repo.ListByOwner(context.Background(), "owner-1")
	if err != nil {
		t.Fatalf("list by owner: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 owned rows, got %d", len(rows))
	}
	for _, row := range rows {
		if row.UserID != "owner-1" {
			t.Fatalf("unexpected owner %s", row.UserID)
		}
	}
}

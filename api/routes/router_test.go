package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/automarkt/automarkt-backend/internal/favorites"
	"github.com/automarkt/automarkt-backend/internal/listings"
	"github.com/automarkt/automarkt-backend/internal/media"
	"github.com/automarkt/automarkt-backend/internal/submission"
	"github.com/automarkt/automarkt-backend/pkg/config"
	"github.com/automarkt/automarkt-backend/pkg/logger"
	"github.com/automarkt/automarkt-backend/pkg/metrics"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubListingService struct{}

func (stubListingService) Search(context.Context, listings.FilterSet, int) listings.SearchResultDTO {
	return listings.SearchResultDTO{Listings: []listings.ListingDTO{}, Page: 1, ViewMode: "grid"}
}

func (stubListingService) Get(context.Context, uuid.UUID, string) (*listings.ListingDTO, error) {
	panic("unimplemented")
}

func (stubListingService) Create(context.Context, string, listings.CreateListingInput) (*listings.ListingDTO, error) {
	panic("unimplemented")
}

func (stubListingService) Update(context.Context, string, uuid.UUID, listings.UpdateListingInput) (*listings.ListingDTO, error) {
	panic("unimplemented")
}

func (stubListingService) Delete(context.Context, string, uuid.UUID) error {
	panic("unimplemented")
}

func (stubListingService) ListByOwner(context.Context, string) ([]listings.ListingDTO, error) {
	panic("unimplemented")
}

type stubFavoritesService struct{}

func (stubFavoritesService) Add(context.Context, string, uuid.UUID) error {
	panic("unimplemented")
}

func (stubFavoritesService) Remove(context.Context, string, uuid.UUID) error {
	panic("unimplemented")
}

func (stubFavoritesService) IsFavorited(context.Context, string, uuid.UUID) (bool, error) {
	panic("unimplemented")
}

func (stubFavoritesService) List(context.Context, string) ([]favorites.FavoriteDTO, error) {
	panic("unimplemented")
}

type stubMediaService struct{}

func (stubMediaService) UploadImage(context.Context, string, media.Image) (string, error) {
	panic("unimplemented")
}

func (stubMediaService) UploadBatch(context.Context, string, []media.Image) ([]string, error) {
	panic("unimplemented")
}

type stubSubmissionService struct{}

func (stubSubmissionService) Get(context.Context, string) (*submission.Draft, error) {
	panic("unimplemented")
}

func (stubSubmissionService) Patch(context.Context, string, submission.DraftPatch) (*submission.Draft, error) {
	panic("unimplemented")
}

func (stubSubmissionService) Next(context.Context, string) (*submission.Draft, error) {
	panic("unimplemented")
}

func (stubSubmissionService) Back(context.Context, string) (*submission.Draft, error) {
	panic("unimplemented")
}

func (stubSubmissionService) GoTo(context.Context, string, submission.Step) (*submission.Draft, error) {
	panic("unimplemented")
}

func (stubSubmissionService) Reset(context.Context, string) error {
	panic("unimplemented")
}

func (stubSubmissionService) Submit(context.Context, string, []media.Image) (*listings.ListingDTO, error) {
	panic("unimplemented")
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.JWT = config.JWTConfig{Secret: "test-secret", Issuer: "automarkt-test", ExpirationMinutes: 60}
	cfg.Media = config.MediaConfig{MaxUploadMB: 10, MaxImages: 12}

	registry := prometheus.NewRegistry()
	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("error"), Output: io.Discard})

	return NewRouter(RouterParams{
		Cfg:            cfg,
		Logg:           logg,
		DB:             stubPinger{},
		Redis:          stubPinger{},
		GCS:            stubPinger{},
		Listings:       stubListingService{},
		Favorites:      stubFavoritesService{},
		Media:          stubMediaService{},
		Submission:     stubSubmissionService{},
		HTTPMetrics:    metrics.NewHTTPMetrics(registry),
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})
}

func TestRouterWiring(t *testing.T) {
	router := newTestRouter(t)

	do := func(method, target string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
		return rec
	}

	t.Run("liveness is public", func(t *testing.T) {
		rec := do(http.MethodGet, "/health/live")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if rec.Header().Get("X-AutoMarkt-Env") != "test" {
			t.Fatalf("expected env header, got %v", rec.Header())
		}
	})

	t.Run("readiness pings every dependency", func(t *testing.T) {
		rec := do(http.MethodGet, "/health/ready")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("search is anonymous", func(t *testing.T) {
		rec := do(http.MethodGet, "/api/cars")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("writes demand credentials", func(t *testing.T) {
		for _, tc := range []struct{ method, target string }{
			{http.MethodPost, "/api/cars"},
			{http.MethodPatch, "/api/cars/" + uuid.New().String()},
			{http.MethodDelete, "/api/cars/" + uuid.New().String()},
			{http.MethodGet, "/api/favorites"},
			{http.MethodPost, "/api/favorites"},
			{http.MethodDelete, "/api/favorites"},
			{http.MethodPost, "/api/images"},
			{http.MethodGet, "/api/drafts"},
			{http.MethodPost, "/api/drafts/submit"},
		} {
			rec := do(tc.method, tc.target)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("%s %s: expected 401, got %d", tc.method, tc.target, rec.Code)
			}
		}
	})

	t.Run("anonymous create fails with a message body", func(t *testing.T) {
		rec := do(http.MethodPost, "/api/cars")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"message"`) {
			t.Fatalf("expected message body, got %s", rec.Body.String())
		}
	})

	t.Run("metrics endpoint is mounted", func(t *testing.T) {
		rec := do(http.MethodGet, "/metrics")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("unknown routes fall through to 404", func(t *testing.T) {
		rec := do(http.MethodGet, "/api/unknown")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

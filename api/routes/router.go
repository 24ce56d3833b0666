package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/automarkt/automarkt-backend/api/controllers"
	"github.com/automarkt/automarkt-backend/api/middleware"
	"github.com/automarkt/automarkt-backend/internal/favorites"
	"github.com/automarkt/automarkt-backend/internal/listings"
	"github.com/automarkt/automarkt-backend/internal/media"
	"github.com/automarkt/automarkt-backend/internal/submission"
	"github.com/automarkt/automarkt-backend/pkg/config"
	"github.com/automarkt/automarkt-backend/pkg/db"
	"github.com/automarkt/automarkt-backend/pkg/logger"
	"github.com/automarkt/automarkt-backend/pkg/metrics"
	"github.com/automarkt/automarkt-backend/pkg/redis"
	"github.com/automarkt/automarkt-backend/pkg/storage/gcs"
)

// RouterParams carries everything the HTTP surface depends on.
type RouterParams struct {
	Cfg  *config.Config
	Logg *logger.Logger

	DB    db.Pinger
	Redis redis.Pinger
	GCS   gcs.Pinger

	Listings   listings.Service
	Favorites  favorites.Service
	Media      media.Service
	Submission submission.Service

	HTTPMetrics    *metrics.HTTPMetrics
	MetricsHandler http.Handler
}

// NewRouter assembles the API surface.
func NewRouter(p RouterParams) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(p.Logg),
		middleware.RequestID(p.Logg),
		middleware.Logging(p.Logg),
		middleware.CORS(),
		middleware.Metrics(p.HTTPMetrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(p.Cfg))
		r.Get("/ready", controllers.HealthReady(p.Cfg, p.Logg, p.DB, p.Redis, p.GCS))
	})

	if p.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", p.MetricsHandler)
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/cars", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.OptionalAuth(p.Cfg.JWT, p.Logg))
				r.Get("/", controllers.CarsSearch(p.Listings, p.Logg))
				r.Get("/{carID}", controllers.CarDetail(p.Listings, p.Logg))
				// Create enforces credentials itself so its failures keep
				// the `{message}` body shape.
				r.Post("/", controllers.CarCreate(p.Listings, p.Logg))
			})
			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(p.Cfg.JWT, p.Logg))
				r.Patch("/{carID}", controllers.CarUpdate(p.Listings, p.Logg))
				r.Delete("/{carID}", controllers.CarDelete(p.Listings, p.Logg))
			})
		})

		r.Route("/favorites", func(r chi.Router) {
			r.Use(middleware.Auth(p.Cfg.JWT, p.Logg))
			r.Get("/", controllers.FavoritesList(p.Favorites, p.Logg))
			r.Post("/", controllers.FavoriteAdd(p.Favorites, p.Logg))
			r.Delete("/", controllers.FavoriteRemove(p.Favorites, p.Logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(p.Cfg.JWT, p.Logg))
			r.Post("/images", controllers.ImageUpload(p.Media, p.Cfg.Media.MaxUploadMB, p.Logg))

			r.Route("/drafts", func(r chi.Router) {
				r.Get("/", controllers.DraftFetch(p.Submission, p.Logg))
				r.Put("/", controllers.DraftPatch(p.Submission, p.Logg))
				r.Delete("/", controllers.DraftReset(p.Submission, p.Logg))
				r.Post("/next", controllers.DraftNext(p.Submission, p.Logg))
				r.Post("/back", controllers.DraftBack(p.Submission, p.Logg))
				r.Post("/goto", controllers.DraftGoTo(p.Submission, p.Logg))
				r.Post("/submit", controllers.DraftSubmit(p.Submission, p.Cfg.Media.MaxUploadMB, p.Cfg.Media.MaxImages, p.Logg))
			})
		})
	})

	return r
}

package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/automarkt/automarkt-backend/api/routes"
	"github.com/automarkt/automarkt-backend/internal/favorites"
	"github.com/automarkt/automarkt-backend/internal/listings"
	"github.com/automarkt/automarkt-backend/internal/media"
	"github.com/automarkt/automarkt-backend/internal/submission"
	"github.com/automarkt/automarkt-backend/pkg/config"
	"github.com/automarkt/automarkt-backend/pkg/db"
	"github.com/automarkt/automarkt-backend/pkg/logger"
	"github.com/automarkt/automarkt-backend/pkg/metrics"
	"github.com/automarkt/automarkt-backend/pkg/migrate"
	"github.com/automarkt/automarkt-backend/pkg/redis"
	"github.com/automarkt/automarkt-backend/pkg/storage/gcs"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap object storage", err)
		os.Exit(1)
	}
	defer func() {
		if err := gcsClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing object storage", err)
		}
	}()

	listingsRepo := listings.NewRepository(dbClient.DB())
	favoritesRepo := favorites.NewRepository(dbClient.DB())

	listingsService, err := listings.NewService(listings.ServiceParams{
		Repo:      listingsRepo,
		DBClient:  dbClient,
		Favorites: favoritesRepo,
		Logger:    logg,
		PageSize:  cfg.Search.PageSize,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create listings service", err)
		os.Exit(1)
	}

	favoritesService, err := favorites.NewService(favorites.ServiceParams{
		FavoritesRepo: favoritesRepo,
		ListingsRepo:  listingsRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create favorites service", err)
		os.Exit(1)
	}

	mediaService, err := media.NewService(media.ServiceParams{
		Storage:     gcsClient,
		Logger:      logg,
		MaxUploadMB: cfg.Media.MaxUploadMB,
		MaxImages:   cfg.Media.MaxImages,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create media service", err)
		os.Exit(1)
	}

	draftStore, err := submission.NewRedisStore(redisClient, logg, cfg.Drafts.TTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create draft store", err)
		os.Exit(1)
	}

	submissionService, err := submission.NewService(submission.ServiceParams{
		Store:    draftStore,
		Listings: listingsService,
		Media:    mediaService,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create submission service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	instance := os.Getenv("DYNO")
	if instance == "" {
		instance = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Cfg:            cfg,
			Logg:           logg,
			DB:             dbClient,
			Redis:          redisClient,
			GCS:            gcsClient,
			Listings:       listingsService,
			Favorites:      favoritesService,
			Media:          mediaService,
			Submission:     submissionService,
			HTTPMetrics:    metrics.NewHTTPMetrics(registry),
			MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

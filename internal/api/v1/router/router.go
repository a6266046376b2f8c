package router

import (
	"context"
	"database/sql"
	"io"
	"net/http"
	"strings"
	"time"

	"boothdesk/internal/api/v1/handler"
	"boothdesk/internal/cache"
	"boothdesk/internal/config"
	"boothdesk/internal/dbx"
	"boothdesk/internal/generation"
	"boothdesk/internal/middleware"
	"boothdesk/internal/migrations"
	"boothdesk/internal/pubsub"
	"boothdesk/internal/repository"
	"boothdesk/internal/service"
	"boothdesk/internal/storage"

	"github.com/go-playground/validator/v10"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// New wires the API. The returned cleanup closes the database and the
// optional integrations.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (http.Handler, func(), error) {
	logger.Info().Str("environment", cfg.Environment).Msg("App environment loaded")

	var closers []io.Closer
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i].Close(); err != nil {
				logger.Warn().Err(err).Msg("Error during shutdown")
			}
		}
	}

	// 1. Open DB connection (connection pooling)
	db, err := dbx.Open(ctx, cfg.DBConnectionString, cfg.IsDevelopment())
	if err != nil {
		return nil, nil, err
	}
	closers = append(closers, db)
	logger.Info().Msg("Database connection successful")

	if cfg.RunMigrations {
		if err := migrations.Up(ctx, db); err != nil {
			cleanup()
			return nil, nil, err
		}
		logger.Info().Msg("Migrations applied")
	}

	// 2. Checklist read cache
	var checklistCache cache.Cache = cache.NewMemory()
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, rc)
		checklistCache = rc
		logger.Info().Msg("Redis checklist cache enabled")
	}

	// 3. Contract storage (optional)
	var store storage.ObjectStore
	if cfg.StorageEnabled() {
		s3Client, err := storage.NewS3Client(ctx, cfg)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		store = storage.NewS3Store(s3Client, cfg.S3Bucket)
	} else {
		logger.Warn().Msg("S3 storage not configured; contract endpoints are disabled")
	}

	// 4. Pub/Sub publisher (optional)
	var publisher pubsub.Publisher
	if cfg.PubSubEnabled() {
		p, err := pubsub.NewPublisher(ctx, cfg)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, p)
		publisher = p
	} else {
		logger.Warn().Msg("GCP project not configured; asynchronous generation is disabled")
	}

	// 5. AI generation client
	aiKey, err := service.ResolveAIKey(ctx, cfg)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	generator := generation.NewHTTPClient(cfg.AIGenerationURL, aiKey, cfg.AIRequestTimeout)

	// 6. Initialize validator
	validate := validator.New(validator.WithRequiredStructEnabled())

	// 7. Initialize repositories & services & handlers
	profileRepo := repository.NewProfileRepo(db)
	eventRepo := repository.NewEventRepo(db)
	checklistRepo := repository.NewChecklistRepo(db)
	leadRepo := repository.NewLeadRepo(db)
	contentRepo := repository.NewContentRepo(db)
	dlqRepo := repository.NewDLQRepository(db)

	accessSvc := service.NewAccessService(profileRepo, time.Now, logger)
	userSvc := service.NewUserService(profileRepo, logger)
	eventSvc := service.NewEventService(eventRepo, accessSvc, checklistCache, logger)
	checklistSvc := service.NewChecklistService(checklistRepo, accessSvc, checklistCache, cfg.ChecklistCacheTTL, logger)
	contractSvc := service.NewContractService(eventRepo, accessSvc, store, cfg.ContractURLTTL, logger)
	leadSvc := service.NewLeadService(leadRepo, accessSvc, logger)
	contentSvc := service.NewContentService(contentRepo, accessSvc, generator, publisher, cfg.PubSubGenerationTopic, logger)
	subscriptionSvc := service.NewSubscriptionService(profileRepo, logger)
	stripeSvc := service.NewStripeService(cfg, profileRepo, subscriptionSvc, logger)
	dlqSvc := service.NewDLQService(dlqRepo, logger)

	checklistHandler := handler.NewChecklistHandler(checklistSvc, validate, logger)
	contractHandler := handler.NewContractHandler(contractSvc, logger)
	userHandler := handler.NewUserHandler(userSvc, accessSvc, validate, logger)
	eventHandler := handler.NewEventHandler(eventSvc, checklistHandler, contractHandler, validate, logger)
	leadHandler := handler.NewLeadHandler(leadSvc, validate, logger)
	contentHandler := handler.NewContentHandler(contentSvc, validate, logger)
	subscriptionHandler := handler.NewSubscriptionHandler(stripeSvc, logger)
	dlqHandler := handler.NewDLQHandler(dlqSvc, logger)

	// 8. Initialize middleware
	authMiddleware := middleware.AuthMiddleware(cfg.JWTSecret, logger)
	isLocalDev := cfg.PubSubEmulatorHost != ""
	pubsubAuthMiddleware := middleware.PubSubAuthMiddleware(isLocalDev, cfg.PubSubPushAudience, cfg.PubSubPushServiceAccountEmail, logger)

	// 9. Create ServeMux router
	mux := http.NewServeMux()

	apiV1Mux := http.NewServeMux()
	userHandler.RegisterRoutes(apiV1Mux, authMiddleware)
	eventHandler.RegisterRoutes(apiV1Mux, authMiddleware)
	checklistHandler.RegisterRoutes(apiV1Mux, authMiddleware)
	leadHandler.RegisterRoutes(apiV1Mux, authMiddleware)
	contentHandler.RegisterRoutes(apiV1Mux, authMiddleware)
	subscriptionHandler.RegisterRoutes(apiV1Mux, authMiddleware)
	dlqHandler.RegisterRoutes(apiV1Mux, pubsubAuthMiddleware)

	// Mount the API v1 routes under /v1
	mux.Handle("/v1/", http.StripPrefix("/v1", apiV1Mux))
	mux.HandleFunc("/healthz", healthz(db))

	// Redirect /api/* to /v1/* for backward compatibility
	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/api/")
		http.Redirect(w, r, "/v1/"+rest, http.StatusMovedPermanently)
	})

	// 10. Apply CORS middleware
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	})

	return middleware.LoggerMiddleware(logger)(c.Handler(mux)), cleanup, nil
}

func healthz(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}
}

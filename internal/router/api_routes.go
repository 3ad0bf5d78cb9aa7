package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"wellwatch/internal/cache"
	"wellwatch/internal/config"
	"wellwatch/internal/handler"
	"wellwatch/internal/middleware"
	"wellwatch/internal/recordstore"
	"wellwatch/internal/registry"
	"wellwatch/internal/repository"
	"wellwatch/internal/service"
	"wellwatch/internal/utils"
)

func SetupAPIRoutes(
	router fiber.Router,
	db *sqlx.DB,
	redisClient *redis.Client,
	cfg *config.Config,
) {
	logger := utils.GetLogger()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)

	// External collaborators
	store := recordstore.NewClient(cfg.RecordStoreBaseURL, cfg.RecordStoreAPIKey, cfg.RecordStoreTimeout)
	registryClient := registry.NewHTTPClient(cfg.RegistryBaseURL, cfg.RegistryTimeout)

	// Enrichment cache lives in Redis; it is the only state shared across
	// requests.
	var wellCache cache.Cache
	if redisClient != nil {
		wellCache = cache.NewRedis(redisClient, "well:")
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, cfg)
	excelService := service.NewExcelService()
	quota := service.NewQuotaGate(store, cfg.PlanLimits, cfg.DefaultPlan)
	enricher := service.NewWellEnricher(
		registryClient,
		wellCache,
		cfg.EnrichCacheTTL,
		cfg.EnrichFanout,
		service.FixedDelayPacer{Delay: cfg.EnrichPause},
		logger,
	)
	committer := service.NewBatchCommitter(
		store,
		cfg.BatchSize,
		cfg.MaxBatchErrors,
		service.FixedDelayPacer{Delay: cfg.BatchDelay},
		logger,
	)
	importService := service.NewImportService(store, quota, enricher, committer, cfg.StatePrefix, logger)

	// Initialize Asynq client (optional - only if Redis is available)
	var asynqClient *asynq.Client
	if redisClient != nil {
		asynqClient = asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.AsynqRedisAddr,
			Password: cfg.AsynqRedisPassword,
			DB:       cfg.AsynqRedisDB,
		})
	}

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	importHandler := handler.NewImportHandler(importService, excelService, sessionRepo, userRepo, asynqClient, cfg)

	// Public routes
	auth := router.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)

	// Protected routes
	protected := router.Group("", middleware.AuthMiddleware(cfg))

	protected.Get("/auth/me", authHandler.Me)
	protected.Get("/plan", importHandler.Plan)

	imports := protected.Group("/imports")
	imports.Get("/sessions", importHandler.Sessions)
	imports.Get("/sessions/:id", importHandler.SessionDetail)
	imports.Get("/reports/:filename", importHandler.ErrorReport)
	imports.Get("/:kind/template", importHandler.Template)
	imports.Post("/:kind/preview", importHandler.Preview)
	imports.Post("/:kind/commit", importHandler.Commit)
	imports.Post("/:kind/upload", importHandler.Upload)
}

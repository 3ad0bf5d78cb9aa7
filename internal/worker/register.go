package worker

import (
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"wellwatch/internal/cache"
	"wellwatch/internal/config"
	"wellwatch/internal/registry"
	"wellwatch/internal/service"
	"wellwatch/internal/utils"
)

func RegisterHandlers(mux *asynq.ServeMux, redisClient *redis.Client, cfg *config.Config) {
	logger := utils.GetLogger()

	registryClient := registry.NewHTTPClient(cfg.RegistryBaseURL, cfg.RegistryTimeout)
	wellCache := cache.NewRedis(redisClient, "well:")
	enricher := service.NewWellEnricher(
		registryClient,
		wellCache,
		cfg.EnrichCacheTTL,
		cfg.EnrichFanout,
		service.FixedDelayPacer{Delay: cfg.EnrichPause},
		logger,
	)

	refreshHandler := NewRefreshHandler(enricher, logger)
	mux.HandleFunc(TypeWellRefresh, refreshHandler.HandleRefresh)
}

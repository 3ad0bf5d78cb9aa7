package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"wellwatch/internal/models"
)

type Config struct {
	// Application
	AppName string
	AppEnv  string
	AppPort string
	AppURL  string

	// Database
	DBHost            string
	DBPort            string
	DBDatabase        string
	DBUsername        string
	DBPassword        string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// JWT
	JWTSecret       string
	JWTAccessExpire time.Duration

	// Upload
	UploadMaxSize int
	UploadPath    string
	ExportPath    string

	// Record store (external persistent store for monitored records)
	RecordStoreBaseURL string
	RecordStoreAPIKey  string
	RecordStoreTimeout time.Duration

	// Well registry
	RegistryBaseURL string
	RegistryTimeout time.Duration

	// Import pipeline
	StatePrefix     string
	BatchSize       int
	BatchDelay      time.Duration
	MaxBatchErrors  int
	EnrichFanout    int
	EnrichPause     time.Duration
	EnrichCacheTTL  time.Duration
	PlanLimits      map[string]models.PlanLimits
	DefaultPlan     string

	// Worker
	WorkerConcurrency  int
	AsynqRedisAddr     string
	AsynqRedisPassword string
	AsynqRedisDB       int
}

func Load() (*Config, error) {
	// Load .env file if exists
	// Try to load from current dir first, then parent dirs
	_ = godotenv.Load()
	_ = godotenv.Load("../../.env") // For when running from cmd/web or cmd/worker

	cfg := &Config{
		AppName: getEnv("APP_NAME", "WellWatch"),
		AppEnv:  getEnv("APP_ENV", "development"),
		AppPort: getEnv("APP_PORT", "8080"),
		AppURL:  getEnv("APP_URL", "http://localhost:8080"),

		DBHost:            getEnv("DB_HOST", "127.0.0.1"),
		DBPort:            getEnv("DB_PORT", "3306"),
		DBDatabase:        getEnv("DB_DATABASE", "wellwatch"),
		DBUsername:        getEnv("DB_USERNAME", "wellwatch"),
		DBPassword:        getEnv("DB_PASSWORD", ""),
		DBMaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
		DBConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),

		RedisHost:     getEnv("REDIS_HOST", "127.0.0.1"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		JWTSecret:       getEnv("JWT_SECRET", "change-this-secret-key"),
		JWTAccessExpire: getEnvAsDuration("JWT_ACCESS_EXPIRE", 24*time.Hour),

		UploadMaxSize: getEnvAsInt("UPLOAD_MAX_SIZE", 10485760), // 10MB
		UploadPath:    getEnv("UPLOAD_PATH", "./storage/uploads"),
		ExportPath:    getEnv("EXPORT_PATH", "./storage/exports"),

		RecordStoreBaseURL: getEnv("RECORD_STORE_BASE_URL", "https://api.recordstore.local/v0"),
		RecordStoreAPIKey:  getEnv("RECORD_STORE_API_KEY", ""),
		RecordStoreTimeout: getEnvAsDuration("RECORD_STORE_TIMEOUT", 15*time.Second),

		RegistryBaseURL: getEnv("REGISTRY_BASE_URL", "https://registry.occ.local/api"),
		RegistryTimeout: getEnvAsDuration("REGISTRY_TIMEOUT", 10*time.Second),

		StatePrefix:    getEnv("API_STATE_PREFIX", "35"), // Oklahoma
		BatchSize:      getEnvAsInt("COMMIT_BATCH_SIZE", 10),
		BatchDelay:     getEnvAsDuration("COMMIT_BATCH_DELAY", 250*time.Millisecond),
		MaxBatchErrors: getEnvAsInt("COMMIT_MAX_ERRORS", 10),
		EnrichFanout:   getEnvAsInt("ENRICH_FANOUT", 5),
		EnrichPause:    getEnvAsDuration("ENRICH_PAUSE", 150*time.Millisecond),
		EnrichCacheTTL: getEnvAsDuration("ENRICH_CACHE_TTL", 24*time.Hour),
		PlanLimits:     defaultPlanLimits(),
		DefaultPlan:    getEnv("DEFAULT_PLAN", "starter"),

		WorkerConcurrency:  getEnvAsInt("WORKER_CONCURRENCY", 4),
		AsynqRedisAddr:     getEnv("ASYNQ_REDIS_ADDR", "127.0.0.1:6379"),
		AsynqRedisPassword: getEnv("ASYNQ_REDIS_PASSWORD", ""),
		AsynqRedisDB:       getEnvAsInt("ASYNQ_REDIS_DB", 0),
	}

	return cfg, nil
}

// defaultPlanLimits maps each subscription tier to its record ceilings.
// A limit of -1 means unbounded. Overridable per tier via env, e.g.
// PLAN_STARTER_MAX_PROPERTIES=10.
func defaultPlanLimits() map[string]models.PlanLimits {
	return map[string]models.PlanLimits{
		"starter": {
			MaxProperties: getEnvAsInt("PLAN_STARTER_MAX_PROPERTIES", 5),
			MaxWells:      getEnvAsInt("PLAN_STARTER_MAX_WELLS", 5),
		},
		"standard": {
			MaxProperties: getEnvAsInt("PLAN_STANDARD_MAX_PROPERTIES", 25),
			MaxWells:      getEnvAsInt("PLAN_STANDARD_MAX_WELLS", 25),
		},
		"professional": {
			MaxProperties: getEnvAsInt("PLAN_PROFESSIONAL_MAX_PROPERTIES", 100),
			MaxWells:      getEnvAsInt("PLAN_PROFESSIONAL_MAX_WELLS", 100),
		},
		"enterprise": {
			MaxProperties: getEnvAsInt("PLAN_ENTERPRISE_MAX_PROPERTIES", -1),
			MaxWells:      getEnvAsInt("PLAN_ENTERPRISE_MAX_WELLS", -1),
		},
	}
}

func (c *Config) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&loc=Local",
		c.DBUsername,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBDatabase,
	)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

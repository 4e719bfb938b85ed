package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Store drivers
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Item write modes for collection item operations
const (
	ItemWriteModeResave = "resave"
	ItemWriteModeAtomic = "atomic"
)

type Config struct {
	Port        string
	GinMode     string
	LogLevel    string
	FrontendURL string
	// Storage
	DBUrl         string
	RunMigrations bool
	StoreDriver   string
	ItemWriteMode string
	// Auth
	JWTSecret string
	JWKSURL   string
	// Redis Configuration
	RedisURL             string
	RedisPassword        string
	ProfileCacheTTLSecs  int
	UploadRateLimit      int
	UploadRateWindowSecs int
	// Media storage (S3-compatible)
	S3Bucket          string
	S3Region          string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3Endpoint        string // Custom endpoint for S3-compatible providers (path-style)
	S3PublicBaseURL   string // Base URL returned to clients; defaults to the bucket URL
	MediaMaxBytes     int
	MediaMaxDimension int
	ClamAVAddress     string // clamd host:port or socket path; empty disables scanning
	// Observability
	MetricsEnabled bool
}

func LoadConfig() (*Config, error) {
	// .env is optional; real environment always wins
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		LogLevel:    getEnv("LOG_LEVEL", "debug"),
		FrontendURL: strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),

		DBUrl:         getEnv("DATABASE_URL", ""),
		RunMigrations: getEnvBool("RUN_MIGRATIONS", true),
		StoreDriver:   strings.ToLower(getEnv("STORE_DRIVER", StoreDriverPostgres)),
		ItemWriteMode: strings.ToLower(getEnv("ITEM_WRITE_MODE", ItemWriteModeResave)),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWKSURL:   getEnv("JWKS_URL", ""),

		RedisURL:             getEnv("REDIS_URL", ""),
		RedisPassword:        getEnv("REDIS_PASSWORD", ""),
		ProfileCacheTTLSecs:  getEnvInt("PROFILE_CACHE_TTL_SECONDS", 60),
		UploadRateLimit:      getEnvInt("UPLOAD_RATE_LIMIT", 10),
		UploadRateWindowSecs: getEnvInt("UPLOAD_RATE_WINDOW_SECONDS", 60),

		S3Bucket:          getEnv("S3_BUCKET", ""),
		S3Region:          getEnv("S3_REGION", "us-east-1"),
		S3AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
		S3Endpoint:        strings.TrimRight(getEnv("S3_ENDPOINT", ""), "/"),
		S3PublicBaseURL:   strings.TrimRight(getEnv("S3_PUBLIC_BASE_URL", ""), "/"),
		MediaMaxBytes:     getEnvInt("MEDIA_MAX_BYTES", 5<<20),
		MediaMaxDimension: getEnvInt("MEDIA_MAX_DIMENSION", 1600),
		ClamAVAddress:     getEnv("CLAMAV_ADDRESS", ""),

		MetricsEnabled: getEnvBool("METRICS_ENABLED", true),
	}

	if cfg.StoreDriver != StoreDriverPostgres && cfg.StoreDriver != StoreDriverMemory {
		log.Printf("WARNING: unknown STORE_DRIVER %q, using %q", cfg.StoreDriver, StoreDriverPostgres)
		cfg.StoreDriver = StoreDriverPostgres
	}
	if cfg.ItemWriteMode != ItemWriteModeResave && cfg.ItemWriteMode != ItemWriteModeAtomic {
		log.Printf("WARNING: unknown ITEM_WRITE_MODE %q, using %q", cfg.ItemWriteMode, ItemWriteModeResave)
		cfg.ItemWriteMode = ItemWriteModeResave
	}

	if cfg.StoreDriver == StoreDriverPostgres && cfg.DBUrl == "" {
		log.Println("WARNING: DATABASE_URL is missing. Application may fail to connect.")
	}
	if cfg.JWTSecret == "" && cfg.JWKSURL == "" {
		log.Println("WARNING: neither JWT_SECRET nor JWKS_URL is configured. Protected routes will reject every token.")
	}
	if cfg.RedisURL == "" {
		log.Println("WARNING: REDIS_URL not configured. Profile cache disabled, rate limiting uses in-memory fallback.")
	}

	return cfg, nil
}

// MediaConfigured reports whether uploads can be stored.
func (c *Config) MediaConfigured() bool {
	return c.S3Bucket != "" && c.S3AccessKeyID != "" && c.S3SecretAccessKey != ""
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

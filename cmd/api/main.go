package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go-profile-backend/config"
	_ "go-profile-backend/docs" // Important for Swagger
	"go-profile-backend/internal/delivery/http/middleware"
	v1 "go-profile-backend/internal/delivery/http/v1"
	"go-profile-backend/internal/domain"
	"go-profile-backend/internal/repository/cache"
	"go-profile-backend/internal/repository/memory"
	"go-profile-backend/internal/repository/postgres"
	"go-profile-backend/internal/usecase"
	"go-profile-backend/pkg/auth"
	"go-profile-backend/pkg/database"
	"go-profile-backend/pkg/logger"
	"go-profile-backend/pkg/redis"
	"go-profile-backend/pkg/storage"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
)

// stores bundles the repositories of the selected driver
type stores struct {
	profiles    domain.ProfileRepository
	items       domain.ProfileItemStore
	accounts    domain.AccountRepository
	connections domain.ConnectionRepository
	ping        usecase.Pinger
	close       func()
}

// @title           Profile Backend API
// @version         1.0
// @description     Sectioned candidate profile store.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init(cfg.LogLevel)
	logger.Log.Info("Starting profile backend",
		"port", cfg.Port,
		"store", cfg.StoreDriver,
		"item_write_mode", cfg.ItemWriteMode,
	)
	gin.SetMode(cfg.GinMode)

	ctx := context.Background()

	// 3. Setup Storage
	st, err := openStores(ctx, cfg)
	if err != nil {
		logger.Log.Error("Failed to open store", "error", err)
		os.Exit(1)
	}
	defer st.close()

	// 4. Setup Redis (optional)
	var redisClient goredis.Cmdable
	var profileCache domain.ProfileCache
	var redisPing usecase.Pinger
	if cfg.RedisURL != "" {
		if err := redis.Initialize(redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword}); err != nil {
			logger.Log.Warn("Redis unavailable, continuing without cache", "error", err)
		} else {
			defer redis.Close()
			redisClient = redis.Client()
			profileCache = cache.NewProfileCache(redisClient, time.Duration(cfg.ProfileCacheTTLSecs)*time.Second)
			redisPing = usecase.PingFunc(redis.HealthCheck)
		}
	}

	// 5. Setup Media Storage (optional)
	var media v1.MediaStore
	var mediaPing, scannerPing usecase.Pinger
	if cfg.MediaConfigured() {
		uploader, err := storage.NewS3Uploader(ctx, storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Endpoint:        cfg.S3Endpoint,
			PublicBaseURL:   cfg.S3PublicBaseURL,
		})
		if err != nil {
			logger.Log.Error("Failed to create S3 client", "error", err)
			os.Exit(1)
		}
		store := storage.NewMediaStore(uploader, storage.MediaConfig{
			MaxBytes:     cfg.MediaMaxBytes,
			MaxDimension: cfg.MediaMaxDimension,
			Quality:      storage.DefaultJPEGQuality,
		})
		mediaPing = uploader
		if cfg.ClamAVAddress != "" {
			scanner := storage.NewClamAVScanner(cfg.ClamAVAddress, 30*time.Second)
			store.WithScanner(scanner)
			scannerPing = usecase.PingFunc(scanner.Ping)
			logger.Log.Info("Malware scanning enabled", "clamd", cfg.ClamAVAddress)
		}
		media = store
	} else {
		logger.Log.Warn("S3 not configured - media uploads will be rejected")
	}

	// 6. Setup UseCases
	profileUC := usecase.NewProfileUsecase(st.profiles, st.items, st.accounts, st.connections, profileCache)
	accountUC := usecase.NewAccountUsecase(st.accounts, profileUC)
	healthUC := usecase.NewHealthUsecase(map[string]usecase.Pinger{
		"store":   st.ping,
		"redis":   redisPing,
		"media":   mediaPing,
		"scanner": scannerPing,
	})

	// 7. Setup Auth
	var jwks *auth.Provider
	if cfg.JWKSURL != "" {
		jwks = auth.NewProvider(cfg.JWKSURL)
	}
	verifier := auth.NewVerifier(cfg.JWTSecret, jwks)

	// 8. Setup Metrics
	var metrics *middleware.Metrics
	var metricsHandler http.Handler
	if cfg.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics, err = middleware.NewMetrics(reg, "profile")
		if err != nil {
			logger.Log.Error("Failed to register metrics", "error", err)
			os.Exit(1)
		}
		metricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}

	// 9. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		ProfileUC: profileUC,
		AccountUC: accountUC,
		HealthUC:  healthUC,
		Verifier:  verifier,
		Media:     media,
		UploadLimit: middleware.RateLimitMiddleware(middleware.UploadRateLimitConfig(
			redisClient,
			cfg.UploadRateLimit,
			time.Duration(cfg.UploadRateWindowSecs)*time.Second,
		)),
		Metrics:        metrics,
		MetricsHandler: metricsHandler,
		AllowedOrigins: strings.Split(cfg.FrontendURL, ","),
		Production:     cfg.GinMode == gin.ReleaseMode,
	})

	// 10. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	atomicItems := cfg.ItemWriteMode == config.ItemWriteModeAtomic

	if cfg.StoreDriver == config.StoreDriverMemory {
		profiles := memory.NewProfileStore()
		st := &stores{
			profiles:    profiles,
			accounts:    memory.NewAccountStore(),
			connections: memory.NewConnectionStore(),
			ping:        usecase.PingFunc(func(context.Context) error { return nil }),
			close:       func() {},
		}
		if atomicItems {
			st.items = profiles
		}
		logger.Log.Warn("Using in-memory store - data is lost on restart")
		return st, nil
	}

	if cfg.RunMigrations {
		if err := database.Migrate(cfg.DBUrl); err != nil {
			return nil, err
		}
	}

	pool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
	if err != nil {
		return nil, err
	}

	profiles := postgres.NewProfileStore(pool)
	st := &stores{
		profiles:    profiles,
		accounts:    postgres.NewAccountRepository(pool),
		connections: postgres.NewConnectionRepository(pool),
		ping:        usecase.PingFunc(pool.Ping),
		close:       pool.Close,
	}
	if atomicItems {
		st.items = profiles
	}
	return st, nil
}

package v1

import (
	"net/http"

	"go-profile-backend/internal/delivery/http/middleware"
	"go-profile-backend/internal/domain"
	"go-profile-backend/internal/usecase"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	ProfileUC domain.ProfileUsecase
	AccountUC domain.AccountUsecase
	HealthUC  usecase.HealthUsecase
	Verifier  middleware.TokenVerifier
	// Media is nil when object storage is not configured
	Media       MediaStore
	UploadLimit gin.HandlerFunc
	// Metrics and MetricsHandler are nil when metrics are disabled
	Metrics        *middleware.Metrics
	MetricsHandler http.Handler
	AllowedOrigins []string
	Production     bool
	// Quiet drops the request logger (tests)
	Quiet bool
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(deps.AllowedOrigins, deps.Production)) // CORS must be first!
	r.Use(gin.Recovery())
	if !deps.Quiet {
		r.Use(gin.Logger())
	}
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware())
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler())
	}
	r.Use(middleware.ErrorHandler())

	if deps.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(deps.MetricsHandler))
	}

	v1 := r.Group("/v1")

	NewHealthHandler(v1, deps.HealthUC)

	// Swagger
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.Verifier, deps.AccountUC))
	{
		NewAuthHandler(protected, deps.AccountUC)
		NewProfileHandler(v1, protected, deps.ProfileUC, deps.Media, deps.UploadLimit)
	}

	return r
}

package v1

import (
	"net/http"

	"pcd-jobs-backend/config"
	"pcd-jobs-backend/internal/delivery/http/middleware"
	"pcd-jobs-backend/internal/delivery/http/response"
	"pcd-jobs-backend/internal/domain"
	"pcd-jobs-backend/internal/usecase"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	CategoryUC     domain.CategoryUsecase
	PostingUC      domain.PostingUsecase
	ReviewUC       domain.ReviewUsecase
	ApplicationUC  domain.ApplicationUsecase
	ConversationUC domain.ConversationUsecase
	HealthUC       usecase.HealthUsecase
	ActorRepo      domain.ActorRepository
	RateLimiter    *middleware.RateLimiter
	Config         *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(deps.Config.FrontendURL)) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.ErrorHandler())
	r.Use(deps.RateLimiter.Middleware(middleware.DefaultRateLimitConfig()))

	v1 := r.Group("/v1")

	// Health Check
	v1.GET("/health", func(c *gin.Context) {
		status := deps.HealthUC.Check(c.Request.Context())
		if !deps.HealthUC.Healthy(status) {
			response.Error(c, http.StatusServiceUnavailable, "System degraded", status)
			return
		}
		response.Success(c, http.StatusOK, "System operational", status)
	})

	// Swagger
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	writeLimit := deps.RateLimiter.Middleware(middleware.WriteRateLimitConfig())

	// Public routes
	NewCategoryHandler(v1, deps.CategoryUC)

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.Config.JWTSecret, deps.ActorRepo))

	NewPostingHandler(v1, protected, deps.PostingUC)
	NewReviewHandler(protected, deps.ReviewUC)
	NewApplicationHandler(protected, deps.ApplicationUC, writeLimit)
	NewConversationHandler(protected, deps.ConversationUC, writeLimit)

	return r
}

package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/insaatai/insaat_backend/cmd/docs"
	"github.com/insaatai/insaat_backend/internal/core/domain"
	portsrepo "github.com/insaatai/insaat_backend/internal/core/ports/repositories"
	portssvc "github.com/insaatai/insaat_backend/internal/core/ports/services"
	"github.com/insaatai/insaat_backend/internal/middleware"
	"github.com/insaatai/insaat_backend/internal/platform/config"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const tooManyAttemptsMessage = "Çok fazla deneme. Lütfen biraz sonra tekrar deneyin."

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces.
// redisClient may be nil, in which case rate limits are kept in memory.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	health portsrepo.HealthChecker,
	redisClient *redis.Client,
) error {
	registerValidators()

	r.GET("/health", func(c *gin.Context) {
		if health != nil {
			if err := health.Ping(c.Request.Context()); err != nil {
				middleware.GetLoggerFromCtx(c.Request.Context()).Error("Health check failed: " + err.Error())
				c.String(http.StatusServiceUnavailable, "UNAVAILABLE")
				return
			}
		}
		c.String(http.StatusOK, "OK")
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authLimiter, err := middleware.NewLimiter(cfg.AuthRateLimit, "auth", redisClient)
	if err != nil {
		return fmt.Errorf("auth rate limiter: %w", err)
	}
	authLimit := middleware.RateLimit(authLimiter, func(c *gin.Context) {
		c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: tooManyAttemptsMessage})
	})

	contactLimiter, err := middleware.NewLimiter(cfg.ContactRateLimit, "contact", redisClient)
	if err != nil {
		return fmt.Errorf("contact rate limiter: %w", err)
	}
	contactLimit := middleware.RateLimit(contactLimiter, nil)

	// Public routes
	registerAuthRoutes(r, services, authLimit)
	registerGoogleOAuthRoutes(r, cfg, services, authLimit)
	registerContactRoutes(r, services.Contact, contactLimit)

	setupAPIV1Routes(r, cfg, services)

	setupSwaggerRoutes(r, cfg)
	return nil
}

// setupAPIV1Routes configures the authenticated /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(r *gin.Engine, cfg *config.Config, services *portssvc.ServiceContainer) {
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))

	registerAccountRoutes(v1, services.Identity)
	registerMeRoutes(v1, services.Identity, services.Company, services.Bootstrap)
	registerCompanyRoutes(v1, services.Company)
	registerProjectRoutes(v1, services.Project)
	registerInviteRoutes(v1, services.Project)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// registerValidators adds the binding tags used by the request DTOs.
func registerValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("plan", func(fl validator.FieldLevel) bool {
		return isKnownPlan(fl.Field().String())
	})
	_ = v.RegisterValidation("tenant_role", func(fl validator.FieldLevel) bool {
		_, ok := domain.ParseRole(fl.Field().String())
		return ok
	})
}

// isKnownPlan accepts plan codes and their display labels.
func isKnownPlan(raw string) bool {
	v := strings.TrimSpace(raw)
	for _, p := range domain.Plans() {
		if strings.EqualFold(v, string(p)) || strings.EqualFold(v, p.Label()) {
			return true
		}
	}
	return false
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"

	"github.com/fpadjusters/claims_backend/config"
	"github.com/fpadjusters/claims_backend/middlewares"
	"github.com/fpadjusters/claims_backend/models"
	"github.com/fpadjusters/claims_backend/utils"
)

const defaultPort = "8080"

var tracer = otel.Tracer("fpa-claims")

type RateLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

func getRedisClient(redisAddress string) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: redisAddress,
	})
	return client
}

func registerRoutes(r *gin.Engine) {
	// Unauthenticated surface.
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.POST("/api/tenants", signupTenantHandler)
	r.POST("/api/users/register", registerUserHandler)
	r.POST("/api/users/login", loginHandler)

	api := r.Group("/api", middlewares.TenantScopeMiddleware())

	api.GET("/tenants/current", getTenantHandler)
	api.PUT("/tenants/current", middlewares.RequireRole(string(models.UserRoleAdmin)), updateTenantHandler)

	api.GET("/users/profile", getProfileHandler)
	api.PUT("/users/profile", updateProfileHandler)
	api.PUT("/users/password", changePasswordHandler)
	api.GET("/users", middlewares.RequireRole(string(models.UserRoleAdmin)), listUsersHandler)
	api.PATCH("/users/role", middlewares.RequireRole(string(models.UserRoleAdmin)), updateUserRoleHandler)
	api.DELETE("/users/:id", middlewares.RequireRole(string(models.UserRoleAdmin)), deleteUserHandler)

	api.POST("/cases", createCaseHandler)
	api.GET("/cases", listCasesHandler)
	api.GET("/cases/:id", getCaseHandler)
	api.PUT("/cases/:id", updateCaseHandler)
	api.DELETE("/cases/:id", deleteCaseHandler)

	api.POST("/contacts", createContactHandler)
	api.GET("/contacts", listContactsHandler)
	api.GET("/contacts/:id", getContactHandler)
	api.PUT("/contacts/:id", updateContactHandler)
	api.DELETE("/contacts/:id", deleteContactHandler)

	api.POST("/insurers", createInsurerHandler)
	api.GET("/insurers", listInsurersHandler)
	api.GET("/insurers/:id", getInsurerHandler)
	api.PUT("/insurers/:id", updateInsurerHandler)
	api.DELETE("/insurers/:id", deleteInsurerHandler)

	api.POST("/fees", createFeeHandler)
	api.GET("/fees", listFeesHandler)
	api.GET("/fees/:id", getFeeHandler)
	api.PATCH("/fees/:id", updateFeeHandler)
	api.PATCH("/fees/:id/status", updateFeeStatusHandler)
	api.DELETE("/fees/:id", deleteFeeHandler)

	api.POST("/fees/:id/commissions", createCommissionHandler)
	api.GET("/fees/:id/commissions", listFeeCommissionsHandler)
	api.GET("/fees/commissions/:id", getCommissionHandler)
	api.PATCH("/fees/commissions/:id/status", updateCommissionStatusHandler)
	api.GET("/fees/commissions/user/:userId", listUserCommissionsHandler)
	api.DELETE("/fees/commissions/:id", deleteCommissionHandler)

	api.POST("/documents", createDocumentHandler)
	api.GET("/documents", listDocumentsHandler)
	api.GET("/documents/search", searchDocumentsHandler)
	api.GET("/documents/:id", getDocumentHandler)
	api.PUT("/documents/:id", updateDocumentHandler)
	api.GET("/documents/:id/download", downloadDocumentHandler)
	api.GET("/documents/:id/versions", listDocumentVersionsHandler)
	api.GET("/documents/:id/versions/:version", getDocumentVersionHandler)
	api.DELETE("/documents/:id", deleteDocumentHandler)

	api.POST("/templates", createTemplateHandler)
	api.GET("/templates", listTemplatesHandler)
	api.GET("/templates/:id", getTemplateHandler)
	api.PUT("/templates/:id", updateTemplateHandler)
	api.DELETE("/templates/:id", deleteTemplateHandler)

	api.POST("/claims", createClaimHandler)
	api.GET("/claims", listClaimsHandler)
	api.GET("/claims/export", exportClaimsHandler)
	api.POST("/claims/import", importClaimsHandler)
	api.GET("/claims/:id", getClaimHandler)
	api.PUT("/claims/:id", updateClaimHandler)
	api.DELETE("/claims/:id", deleteClaimHandler)

	api.POST("/settlements/calculate", calculateSettlementHandler)
	api.POST("/settlements", createSettlementHandler)
	api.GET("/settlements", listSettlementsHandler)
	api.GET("/settlements/:id", getSettlementHandler)
	api.DELETE("/settlements/:id", deleteSettlementHandler)
}

func customNotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
}

func main() {
	port := os.Getenv("API_PORT")
	if port == "" {
		// Cloud Run standard env var.
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()

	// Cloud Run sends SIGTERM on revision shutdown; handle it for graceful drain.
	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	// Start the HTTP server ASAP so the platform considers the revision
	// healthy. Until DB/Redis are ready, app endpoints return 503.
	r := gin.New()

	// Correlation IDs: generate once per request and attach to context.
	r.Use(func(c *gin.Context) {
		cid := c.GetHeader("x-correlation-id")
		if cid == "" {
			cid = uuid.NewString()
		}
		c.Request = c.Request.WithContext(utils.SetCorrelationIdInContext(c.Request.Context(), cid))
		c.Next()
	})
	r.Use(func(c *gin.Context) {
		// Always allow the startup probe.
		if c.Request.URL.Path == "/healthz" {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		// Gate everything else on dependency readiness.
		if config.GetDB() == nil || config.GetRedisDB() == nil {
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		c.Next()
	})

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	corsConfig := cors.DefaultConfig()
	// Production requires an explicit allowlist via CORS_ALLOWED_ORIGINS
	// (comma-separated); everywhere else allow all for developer convenience.
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		if allowedOrigins == "" {
			corsConfig.AllowOrigins = []string{}
		} else {
			corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders("Origin", "Content-Type", "Authorization", "x-correlation-id")
	corsConfig.AddExposeHeaders("Content-Length", "Content-Disposition")
	corsConfig.AllowCredentials = true
	r.Use(cors.New(corsConfig))

	// Optional rate limiting.
	// Env:
	// - RATE_LIMIT_ENABLED=true
	// - RATE_LIMIT_WINDOW_SECONDS=60
	// - RATE_LIMIT_MAX_REQUESTS=600
	if strings.EqualFold(strings.TrimSpace(os.Getenv("RATE_LIMIT_ENABLED")), "true") {
		client := getRedisClient(os.Getenv("REDIS_ADDRESS"))
		limit := int64(600)
		if v := strings.TrimSpace(os.Getenv("RATE_LIMIT_MAX_REQUESTS")); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
				limit = n
			}
		}
		windowSec := int64(60)
		if v := strings.TrimSpace(os.Getenv("RATE_LIMIT_WINDOW_SECONDS")); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
				windowSec = n
			}
		}
		rateLimiter := NewRateLimiter(client, limit, time.Duration(windowSec)*time.Second)
		r.Use(rateLimiter.RateLimitMiddleware)
	}

	r.Use(middlewares.AuthMiddleware())
	r.Use(customErrorLogger(logger))
	r.Use(gin.Recovery())
	registerRoutes(r)
	r.NoRoute(customNotFoundHandler)

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		// ListenAndServe returns http.ErrServerClosed on graceful shutdown.
		serverErrCh <- srv.ListenAndServe()
	}()

	// Connect dependencies after the port is open.
	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()

	db := config.GetDB()
	sqlDB, _ := db.DB()
	defer func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}()
	// AutoMigrate can run DDL that blocks tables; allow running migrations as
	// a separate job instead.
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("SKIP_MIGRATIONS")), "true") {
		models.MigrateTable()
	} else {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	}

	logger.WithFields(logrus.Fields{
		"port": port,
	}).Info("server started")

	// Block until shutdown or server error.
	select {
	case <-sigCtx.Done():
		// graceful shutdown below
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	// Drain HTTP requests.
	shutdownTimeout := 30 * time.Second
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}

	// Close Redis (best-effort).
	if rdb := config.GetRedisDB(); rdb != nil {
		_ = rdb.Close()
	}
}

// customErrorLogger logs only requests that accumulated errors.
func customErrorLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			logger.Error(c.Errors.String())
		}
	}
}

func NewRateLimiter(client *redis.Client, limit int64, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client: client,
		limit:  limit,
		window: window,
	}
}

// RateLimitMiddleware enforces a fixed-window per-IP request budget in Redis.
func (rl *RateLimiter) RateLimitMiddleware(c *gin.Context) {
	key := c.ClientIP()

	exists, err := rl.client.Exists(c.Request.Context(), key).Result()
	if err != nil {
		c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	if exists == 0 {
		err := rl.client.Set(c.Request.Context(), key, 1, rl.window).Err()
		if err != nil {
			c.AbortWithError(http.StatusInternalServerError, err)
			return
		}
		c.Next()
		return
	}

	count, err := rl.client.Incr(c.Request.Context(), key).Result()
	if err != nil {
		c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	if count > rl.limit {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error": fmt.Sprintf("Rate limit exceeded. Try again in %d seconds", int(rl.window.Seconds())),
		})
		return
	}

	c.Next()
}

func splitAndTrim(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

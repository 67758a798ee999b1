package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/windoze95/cookiify-api/internal/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const healthTimeout = 2 * time.Second

// HealthHandler reports whether the service and its backing stores are reachable.
type HealthHandler struct {
	DB    *gorm.DB
	Redis redis.UniversalClient
}

// NewHealthHandler creates a new HealthHandler. redisClient may be nil.
func NewHealthHandler(database *gorm.DB, redisClient redis.UniversalClient) *HealthHandler {
	return &HealthHandler{DB: database, Redis: redisClient}
}

// HealthStatus is the body of a health check.
type HealthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Redis    string `json:"redis,omitempty"`
	Time     string `json:"time"`
}

// Health handles GET /api/health.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	status := HealthStatus{Status: "ok", Database: "ok", Time: time.Now().UTC().Format(time.RFC3339)}
	healthy := true

	if err := h.pingDB(ctx); err != nil {
		logger.FromGin(c).Warn("database health check failed", zap.Error(err))
		status.Database = "unreachable"
		healthy = false
	}
	if h.Redis != nil {
		status.Redis = "ok"
		if err := h.Redis.Ping(ctx).Err(); err != nil {
			logger.FromGin(c).Warn("redis health check failed", zap.Error(err))
			status.Redis = "unreachable"
			healthy = false
		}
	}

	if !healthy {
		status.Status = "degraded"
		c.JSON(http.StatusServiceUnavailable, Envelope{Success: false, Data: status, Error: codeUpstreamUnavailable})
		return
	}
	respondOK(c, http.StatusOK, status)
}

func (h *HealthHandler) pingDB(ctx context.Context) error {
	if h.DB == nil {
		return nil
	}
	sqlDB, err := h.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Welcome handles GET /.
func (h *HealthHandler) Welcome(c *gin.Context) {
	respondMessage(c, http.StatusOK, "Welcome to the Cookiify API")
}

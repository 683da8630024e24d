package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ReadinessChecker reports whether the model ensemble can serve requests
type ReadinessChecker interface {
	Ready() bool
}

// HealthHandler handles health check endpoints
type HealthHandler struct {
	db     *gorm.DB
	redis  *redis.Client
	models ReadinessChecker
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *gorm.DB, redis *redis.Client, models ReadinessChecker) *HealthHandler {
	return &HealthHandler{
		db:     db,
		redis:  redis,
		models: models,
	}
}

// HealthStatus represents the health check response
type HealthStatus struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	components := make(map[string]string)
	healthy := true

	// Check models
	switch {
	case h.models == nil:
		components["models"] = "not configured"
	case h.models.Ready():
		components["models"] = "ok"
	default:
		components["models"] = "unavailable"
		healthy = false
	}

	// Check database
	if h.db != nil {
		if err := pingDB(ctx, h.db); err != nil {
			components["database"] = "error: " + err.Error()
			healthy = false
		} else {
			components["database"] = "ok"
		}
	} else {
		components["database"] = "not configured"
	}

	// Check Redis
	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			components["redis"] = "error: " + err.Error()
			healthy = false
		} else {
			components["redis"] = "ok"
		}
	} else {
		components["redis"] = "not configured"
	}

	status := "healthy"
	httpStatus := http.StatusOK
	if !healthy {
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, HealthStatus{
		Status:     status,
		Components: components,
	})
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if h.models != nil && !h.models.Ready() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "reason": "no models loaded"})
		return
	}

	// Check database connection
	if h.db != nil {
		if err := pingDB(ctx, h.db); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "reason": "database unreachable"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func pingDB(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

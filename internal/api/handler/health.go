package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	mongo *mongo.Database
	redis *redis.Client
}

func NewHealthHandler(db *mongo.Database, rdb *redis.Client) *HealthHandler {
	return &HealthHandler{mongo: db, redis: rdb}
}

// Liveness handles GET /health. Returns 200 immediately; confirms the
// process is alive.
func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

// Readiness handles GET /health/ready. Checks MongoDB and Redis
// connectivity before declaring the service ready.
func (h *HealthHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	deps := make(map[string]dependencyStatus)
	healthy := true

	if err := h.mongo.Client().Ping(ctx, nil); err != nil {
		deps["mongodb"] = dependencyStatus{Status: "unhealthy", Error: err.Error()}
		healthy = false
	} else {
		deps["mongodb"] = dependencyStatus{Status: "ok"}
	}

	if _, err := h.redis.Ping(ctx).Result(); err != nil {
		deps["redis"] = dependencyStatus{Status: "unhealthy", Error: err.Error()}
		healthy = false
	} else {
		deps["redis"] = dependencyStatus{Status: "ok"}
	}

	resp := readinessResponse{Status: "ok", Dependencies: deps}
	code := http.StatusOK
	if !healthy {
		resp.Status = "unavailable"
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, resp)
}

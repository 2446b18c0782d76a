package handlers

import (
	"context"
	"time"

	"github.com/dhima/mysql-crud/internal/api/response"
	"github.com/dhima/mysql-crud/internal/logging"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const pingTimeout = 2 * time.Second

// Pinger reports whether the database answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	logger logging.Logger
	db     Pinger
}

// NewHealthHandler creates a new health check handler.
func NewHealthHandler(logger logging.Logger, db Pinger) *HealthHandler {
	return &HealthHandler{logger: logger, db: db}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status   string `json:"status" example:"ok"`
	Service  string `json:"service" example:"mysql-crud"`
	Version  string `json:"version" example:"1.0.0"`
	Database string `json:"database" example:"up"`
} // @name HealthResponse

// Health godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API service and its database
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse "Database unreachable"
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:   "ok",
		Service:  "mysql-crud",
		Version:  "1.0.0",
		Database: "up",
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.logger.Warn("database ping failed", zap.Error(err))
		resp.Status = "degraded"
		resp.Database = "down"
		response.Unavailable(c, resp)
		return
	}

	response.OK(c, resp)
}

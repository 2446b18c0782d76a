package handlers

import (
	"github.com/dhima/mysql-crud/internal/api/response"
	"github.com/dhima/mysql-crud/internal/database"
	"github.com/dhima/mysql-crud/internal/logging"
	"github.com/gin-gonic/gin"
)

// StatsSource exposes database statement counters.
type StatsSource interface {
	Stats() database.Stats
}

// MetricsHandler handles metrics requests.
type MetricsHandler struct {
	logger logging.Logger
	source StatsSource
}

// NewMetricsHandler creates a new metrics handler.
func NewMetricsHandler(logger logging.Logger, source StatsSource) *MetricsHandler {
	return &MetricsHandler{logger: logger, source: source}
}

// MetricsResponse represents the metrics response.
type MetricsResponse struct {
	Connected        bool  `json:"connected" example:"true"`
	StatementsCount  int64 `json:"statements_count" example:"1250"`
	FailedCount      int64 `json:"failed_count" example:"3"`
	UnscopedCount    int64 `json:"unscoped_count" example:"0"`
	OpenConnections  int   `json:"open_connections" example:"1"`
	InUseConnections int   `json:"in_use_connections" example:"0"`
} // @name MetricsResponse

// Metrics godoc
// @Summary Get database metrics
// @Description Returns statement counters and connection pool state
// @Tags System
// @Produce json
// @Success 200 {object} MetricsResponse
// @Router /metrics [get]
func (h *MetricsHandler) Metrics(c *gin.Context) {
	s := h.source.Stats()
	response.OK(c, MetricsResponse{
		Connected:        s.Connected,
		StatementsCount:  s.Statements,
		FailedCount:      s.Failures,
		UnscopedCount:    s.Unscoped,
		OpenConnections:  s.OpenConns,
		InUseConnections: s.InUse,
	})
}

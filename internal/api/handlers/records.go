package handlers

import (
	"context"
	"errors"

	"github.com/dhima/mysql-crud/internal/api/response"
	"github.com/dhima/mysql-crud/internal/database"
	"github.com/dhima/mysql-crud/internal/logging"
	"github.com/dhima/mysql-crud/internal/models"
	"github.com/dhima/mysql-crud/internal/records"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RecordService is the subset of records.Service used by the handler.
type RecordService interface {
	List(ctx context.Context, table string, q models.ListRecordsQuery, filters map[string]any) (*models.RecordListResponse, error)
	Create(ctx context.Context, table string, record map[string]any) (*models.WriteResponse, error)
	Update(ctx context.Context, table string, req models.UpdateRecordsRequest) (*models.WriteResponse, error)
	Delete(ctx context.Context, table string, filters map[string]any) (*models.WriteResponse, error)
}

// RecordHandler exposes table rows over HTTP.
type RecordHandler struct {
	logger  logging.Logger
	service RecordService
}

// NewRecordHandler creates a new record handler.
func NewRecordHandler(logger logging.Logger, service RecordService) *RecordHandler {
	return &RecordHandler{
		logger:  logger.With(zap.String("handler", "records")),
		service: service,
	}
}

// ListRecords godoc
// @Summary List rows of a table
// @Description Returns one page of rows. Every query parameter other than page, limit, order_by and desc is an equality filter.
// @Tags Records
// @Produce json
// @Param table path string true "Table name"
// @Param page query int false "Page number" default(1) minimum(1)
// @Param limit query int false "Items per page" default(20) minimum(1) maximum(100)
// @Param order_by query string false "Column to order by"
// @Param desc query bool false "Descending order"
// @Success 200 {object} models.RecordListResponse
// @Failure 400 {object} response.ErrorResponse "Invalid query parameters"
// @Failure 404 {object} response.ErrorResponse "Table not found"
// @Failure 500 {object} response.ErrorResponse "Internal server error"
// @Router /api/v1/tables/{table} [get]
func (h *RecordHandler) ListRecords(c *gin.Context) {
	table := c.Param("table")

	var q models.ListRecordsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.logger.Warn("invalid list records query",
			zap.Error(err),
			zap.String("table", table),
			zap.String("request_id", response.GetRequestID(c)),
		)
		response.BadRequest(c, "invalid query parameters", err.Error())
		return
	}

	result, err := h.service.List(c.Request.Context(), table, q, filters(c))
	if h.handleServiceError(c, err, "list records") {
		return
	}

	response.OK(c, result)
}

// CreateRecord godoc
// @Summary Insert a row
// @Description Inserts the JSON object as one row; keys are column names.
// @Tags Records
// @Accept json
// @Produce json
// @Param table path string true "Table name"
// @Param record body models.Record true "Column values"
// @Success 201 {object} models.WriteResponse
// @Failure 400 {object} response.ErrorResponse "Invalid request"
// @Failure 404 {object} response.ErrorResponse "Table not found"
// @Failure 409 {object} response.ErrorResponse "Duplicate key"
// @Failure 500 {object} response.ErrorResponse "Internal server error"
// @Router /api/v1/tables/{table} [post]
func (h *RecordHandler) CreateRecord(c *gin.Context) {
	table := c.Param("table")

	var record models.Record
	if err := c.ShouldBindJSON(&record); err != nil {
		h.logger.Warn("invalid create record request",
			zap.Error(err),
			zap.String("table", table),
			zap.String("request_id", response.GetRequestID(c)),
		)
		response.BadRequest(c, "invalid request body", err.Error())
		return
	}

	result, err := h.service.Create(c.Request.Context(), table, record)
	if h.handleServiceError(c, err, "create record") {
		return
	}

	h.logger.Info("record created",
		zap.String("table", table),
		zap.Int64("last_insert_id", result.LastInsertID),
		zap.String("request_id", response.GetRequestID(c)),
	)

	response.Created(c, result, "record created successfully")
}

// UpdateRecords godoc
// @Summary Update rows
// @Description Sets the given columns on every row matching where. An empty where is rejected.
// @Tags Records
// @Accept json
// @Produce json
// @Param table path string true "Table name"
// @Param request body models.UpdateRecordsRequest true "Assignments and filters"
// @Success 200 {object} models.WriteResponse
// @Failure 400 {object} response.ErrorResponse "Invalid request"
// @Failure 404 {object} response.ErrorResponse "Table not found"
// @Failure 409 {object} response.ErrorResponse "Duplicate key"
// @Failure 500 {object} response.ErrorResponse "Internal server error"
// @Router /api/v1/tables/{table} [put]
func (h *RecordHandler) UpdateRecords(c *gin.Context) {
	table := c.Param("table")

	var req models.UpdateRecordsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid update records request",
			zap.Error(err),
			zap.String("table", table),
			zap.String("request_id", response.GetRequestID(c)),
		)
		response.BadRequest(c, "invalid request body", err.Error())
		return
	}

	result, err := h.service.Update(c.Request.Context(), table, req)
	if h.handleServiceError(c, err, "update records") {
		return
	}

	response.OK(c, result)
}

// DeleteRecords godoc
// @Summary Delete rows
// @Description Deletes every row matching the query parameters. At least one filter is required.
// @Tags Records
// @Produce json
// @Param table path string true "Table name"
// @Success 200 {object} models.WriteResponse
// @Failure 400 {object} response.ErrorResponse "Missing filters"
// @Failure 404 {object} response.ErrorResponse "Table not found"
// @Failure 500 {object} response.ErrorResponse "Internal server error"
// @Router /api/v1/tables/{table} [delete]
func (h *RecordHandler) DeleteRecords(c *gin.Context) {
	table := c.Param("table")

	result, err := h.service.Delete(c.Request.Context(), table, filters(c))
	if h.handleServiceError(c, err, "delete records") {
		return
	}

	response.OK(c, result)
}

func (h *RecordHandler) handleServiceError(c *gin.Context, err error, operation string) bool {
	if err == nil {
		return false
	}

	var validationErr records.ValidationError
	switch {
	case errors.As(err, &validationErr):
		response.BadRequest(c, "validation failed", validationErr.Error())
	case errors.Is(err, records.ErrTableNotFound):
		response.NotFound(c, "table not found")
	case database.IsDuplicateKey(err):
		response.Conflict(c, "duplicate key", nil)
	default:
		h.logger.Error(operation+" failed",
			zap.Error(err),
			zap.String("table", c.Param("table")),
			zap.String("request_id", response.GetRequestID(c)),
		)
		response.InternalServerError(c, "internal server error")
	}
	return true
}

// filters turns the non-reserved query parameters into equality filters.
// Only the first value of a repeated parameter is used.
func filters(c *gin.Context) map[string]any {
	out := make(map[string]any)
	for key, values := range c.Request.URL.Query() {
		if _, reserved := models.ReservedQueryParams[key]; reserved || len(values) == 0 {
			continue
		}
		out[key] = values[0]
	}
	return out
}

package models

import "time"

// Operation names a write performed on a table.
type Operation string

const (
	OperationInsert Operation = "insert"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
	OperationPurge  Operation = "purge"
)

// Record is a single row keyed by column name.
type Record map[string]any

// ListRecordsQuery represents query parameters for listing rows. Every other
// query parameter is treated as an equality filter.
type ListRecordsQuery struct {
	Page    int    `form:"page" binding:"omitempty,min=1,max=1000000" example:"1"`
	Limit   int    `form:"limit" binding:"omitempty,min=1,max=100" example:"20"`
	OrderBy string `form:"order_by" example:"created_at"`
	Desc    bool   `form:"desc" example:"false"`
} // @name ListRecordsQuery

// ReservedQueryParams are not filters.
var ReservedQueryParams = map[string]struct{}{
	"page":     {},
	"limit":    {},
	"order_by": {},
	"desc":     {},
}

// UpdateRecordsRequest represents an update of every row matching Where.
type UpdateRecordsRequest struct {
	Set   map[string]any `json:"set" binding:"required"`
	Where map[string]any `json:"where"`
} // @name UpdateRecordsRequest

// RecordListResponse represents the response for listing rows.
type RecordListResponse struct {
	Table      string     `json:"table" example:"users"`
	Records    []Record   `json:"records"`
	Pagination Pagination `json:"pagination"`
} // @name RecordListResponse

// WriteResponse represents the outcome of an insert, update or delete.
type WriteResponse struct {
	Table        string    `json:"table" example:"users"`
	Operation    Operation `json:"operation" example:"insert"`
	RowsAffected int64     `json:"rows_affected" example:"1"`
	LastInsertID int64     `json:"last_insert_id,omitempty" example:"42"`
	EventID      string    `json:"event_id,omitempty" example:"660e8400-e29b-41d4-a716-446655440000"`
	ExecutedAt   time.Time `json:"executed_at" example:"2025-11-05T10:30:00Z"`
} // @name WriteResponse

// Pagination represents pagination metadata.
type Pagination struct {
	CurrentPage  int   `json:"current_page" example:"1"`
	PageSize     int   `json:"page_size" example:"20"`
	TotalPages   int   `json:"total_pages" example:"5"`
	TotalRecords int64 `json:"total_records" example:"100"`
} // @name Pagination

package records

import (
	"context"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dhima/mysql-crud/internal/database"
	"github.com/dhima/mysql-crud/internal/logging"
	"github.com/dhima/mysql-crud/internal/models"
	"github.com/dhima/mysql-crud/internal/query"
	"github.com/dhima/mysql-crud/internal/sanitize"
	"github.com/dhima/mysql-crud/pkg/clock"
	"github.com/dhima/mysql-crud/platform/events"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	maxPage         = 1_000_000
)

// Event sources recorded on change events.
const (
	SourceAPI       = "api"
	SourceScheduler = "scheduler"
)

// Service encapsulates table access rules on top of a RecordStore.
type Service struct {
	store     RecordStore
	publisher EventPublisher
	logger    logging.Logger
	clock     clock.Clock
	tables    map[string]struct{}
}

// NewService creates a records service. An empty allowedTables permits every
// table name that is a valid identifier.
func NewService(store RecordStore, publisher EventPublisher, logger logging.Logger, allowedTables []string) *Service {
	return NewServiceWithClock(store, publisher, logger, allowedTables, clock.RealClock{})
}

// NewServiceWithClock allows injecting a custom clock (useful for tests).
func NewServiceWithClock(store RecordStore, publisher EventPublisher, logger logging.Logger, allowedTables []string, clk clock.Clock) *Service {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}

	var tables map[string]struct{}
	if len(allowedTables) > 0 {
		tables = make(map[string]struct{}, len(allowedTables))
		for _, t := range allowedTables {
			tables[t] = struct{}{}
		}
	}

	return &Service{
		store:     store,
		publisher: publisher,
		logger:    logger.With(zap.String("service", "records")),
		clock:     clk,
		tables:    tables,
	}
}

// List returns one page of rows matching the equality filters. String values
// are HTML-escaped for display.
func (s *Service) List(ctx context.Context, table string, q models.ListRecordsQuery, filters map[string]any) (*models.RecordListResponse, error) {
	if err := s.checkTable(table); err != nil {
		return nil, err
	}

	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Page > maxPage {
		q.Page = maxPage
	}
	if q.Limit <= 0 {
		q.Limit = defaultPageSize
	}
	if q.Limit > maxPageSize {
		q.Limit = maxPageSize
	}

	sel := query.Select(table)
	if len(filters) > 0 {
		clause, args, err := conditions(filters)
		if err != nil {
			return nil, err
		}
		sel = sel.Where(clause, args...)
	}

	total, err := s.count(ctx, sel)
	if err != nil {
		return nil, err
	}

	if q.OrderBy != "" {
		sel = sel.OrderBy(q.OrderBy, q.Desc)
	}
	sel = sel.Limit(q.Limit).Offset((q.Page - 1) * q.Limit)

	rows, err := s.store.Select(ctx, sel)
	if err != nil {
		return nil, asValidation(err)
	}

	out := make([]models.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, sanitizeRow(row))
	}

	return &models.RecordListResponse{
		Table:   table,
		Records: out,
		Pagination: models.Pagination{
			CurrentPage:  q.Page,
			PageSize:     q.Limit,
			TotalPages:   int(math.Ceil(float64(total) / float64(q.Limit))),
			TotalRecords: total,
		},
	}, nil
}

// Create inserts one row.
func (s *Service) Create(ctx context.Context, table string, record map[string]any) (*models.WriteResponse, error) {
	if err := s.checkTable(table); err != nil {
		return nil, err
	}
	if len(record) == 0 {
		return nil, NewValidationError("record must contain at least one column")
	}
	if err := scalars(record); err != nil {
		return nil, err
	}

	res, err := s.store.Insert(ctx, query.Insert(table).Record(record))
	if err != nil {
		return nil, asValidation(err)
	}

	return s.written(ctx, table, models.OperationInsert, SourceAPI, res, record, nil), nil
}

// Update changes every row matching req.Where. An empty Where is rejected.
func (s *Service) Update(ctx context.Context, table string, req models.UpdateRecordsRequest) (*models.WriteResponse, error) {
	if err := s.checkTable(table); err != nil {
		return nil, err
	}
	if len(req.Set) == 0 {
		return nil, NewValidationError("set must contain at least one column")
	}
	if len(req.Where) == 0 {
		return nil, NewValidationError("where is required; refusing to update every row")
	}
	if err := scalars(req.Set); err != nil {
		return nil, err
	}

	clause, args, err := conditions(req.Where)
	if err != nil {
		return nil, err
	}

	res, err := s.store.Update(ctx, query.Update(table).SetValues(req.Set).Where(clause, args...))
	if err != nil {
		return nil, asValidation(err)
	}

	return s.written(ctx, table, models.OperationUpdate, SourceAPI, res, req.Set, req.Where), nil
}

// Delete removes every row matching filters. Empty filters are rejected.
func (s *Service) Delete(ctx context.Context, table string, filters map[string]any) (*models.WriteResponse, error) {
	if err := s.checkTable(table); err != nil {
		return nil, err
	}
	if len(filters) == 0 {
		return nil, NewValidationError("at least one filter is required; refusing to delete every row")
	}

	clause, args, err := conditions(filters)
	if err != nil {
		return nil, err
	}

	res, err := s.store.Delete(ctx, query.Delete(table).Where(clause, args...))
	if err != nil {
		return nil, asValidation(err)
	}

	return s.written(ctx, table, models.OperationDelete, SourceAPI, res, nil, filters), nil
}

// Purge runs a scheduled delete. The statement must carry a WHERE clause.
func (s *Service) Purge(ctx context.Context, job string, q query.DeleteBuilder) (*models.WriteResponse, error) {
	if err := s.checkTable(q.Table()); err != nil {
		return nil, err
	}
	if !q.Scoped() {
		return nil, NewValidationError("purge job %s has no where clause", job)
	}

	res, err := s.store.Delete(ctx, q)
	if err != nil {
		return nil, asValidation(err)
	}

	return s.written(ctx, q.Table(), models.OperationPurge, SourceScheduler, res, nil, map[string]any{"job": job}), nil
}

func (s *Service) checkTable(table string) error {
	if !query.ValidIdentifier(table) {
		return NewValidationError("%q is not a valid table name", table)
	}
	if s.tables == nil {
		return nil
	}
	if _, ok := s.tables[table]; !ok {
		return ErrTableNotFound
	}
	return nil
}

func (s *Service) count(ctx context.Context, sel query.SelectBuilder) (int64, error) {
	rows, err := s.store.Select(ctx, sel.Count())
	if err != nil {
		return 0, asValidation(err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return toInt64(rows[0]["total"])
}

// written publishes the change event and builds the response. Publish
// failures are logged; the write itself already happened.
func (s *Service) written(ctx context.Context, table string, op models.Operation, source string, res database.Result, values, filters map[string]any) *models.WriteResponse {
	now := s.clock.Now().UTC()
	eventID := uuid.New().String()

	err := s.publisher.Publish(ctx, events.ChangeEvent{
		EventID:      eventID,
		Table:        table,
		Operation:    string(op),
		Values:       values,
		Filters:      filters,
		RowsAffected: res.RowsAffected,
		LastInsertID: res.LastInsertID,
		Source:       source,
		OccurredAt:   now,
	})
	if err != nil {
		s.logger.Warn("failed to publish change event",
			zap.String("event_id", eventID),
			zap.String("table", table),
			zap.String("operation", string(op)),
			zap.Error(err),
		)
		eventID = ""
	}

	s.logger.Info("rows written",
		zap.String("table", table),
		zap.String("operation", string(op)),
		zap.Int64("rows_affected", res.RowsAffected),
	)

	return &models.WriteResponse{
		Table:        table,
		Operation:    op,
		RowsAffected: res.RowsAffected,
		LastInsertID: res.LastInsertID,
		EventID:      eventID,
		ExecutedAt:   now,
	}
}

// conditions builds "a = ? AND b IS NULL" from filters, sorted by column.
func conditions(filters map[string]any) (string, []any, error) {
	if err := scalars(filters); err != nil {
		return "", nil, err
	}
	keys := make([]string, 0, len(filters))
	for k := range filters {
		if !query.ValidIdentifier(k) {
			return "", nil, NewValidationError("%q is not a valid column name", k)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys))
	for _, k := range keys {
		if filters[k] == nil {
			parts = append(parts, query.QuoteIdentifier(k)+" IS NULL")
			continue
		}
		parts = append(parts, query.QuoteIdentifier(k)+" = ?")
		args = append(args, filters[k])
	}
	return strings.Join(parts, " AND "), args, nil
}

// scalars rejects column values that cannot be bound to a single
// placeholder, such as nested JSON objects and arrays.
func scalars(values map[string]any) error {
	for _, k := range sortedKeys(values) {
		v := values[k]
		if v == nil {
			continue
		}
		if _, ok := v.([]byte); ok {
			continue
		}
		if _, ok := v.(time.Time); ok {
			continue
		}
		switch reflect.TypeOf(v).Kind() {
		case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct, reflect.Pointer, reflect.Func, reflect.Chan, reflect.Interface:
			return NewValidationError("column %s: unsupported value type %T", k, v)
		}
	}
	return nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sanitizeRow(row database.Row) models.Record {
	out := make(models.Record, len(row))
	for k, v := range row {
		if s, ok := v.(string); ok {
			out[k] = sanitize.Output(s)
			continue
		}
		out[k] = v
	}
	return out
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case uint64:
		return int64(n), nil
	case float64:
		return int64(n), nil
	case string:
		parsed, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parse count: %w", err)
		}
		return parsed, nil
	default:
		return 0, fmt.Errorf("unexpected count type %T", v)
	}
}

// Package database wraps a single driver connection handle and executes
// statements produced by the query package.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dhima/mysql-crud/internal/logging"
	"github.com/dhima/mysql-crud/internal/query"
	"github.com/dhima/mysql-crud/internal/sanitize"
	"go.uber.org/zap"
)

// Row is one result row keyed by column name.
type Row map[string]any

// Result describes the outcome of a write.
type Result struct {
	RowsAffected int64 `json:"rows_affected"`
	LastInsertID int64 `json:"last_insert_id,omitempty"`
}

// Conn is the capability set a caller needs from a database connection.
type Conn interface {
	Connect(ctx context.Context) error
	Disconnect() (bool, error)
	Query(ctx context.Context, stmt string, args ...any) ([]Row, error)
	Exec(ctx context.Context, stmt string, args ...any) (Result, error)
}

var _ Conn = (*Database)(nil)

// Stats are statement counters since construction.
type Stats struct {
	Connected  bool  `json:"connected"`
	Statements int64 `json:"statements"`
	Failures   int64 `json:"failures"`
	Unscoped   int64 `json:"unscoped"`
	OpenConns  int   `json:"open_connections"`
	InUse      int   `json:"in_use"`
}

// Database owns at most one live handle. The handle field is guarded so a
// single instance can be shared by concurrent callers.
type Database struct {
	config Config
	logger logging.Logger

	mu     sync.RWMutex
	handle *sql.DB

	statements atomic.Int64
	failures   atomic.Int64
	unscoped   atomic.Int64
}

// New creates a disconnected Database.
func New(cfg Config, logger logging.Logger) *Database {
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}
	cfg = cfg.withDefaults()
	return &Database{
		config: cfg,
		logger: logger.With(zap.String("component", "database"), zap.String("driver", cfg.Driver)),
	}
}

// Config returns a copy of the connection parameters.
func (d *Database) Config() Config {
	return d.config
}

// Connect opens and verifies the handle. Connecting an already connected
// Database is a no-op. On failure the handle stays unset.
func (d *Database) Connect(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.handle != nil {
		return nil
	}

	dsn, err := d.config.DSN()
	if err != nil {
		return fmt.Errorf("build dsn: %w", err)
	}

	db, err := sql.Open(d.config.Driver, dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(d.config.MaxOpenConns)
	db.SetMaxIdleConns(d.config.MaxOpenConns)

	pingCtx, cancel := context.WithTimeout(ctx, d.config.ConnectTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		d.logger.Error("failed to connect to database",
			zap.String("target", d.config.String()),
			zap.Error(err),
		)
		return fmt.Errorf("connect to database: %w", err)
	}

	d.handle = db
	d.logger.Info("connected to database", zap.String("target", d.config.String()))
	return nil
}

// Disconnect closes the handle. It reports false without error when there
// was nothing to close. A failed close still clears the handle.
func (d *Database) Disconnect() (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.handle == nil {
		return false, nil
	}

	err := d.handle.Close()
	d.handle = nil
	if err != nil {
		d.logger.Error("failed to close database connection", zap.Error(err))
		return false, fmt.Errorf("close database: %w", err)
	}

	d.logger.Info("disconnected from database")
	return true, nil
}

// Connected reports whether a handle is open.
func (d *Database) Connected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.handle != nil
}

// Ping verifies the open handle is still usable.
func (d *Database) Ping(ctx context.Context) error {
	db, err := d.db()
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

// Select runs the built SELECT and returns every row.
func (d *Database) Select(ctx context.Context, q query.SelectBuilder) ([]Row, error) {
	stmt, args, err := q.Build()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	return d.Query(ctx, stmt, args...)
}

// Insert runs the built INSERT.
func (d *Database) Insert(ctx context.Context, q query.InsertBuilder) (Result, error) {
	if d.config.SanitizeValues {
		q = q.MapValues(sanitizeValue)
	}
	stmt, args, err := q.Build()
	if err != nil {
		return Result{}, fmt.Errorf("build insert: %w", err)
	}
	return d.Exec(ctx, stmt, args...)
}

// Update runs the built UPDATE. Statements without WHERE are executed but logged.
func (d *Database) Update(ctx context.Context, q query.UpdateBuilder) (Result, error) {
	if d.config.SanitizeValues {
		q = q.MapValues(sanitizeValue)
	}
	stmt, args, err := q.Build()
	if err != nil {
		return Result{}, fmt.Errorf("build update: %w", err)
	}
	if !q.Scoped() {
		d.warnUnscoped(q.Table(), "update")
	}
	return d.Exec(ctx, stmt, args...)
}

// Delete runs the built DELETE. Statements without WHERE are executed but logged.
func (d *Database) Delete(ctx context.Context, q query.DeleteBuilder) (Result, error) {
	stmt, args, err := q.Build()
	if err != nil {
		return Result{}, fmt.Errorf("build delete: %w", err)
	}
	if !q.Scoped() {
		d.warnUnscoped(q.Table(), "delete")
	}
	return d.Exec(ctx, stmt, args...)
}

// Query runs a statement that returns rows.
func (d *Database) Query(ctx context.Context, stmt string, args ...any) ([]Row, error) {
	db, err := d.db()
	if err != nil {
		return nil, err
	}

	d.statements.Add(1)
	d.logger.Debug("executing query", zap.String("statement", stmt), zap.Int("args", len(args)))

	rows, err := db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, d.fail("query", stmt, err)
	}
	defer rows.Close()

	result, err := scanRows(rows)
	if err != nil {
		return nil, d.fail("scan rows", stmt, err)
	}
	return result, nil
}

// Exec runs a statement that does not return rows.
func (d *Database) Exec(ctx context.Context, stmt string, args ...any) (Result, error) {
	db, err := d.db()
	if err != nil {
		return Result{}, err
	}

	d.statements.Add(1)
	d.logger.Debug("executing statement", zap.String("statement", stmt), zap.Int("args", len(args)))

	res, err := db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return Result{}, d.fail("exec", stmt, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return Result{}, d.fail("rows affected", stmt, err)
	}
	// Not every statement produces an insert id; the error is not interesting.
	lastID, _ := res.LastInsertId()

	return Result{RowsAffected: affected, LastInsertID: lastID}, nil
}

// SanitizeInput trims, HTML-escapes and MySQL-escapes s.
func (d *Database) SanitizeInput(s string) string {
	return sanitize.Input(s)
}

// SanitizeOutput HTML-escapes s for display.
func (d *Database) SanitizeOutput(s string) string {
	return sanitize.Output(s)
}

// Stats returns a snapshot of the statement counters.
func (d *Database) Stats() Stats {
	s := Stats{
		Statements: d.statements.Load(),
		Failures:   d.failures.Load(),
		Unscoped:   d.unscoped.Load(),
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.handle != nil {
		dbStats := d.handle.Stats()
		s.Connected = true
		s.OpenConns = dbStats.OpenConnections
		s.InUse = dbStats.InUse
	}
	return s
}

func (d *Database) db() (*sql.DB, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.handle == nil {
		return nil, ErrNotConnected
	}
	return d.handle, nil
}

func (d *Database) fail(op, stmt string, err error) error {
	d.failures.Add(1)
	d.logger.Error("statement failed",
		zap.String("op", op),
		zap.String("statement", stmt),
		zap.Error(err),
	)
	return fmt.Errorf("%s: %w", op, err)
}

func (d *Database) warnUnscoped(table, op string) {
	d.unscoped.Add(1)
	d.logger.Warn("executing statement without where clause",
		zap.String("table", table),
		zap.String("op", op),
	)
}

func sanitizeValue(v any) any {
	if s, ok := v.(string); ok {
		return sanitize.Value(s)
	}
	return v
}

func scanRows(rows *sql.Rows) ([]Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := make([]Row, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}

		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}

		row := make(Row, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
				continue
			}
			row[col] = values[i]
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

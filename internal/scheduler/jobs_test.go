package scheduler

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dhima/mysql-crud/internal/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validJobs = `
jobs:
  - name: expire-sessions
    cron: "*/10 * * * *"
    table: sessions
    column: created_at
    older_than: 24h
  - name: drop-cancelled
    cron: "@daily"
    timezone: UTC
    table: orders
    where: status = ? AND archived = ?
    args: [cancelled, 1]
`

func TestParseJobs_Valid(t *testing.T) {
	jobs, err := ParseJobs([]byte(validJobs))

	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "expire-sessions", jobs[0].Name)
	age, err := jobs[0].Age()
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, age)
	assert.Equal(t, []any{"cancelled", 1}, jobs[1].Args)
}

func TestParseJobs_Empty(t *testing.T) {
	jobs, err := ParseJobs([]byte(""))

	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestParseJobs_SchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"missing jobs", "other: 1"},
		{"missing cron", "jobs:\n  - name: a\n    table: t\n    where: id = 1\n"},
		{"no where", "jobs:\n  - name: a\n    cron: '@daily'\n    table: t\n"},
		{"older_than without column", "jobs:\n  - name: a\n    cron: '@daily'\n    table: t\n    older_than: 1h\n"},
		{"unknown key", "jobs:\n  - name: a\n    cron: '@daily'\n    table: t\n    where: id = 1\n    truncate: true\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJobs([]byte(tt.doc))

			var schemaErr *SchemaError
			require.True(t, errors.As(err, &schemaErr), "got %v", err)
			assert.NotEmpty(t, schemaErr.Problems)
		})
	}
}

func TestParseJobs_SemanticErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"bad cron", "jobs:\n  - name: a\n    cron: 'every day'\n    table: t\n    where: id = 1\n"},
		{"bad timezone", "jobs:\n  - name: a\n    cron: '@daily'\n    timezone: Nowhere/Land\n    table: t\n    where: id = 1\n"},
		{"bad table", "jobs:\n  - name: a\n    cron: '@daily'\n    table: 't; DROP'\n    where: id = 1\n"},
		{"bad duration", "jobs:\n  - name: a\n    cron: '@daily'\n    table: t\n    column: c\n    older_than: soon\n"},
		{"negative duration", "jobs:\n  - name: a\n    cron: '@daily'\n    table: t\n    column: c\n    older_than: -1h\n"},
		{"bad column", "jobs:\n  - name: a\n    cron: '@daily'\n    table: t\n    column: 'c; --'\n    older_than: 1h\n"},
		{"two timezones", "jobs:\n  - name: a\n    cron: 'CRON_TZ=Asia/Kolkata 0 9 * * *'\n    timezone: UTC\n    table: t\n    where: id = 1\n"},
		{"too few args", "jobs:\n  - name: a\n    cron: '@daily'\n    table: t\n    where: status = ? AND id = ?\n    args: [x]\n"},
		{"too many args", "jobs:\n  - name: a\n    cron: '@daily'\n    table: t\n    where: id = 1\n    args: [x]\n"},
		{"duplicate name", "jobs:\n  - name: a\n    cron: '@daily'\n    table: t\n    where: id = 1\n  - name: a\n    cron: '@daily'\n    table: t\n    where: id = 2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJobs([]byte(tt.doc))

			require.Error(t, err)
			var schemaErr *SchemaError
			assert.False(t, errors.As(err, &schemaErr))
		})
	}
}

func TestParseJobs_BadYAML(t *testing.T) {
	_, err := ParseJobs([]byte("jobs: [unclosed"))
	assert.Error(t, err)
}

func TestLoadJobs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "purge-jobs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validJobs), 0o600))

	jobs, err := LoadJobs(path)
	require.NoError(t, err)
	assert.Len(t, jobs, 2)

	_, err = LoadJobs(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestJobStatement(t *testing.T) {
	jobs, err := ParseJobs([]byte(validJobs))
	require.NoError(t, err)
	now := time.Date(2025, 1, 2, 3, 0, 0, 0, time.UTC)

	q, err := jobs[0].Statement(now)
	require.NoError(t, err)
	stmt, args, err := q.Build()
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM sessions WHERE created_at < ?", stmt)
	assert.Equal(t, []any{now.Add(-24 * time.Hour)}, args)

	rendered, err := q.Render()
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM sessions WHERE created_at < '2025-01-01 03:00:00'", rendered)

	q, err = jobs[1].Statement(now)
	require.NoError(t, err)
	stmt, args, err = q.Build()
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM orders WHERE status = ? AND archived = ?", stmt)
	assert.Equal(t, []any{"cancelled", 1}, args)
}

func TestJobStatement_JobBuiltInCode(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 0, 0, 0, time.UTC)
	job := Job{Name: "expire", Cron: "@hourly", Table: "sessions", Column: "key", OlderThan: "2h"}

	q, err := job.Statement(now)
	require.NoError(t, err)
	stmt, args, err := q.Build()

	require.NoError(t, err)
	assert.True(t, q.Scoped())
	assert.Equal(t, "DELETE FROM sessions WHERE `key` < ?", stmt)
	assert.Equal(t, []any{now.Add(-2 * time.Hour)}, args)

	_, err = Job{Table: "sessions", Column: "ts", OlderThan: "soon"}.Statement(now)
	assert.Error(t, err)
}

func TestJobStatement_WhereAndAge(t *testing.T) {
	jobs, err := ParseJobs([]byte("jobs:\n  - name: a\n    cron: '@hourly'\n    table: logs\n    where: level = ?\n    args: [debug]\n    column: ts\n    older_than: 1h\n"))
	require.NoError(t, err)
	now := time.Date(2025, 1, 2, 3, 0, 0, 0, time.UTC)

	q, err := jobs[0].Statement(now)
	require.NoError(t, err)
	stmt, args, err := q.Build()

	require.NoError(t, err)
	assert.True(t, q.Scoped())
	assert.Equal(t, "DELETE FROM logs WHERE level = ? AND ts < ?", stmt)
	assert.Equal(t, []any{"debug", now.Add(-time.Hour)}, args)
	assert.IsType(t, query.DeleteBuilder{}, q)
}

func TestParseJobs_InlineTimezone(t *testing.T) {
	jobs, err := ParseJobs([]byte("jobs:\n  - name: a\n    cron: 'CRON_TZ=Asia/Kolkata 0 9 * * *'\n    table: t\n    where: id = 1\n"))

	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "CRON_TZ=Asia/Kolkata 0 9 * * *", cronSpec(jobs[0].Cron, jobs[0].Timezone))

	_, err = NewEngine(&fakePurger{}, jobs, nil)
	require.NoError(t, err)

	next, err := NextRun(jobs[0].Cron, jobs[0].Timezone, time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 2, 3, 30, 0, 0, time.UTC), next)
}

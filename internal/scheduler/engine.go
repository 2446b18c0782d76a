package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/dhima/mysql-crud/internal/models"
	"github.com/dhima/mysql-crud/internal/query"
	"github.com/dhima/mysql-crud/pkg/clock"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const defaultJobTimeout = time.Minute

// Purger executes a scoped delete on behalf of a job.
type Purger interface {
	Purge(ctx context.Context, job string, q query.DeleteBuilder) (*models.WriteResponse, error)
}

// Engine runs purge jobs on their cron schedules.
type Engine struct {
	cron       *cron.Cron
	purger     Purger
	logger     *zap.Logger
	clock      clock.Clock
	jobs       []Job
	jobTimeout time.Duration
}

// NewEngine registers every job with a cron runner.
func NewEngine(purger Purger, jobs []Job, logger *zap.Logger) (*Engine, error) {
	return NewEngineWithClock(purger, jobs, logger, clock.RealClock{})
}

// NewEngineWithClock allows injecting a custom clock (useful for tests).
func NewEngineWithClock(purger Purger, jobs []Job, logger *zap.Logger, clk clock.Clock) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	e := &Engine{
		cron: cron.New(
			cron.WithParser(parser),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		purger:     purger,
		logger:     logger.With(zap.String("component", "scheduler")),
		clock:      clk,
		jobs:       jobs,
		jobTimeout: defaultJobTimeout,
	}

	for _, job := range jobs {
		job := job
		if _, err := e.cron.AddFunc(cronSpec(job.Cron, job.Timezone), func() {
			ctx, cancel := context.WithTimeout(context.Background(), e.jobTimeout)
			defer cancel()
			_ = e.runJob(ctx, job)
		}); err != nil {
			return nil, fmt.Errorf("schedule purge job %s: %w", job.Name, err)
		}
	}

	return e, nil
}

// Run starts the cron runner and blocks until ctx is done. Running jobs
// are allowed to finish before Run returns.
func (e *Engine) Run(ctx context.Context) error {
	for _, job := range e.jobs {
		next, err := NextRun(job.Cron, job.Timezone, e.clock.Now())
		if err != nil {
			continue
		}
		e.logger.Info("purge job scheduled",
			zap.String("job", job.Name),
			zap.String("table", job.Table),
			zap.Time("next_run", next),
		)
	}

	e.cron.Start()
	<-ctx.Done()

	e.logger.Info("stopping scheduler")
	<-e.cron.Stop().Done()
	return ctx.Err()
}

// RunNow executes the named job once, outside its schedule.
func (e *Engine) RunNow(ctx context.Context, name string) error {
	for _, job := range e.jobs {
		if job.Name == name {
			return e.runJob(ctx, job)
		}
	}
	return fmt.Errorf("purge job %s not found", name)
}

func (e *Engine) runJob(ctx context.Context, job Job) error {
	start := e.clock.Now()

	q, err := job.Statement(start)
	if err != nil {
		e.logger.Error("purge job misconfigured",
			zap.String("job", job.Name),
			zap.Error(err),
		)
		return fmt.Errorf("purge job %s: %w", job.Name, err)
	}

	resp, err := e.purger.Purge(ctx, job.Name, q)
	if err != nil {
		e.logger.Error("purge job failed",
			zap.String("job", job.Name),
			zap.String("table", job.Table),
			zap.Error(err),
		)
		return err
	}

	e.logger.Info("purge job completed",
		zap.String("job", job.Name),
		zap.String("table", job.Table),
		zap.Int64("rows_affected", resp.RowsAffected),
		zap.String("event_id", resp.EventID),
	)
	return nil
}

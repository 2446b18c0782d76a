package records

import (
	"context"

	"github.com/dhima/mysql-crud/internal/database"
	"github.com/dhima/mysql-crud/internal/query"
	"github.com/dhima/mysql-crud/platform/events"
)

// RecordStore defines the statement execution required by the records service.
type RecordStore interface {
	Select(ctx context.Context, q query.SelectBuilder) ([]database.Row, error)
	Insert(ctx context.Context, q query.InsertBuilder) (database.Result, error)
	Update(ctx context.Context, q query.UpdateBuilder) (database.Result, error)
	Delete(ctx context.Context, q query.DeleteBuilder) (database.Result, error)
}

// EventPublisher abstracts the Kafka publisher for testability.
type EventPublisher interface {
	Publish(ctx context.Context, event events.ChangeEvent) error
}

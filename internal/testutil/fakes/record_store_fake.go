package fakes

import (
	"context"
	"sync"

	"github.com/dhima/mysql-crud/internal/database"
	"github.com/dhima/mysql-crud/internal/query"
)

// Statement is a built statement captured by FakeRecordStore.
type Statement struct {
	SQL  string
	Args []any
}

// FakeRecordStore records every statement it is asked to run and replies
// with canned results. SelectResults are consumed in order.
type FakeRecordStore struct {
	mu            sync.Mutex
	Statements    []Statement
	SelectResults [][]database.Row
	Result        database.Result
	Err           error
}

func NewFakeRecordStore() *FakeRecordStore {
	return &FakeRecordStore{}
}

func (f *FakeRecordStore) Select(_ context.Context, q query.SelectBuilder) ([]database.Row, error) {
	if err := f.record(q); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.SelectResults) == 0 {
		return []database.Row{}, nil
	}
	rows := f.SelectResults[0]
	f.SelectResults = f.SelectResults[1:]
	return rows, nil
}

func (f *FakeRecordStore) Insert(_ context.Context, q query.InsertBuilder) (database.Result, error) {
	return f.write(q)
}

func (f *FakeRecordStore) Update(_ context.Context, q query.UpdateBuilder) (database.Result, error) {
	return f.write(q)
}

func (f *FakeRecordStore) Delete(_ context.Context, q query.DeleteBuilder) (database.Result, error) {
	return f.write(q)
}

// Last returns the most recent statement, or an empty one.
func (f *FakeRecordStore) Last() Statement {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Statements) == 0 {
		return Statement{}
	}
	return f.Statements[len(f.Statements)-1]
}

func (f *FakeRecordStore) write(q query.Builder) (database.Result, error) {
	if err := f.record(q); err != nil {
		return database.Result{}, err
	}
	return f.Result, nil
}

func (f *FakeRecordStore) record(q query.Builder) error {
	stmt, args, err := q.Build()
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Statements = append(f.Statements, Statement{SQL: stmt, Args: args})
	return f.Err
}

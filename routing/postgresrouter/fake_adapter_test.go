package postgresrouter

import (
	"context"
	"sync"

	"github.com/AntonStoeckl/replica-routing-go/routing/postgresrouter/internal/adapters"
)

// fakeAdapter is an in-memory adapters.DBAdapter recording the statements run on it.
type fakeAdapter struct {
	mu         sync.Mutex
	statements []string
	queryErr   error
	execErr    error
	beginErr   error
	commitErr  error
	pingErr    error
	begun      int
	tx         *fakeTx
}

type fakeTx struct {
	adapter    *fakeAdapter
	statements []string
	committed  bool
	rolledBack bool
}

type fakeRows struct{}

type fakeResult struct{}

func newFakeAdapter() *fakeAdapter {
	return &fakeAdapter{}
}

func (f *fakeAdapter) Query(_ context.Context, query string, _ ...any) (adapters.DBRows, error) {
	f.record(query)

	if f.queryErr != nil {
		return nil, f.queryErr
	}

	return fakeRows{}, nil
}

func (f *fakeAdapter) Exec(_ context.Context, query string, _ ...any) (adapters.DBResult, error) {
	f.record(query)

	if f.execErr != nil {
		return nil, f.execErr
	}

	return fakeResult{}, nil
}

func (f *fakeAdapter) Begin(_ context.Context) (adapters.DBTx, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.beginErr != nil {
		return nil, f.beginErr
	}

	f.begun++
	f.tx = &fakeTx{adapter: f}

	return f.tx, nil
}

func (f *fakeAdapter) Ping(_ context.Context) error {
	return f.pingErr
}

func (f *fakeAdapter) record(query string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.statements = append(f.statements, query)
}

func (f *fakeAdapter) Statements() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	statements := make([]string, len(f.statements))
	copy(statements, f.statements)

	return statements
}

func (t *fakeTx) Query(_ context.Context, query string, _ ...any) (adapters.DBRows, error) {
	t.statements = append(t.statements, query)
	return fakeRows{}, nil
}

func (t *fakeTx) Exec(_ context.Context, query string, _ ...any) (adapters.DBResult, error) {
	t.statements = append(t.statements, query)
	return fakeResult{}, nil
}

func (t *fakeTx) Commit(_ context.Context) error {
	if t.adapter.commitErr != nil {
		return t.adapter.commitErr
	}

	t.committed = true

	return nil
}

func (t *fakeTx) Rollback(_ context.Context) error {
	t.rolledBack = true
	return nil
}

func (fakeRows) Next() bool { return false }
func (fakeRows) Scan(...any) error { return nil }
func (fakeRows) Close() error { return nil }
func (fakeRows) Err() error { return nil }
func (fakeResult) RowsAffected() (int64, error) { return 1, nil }

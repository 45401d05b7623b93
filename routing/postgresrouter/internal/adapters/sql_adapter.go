package adapters

import (
	"context"
	"database/sql"
)

// SQLAdapter implements DBAdapter for sql.DB
type SQLAdapter struct {
	db *sql.DB
}

// NewSQLAdapter creates a new SQL adapter
func NewSQLAdapter(db *sql.DB) *SQLAdapter {
	return &SQLAdapter{db: db}
}

func (s *SQLAdapter) Query(ctx context.Context, query string, args ...any) (DBRows, error) {
	return stdQuery(ctx, s.db, query, args)
}

func (s *SQLAdapter) Exec(ctx context.Context, query string, args ...any) (DBResult, error) {
	return stdExec(ctx, s.db, query, args)
}

func (s *SQLAdapter) Begin(ctx context.Context) (DBTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	return &sqlTx{tx: tx}, nil
}

func (s *SQLAdapter) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// sqlTx wraps sql.Tx; the context of Commit and Rollback is ignored, sql.Tx binds it at BeginTx.
type sqlTx struct {
	tx *sql.Tx
}

func (s *sqlTx) Query(ctx context.Context, query string, args ...any) (DBRows, error) {
	return stdQuery(ctx, s.tx, query, args)
}

func (s *sqlTx) Exec(ctx context.Context, query string, args ...any) (DBResult, error) {
	return stdExec(ctx, s.tx, query, args)
}

func (s *sqlTx) Commit(_ context.Context) error {
	return s.tx.Commit()
}

func (s *sqlTx) Rollback(_ context.Context) error {
	return s.tx.Rollback()
}

var _ DBAdapter = (*SQLAdapter)(nil)

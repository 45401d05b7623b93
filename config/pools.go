package config

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver
)

const driverNamePostgres = "postgres"

// ErrOpeningDatabaseFailed is returned when a pool can not be created from its DSN.
var ErrOpeningDatabaseFailed = errors.New("opening database failed")

// PGXPoolConfig creates a pgxpool.Config for dsn tuned by pool.
func PGXPoolConfig(dsn string, pool PoolConfig) (*pgxpool.Config, error) {
	dbConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errors.Join(ErrOpeningDatabaseFailed, err)
	}

	dbConfig.MaxConns = pool.MaxConns
	dbConfig.MinConns = pool.MinConns
	dbConfig.MaxConnLifetime = pool.MaxConnLifetime
	dbConfig.MaxConnIdleTime = pool.MaxConnIdleTime
	dbConfig.HealthCheckPeriod = pool.HealthCheckPeriod
	dbConfig.ConnConfig.ConnectTimeout = pool.ConnectTimeout

	return dbConfig, nil
}

// OpenPGXPool creates a pgx pool for dsn tuned by pool. Connections are established lazily.
func OpenPGXPool(ctx context.Context, dsn string, pool PoolConfig) (*pgxpool.Pool, error) {
	dbConfig, err := PGXPoolConfig(dsn, pool)
	if err != nil {
		return nil, err
	}

	db, err := pgxpool.NewWithConfig(ctx, dbConfig)
	if err != nil {
		return nil, errors.Join(ErrOpeningDatabaseFailed, err)
	}

	return db, nil
}

// OpenSQLDB opens a sql.DB with the lib/pq driver for dsn tuned by pool.
// MinConns is used as the number of idle connections kept.
func OpenSQLDB(dsn string, pool PoolConfig) (*sql.DB, error) {
	db, err := sql.Open(driverNamePostgres, dsn)
	if err != nil {
		return nil, errors.Join(ErrOpeningDatabaseFailed, err)
	}

	tuneSQLDB(db, pool)

	return db, nil
}

// OpenSQLX opens a sqlx.DB with the lib/pq driver for dsn tuned by pool.
func OpenSQLX(dsn string, pool PoolConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open(driverNamePostgres, dsn)
	if err != nil {
		return nil, errors.Join(ErrOpeningDatabaseFailed, err)
	}

	tuneSQLDB(db.DB, pool)

	return db, nil
}

func tuneSQLDB(db *sql.DB, pool PoolConfig) {
	db.SetMaxOpenConns(int(pool.MaxConns))
	db.SetMaxIdleConns(int(pool.MinConns))
	db.SetConnMaxLifetime(pool.MaxConnLifetime)
	db.SetConnMaxIdleTime(pool.MaxConnIdleTime)
}

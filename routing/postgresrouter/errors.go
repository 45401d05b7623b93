package postgresrouter

import "errors"

// ErrNilDatabaseConnection is returned when a nil pool or database handle is passed to the Router.
var ErrNilDatabaseConnection = errors.New("database connection must not be nil")

// ErrBeginTransactionFailed is returned when a transaction can not be started on the primary.
var ErrBeginTransactionFailed = errors.New("beginning transaction failed")

// ErrCommitTransactionFailed is returned when committing a transaction fails.
var ErrCommitTransactionFailed = errors.New("committing transaction failed")

// ErrBuildingQueryFailed is returned when a goqu dataset can not be converted to SQL.
var ErrBuildingQueryFailed = errors.New("building query failed")

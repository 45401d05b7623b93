package postgresrouter

import (
	"context"
	"errors"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // driver import

	"github.com/AntonStoeckl/replica-routing-go/routing"
)

const dialectPostgres = "postgres"

// Dataset is a goqu dataset that can be rendered to SQL,
// e.g. *goqu.SelectDataset, *goqu.InsertDataset, *goqu.UpdateDataset or *goqu.DeleteDataset.
type Dataset interface {
	ToSQL() (string, []any, error)
}

// Dialect returns the goqu dialect to build datasets for the Router with.
func (r *Router) Dialect() goqu.DialectWrapper {
	return goqu.Dialect(dialectPostgres)
}

// DescribeDataset returns the command kind of ds and whether it returns generated keys.
// Datasets of unknown types are described as routing.KindOther, so they run on the primary.
func DescribeDataset(ds Dataset) (routing.CommandKind, bool) {
	switch typed := ds.(type) {
	case *goqu.SelectDataset:
		return routing.KindRead, false
	case *goqu.InsertDataset:
		return routing.KindWrite, typed.ReturnsColumns()
	case *goqu.UpdateDataset, *goqu.DeleteDataset, *goqu.TruncateDataset:
		return routing.KindWrite, false
	default:
		return routing.KindOther, false
	}
}

// QueryDataset renders ds to SQL and runs it as a query, routed by the type of ds:
// selects may go to a replica, inserts, updates and deletes with RETURNING go to the primary.
func (r *Router) QueryDataset(ctx context.Context, ds Dataset) (Rows, error) {
	op, args, err := r.datasetOperation(ctx, operationQuery, ds)
	if err != nil {
		return nil, err
	}

	return r.query(ctx, op, args)
}

// ExecDataset renders ds to SQL and runs it as a statement, routed by the type of ds.
func (r *Router) ExecDataset(ctx context.Context, ds Dataset) (Result, error) {
	op, args, err := r.datasetOperation(ctx, operationExec, ds)
	if err != nil {
		return nil, err
	}

	return r.exec(ctx, op, args)
}

func (r *Router) datasetOperation(ctx context.Context, defaultName string, ds Dataset) (routing.Operation, []any, error) {
	query, args, toSQLErr := ds.ToSQL()
	if toSQLErr != nil {
		r.logError(ctx, logMsgBuildQueryFailed, logAttrError, toSQLErr.Error())
		return routing.Operation{}, nil, errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	kind, generatedKey := DescribeDataset(ds)

	return r.operation(ctx, defaultName, kind, generatedKey, query), args, nil
}

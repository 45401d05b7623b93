package config

import (
	"context"
	"fmt"

	"github.com/AntonStoeckl/replica-routing-go/routing"
	"github.com/AntonStoeckl/replica-routing-go/routing/postgresrouter"
)

// Topology is a Router together with the pools opened for it.
type Topology struct {
	Router  *postgresrouter.Router
	closers []func()
}

// Close closes every pool of the topology.
func (t *Topology) Close() {
	for _, closer := range t.closers {
		closer()
	}
}

// OpenTopology opens the primary and replica pools of cfg with the configured driver
// and builds a Router over them. The options are applied after the ones derived from cfg.
func OpenTopology(ctx context.Context, cfg *Config, options ...postgresrouter.Option) (*Topology, error) {
	selector, err := cfg.Selector()
	if err != nil {
		return nil, err
	}

	topology := &Topology{}
	routerOptions := []postgresrouter.Option{postgresrouter.WithSelector(selector)}

	var newRouter func() (*postgresrouter.Router, error)

	switch cfg.Driver {
	case DriverPGXPool:
		primary, openErr := OpenPGXPool(ctx, cfg.Primary.DSN, cfg.Pool)
		if openErr != nil {
			return nil, openErr
		}
		topology.closers = append(topology.closers, primary.Close)

		for _, replica := range cfg.Replicas {
			pool, replicaErr := OpenPGXPool(ctx, replica.DSN, cfg.Pool)
			if replicaErr != nil {
				topology.Close()
				return nil, replicaErr
			}
			topology.closers = append(topology.closers, pool.Close)
			routerOptions = append(routerOptions, postgresrouter.WithPGXReplica(routing.Identity(replica.Name), pool))
		}

		newRouter = func() (*postgresrouter.Router, error) {
			return postgresrouter.NewRouterFromPGXPool(primary, append(routerOptions, options...)...)
		}

	case DriverSQLDB:
		primary, openErr := OpenSQLDB(cfg.Primary.DSN, cfg.Pool)
		if openErr != nil {
			return nil, openErr
		}
		topology.closers = append(topology.closers, func() { _ = primary.Close() })

		for _, replica := range cfg.Replicas {
			db, replicaErr := OpenSQLDB(replica.DSN, cfg.Pool)
			if replicaErr != nil {
				topology.Close()
				return nil, replicaErr
			}
			topology.closers = append(topology.closers, func() { _ = db.Close() })
			routerOptions = append(routerOptions, postgresrouter.WithSQLDBReplica(routing.Identity(replica.Name), db))
		}

		newRouter = func() (*postgresrouter.Router, error) {
			return postgresrouter.NewRouterFromSQLDB(primary, append(routerOptions, options...)...)
		}

	case DriverSQLX:
		primary, openErr := OpenSQLX(cfg.Primary.DSN, cfg.Pool)
		if openErr != nil {
			return nil, openErr
		}
		topology.closers = append(topology.closers, func() { _ = primary.Close() })

		for _, replica := range cfg.Replicas {
			db, replicaErr := OpenSQLX(replica.DSN, cfg.Pool)
			if replicaErr != nil {
				topology.Close()
				return nil, replicaErr
			}
			topology.closers = append(topology.closers, func() { _ = db.Close() })
			routerOptions = append(routerOptions, postgresrouter.WithSQLXReplica(routing.Identity(replica.Name), db))
		}

		newRouter = func() (*postgresrouter.Router, error) {
			return postgresrouter.NewRouterFromSQLX(primary, append(routerOptions, options...)...)
		}

	default:
		return nil, fmt.Errorf("%w: driver %q", ErrInvalidConfig, cfg.Driver)
	}

	router, err := newRouter()
	if err != nil {
		topology.Close()
		return nil, err
	}

	topology.Router = router

	return topology, nil
}

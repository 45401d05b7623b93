package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/AntonStoeckl/replica-routing-go/routing"
)

const (
	DriverPGXPool = "pgx.pool"
	DriverSQLDB   = "sql.db"
	DriverSQLX    = "sqlx.db"

	LogFormatJSON = "json"
	LogFormatText = "text"

	envDriver         = "REPLICA_ROUTING_DRIVER"
	envPrimaryDSN     = "REPLICA_ROUTING_PRIMARY_DSN"
	envReplicaDSNs    = "REPLICA_ROUTING_REPLICA_DSNS"
	envMaxConns       = "REPLICA_ROUTING_POOL_MAX_CONNS"
	envMinConns       = "REPLICA_ROUTING_POOL_MIN_CONNS"
	envConnectTimeout = "REPLICA_ROUTING_POOL_CONNECT_TIMEOUT"
	envSelection      = "REPLICA_ROUTING_SELECTION"
	envLogLevel       = "REPLICA_ROUTING_LOG_LEVEL"
	envLogFormat      = "REPLICA_ROUTING_LOG_FORMAT"
)

// ErrInvalidConfig is returned for configurations that can not be used to build a router.
var ErrInvalidConfig = errors.New("invalid configuration")

// ErrReadingConfigFailed is returned when the config file can not be read or parsed.
var ErrReadingConfigFailed = errors.New("reading configuration failed")

// Config is the replica topology and runtime settings of a router.
type Config struct {
	Driver   string           `yaml:"driver" env:"REPLICA_ROUTING_DRIVER"`
	Primary  DatabaseConfig   `yaml:"primary"`  // dsn: REPLICA_ROUTING_PRIMARY_DSN
	Replicas []DatabaseConfig `yaml:"replicas"` // dsns: REPLICA_ROUTING_REPLICA_DSNS
	Pool     PoolConfig       `yaml:"pool"`
	Routing  RoutingConfig    `yaml:"routing"`
	Logging  LoggingConfig    `yaml:"logging"`
}

// DatabaseConfig is one database of the topology.
// For replicas, Name is the replica identity; empty names are numbered replica, replica-2, ...
type DatabaseConfig struct {
	Name string `yaml:"name"`
	DSN  string `yaml:"dsn"`
}

// PoolConfig tunes every pool the router opens.
type PoolConfig struct {
	MaxConns          int32         `yaml:"maxConns" env:"REPLICA_ROUTING_POOL_MAX_CONNS"`
	MinConns          int32         `yaml:"minConns" env:"REPLICA_ROUTING_POOL_MIN_CONNS"`
	MaxConnLifetime   time.Duration `yaml:"maxConnLifetime"`
	MaxConnIdleTime   time.Duration `yaml:"maxConnIdleTime"`
	HealthCheckPeriod time.Duration `yaml:"healthCheckPeriod"`
	ConnectTimeout    time.Duration `yaml:"connectTimeout" env:"REPLICA_ROUTING_POOL_CONNECT_TIMEOUT"`
}

// RoutingConfig configures how reads are spread over the replicas.
type RoutingConfig struct {
	Selection string `yaml:"selection" env:"REPLICA_ROUTING_SELECTION"`
}

// LoggingConfig configures the slog logger of the command line tool.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"REPLICA_ROUTING_LOG_LEVEL"`
	Format string `yaml:"format" env:"REPLICA_ROUTING_LOG_FORMAT"`
}

// Default returns a Config with sensible defaults. It has no databases.
func Default() *Config {
	return &Config{
		Driver: DriverPGXPool,
		Primary: DatabaseConfig{
			Name: routing.Primary.String(),
		},
		Pool: PoolConfig{
			MaxConns:          8,
			MinConns:          2,
			MaxConnLifetime:   time.Hour,
			MaxConnIdleTime:   5 * time.Minute,
			HealthCheckPeriod: time.Minute,
			ConnectTimeout:    5 * time.Second,
		},
		Routing: RoutingConfig{
			Selection: routing.SelectionFirst,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: LogFormatText,
		},
	}
}

// Load reads the YAML file at path over the defaults, applies environment overrides and validates the result.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	return LoadWithLookup(path, os.LookupEnv)
}

// LoadWithLookup is Load with a custom environment lookup.
func LoadWithLookup(path string, lookupEnv func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Join(ErrReadingConfigFailed, err)
		}

		if err := cfg.decode(data); err != nil {
			return nil, errors.Join(ErrReadingConfigFailed, err)
		}
	}

	if err := cfg.ApplyEnv(lookupEnv); err != nil {
		return nil, err
	}

	cfg.nameReplicas()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// decode parses data strictly: unknown fields are rejected.
func (c *Config) decode(data []byte) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(c); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	return nil
}

// ApplyEnv overrides the fields that have an env tag with the values found by lookupEnv.
// REPLICA_ROUTING_REPLICA_DSNS is a comma separated list and replaces all replicas.
func (c *Config) ApplyEnv(lookupEnv func(string) (string, bool)) error {
	var errs []error

	setString := func(name string, target *string) {
		if value, ok := lookupEnv(name); ok {
			*target = value
		}
	}

	setInt32 := func(name string, target *int32) {
		value, ok := lookupEnv(name)
		if !ok {
			return
		}

		parsed, err := strconv.ParseInt(value, 10, 32)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			return
		}

		*target = int32(parsed)
	}

	setDuration := func(name string, target *time.Duration) {
		value, ok := lookupEnv(name)
		if !ok {
			return
		}

		parsed, err := time.ParseDuration(value)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			return
		}

		*target = parsed
	}

	setString(envDriver, &c.Driver)
	setString(envPrimaryDSN, &c.Primary.DSN)
	setInt32(envMaxConns, &c.Pool.MaxConns)
	setInt32(envMinConns, &c.Pool.MinConns)
	setDuration(envConnectTimeout, &c.Pool.ConnectTimeout)
	setString(envSelection, &c.Routing.Selection)
	setString(envLogLevel, &c.Logging.Level)
	setString(envLogFormat, &c.Logging.Format)

	if value, ok := lookupEnv(envReplicaDSNs); ok {
		c.Replicas = nil

		for _, dsn := range strings.Split(value, ",") {
			if dsn = strings.TrimSpace(dsn); dsn != "" {
				c.Replicas = append(c.Replicas, DatabaseConfig{DSN: dsn})
			}
		}
	}

	if len(errs) > 0 {
		return errors.Join(ErrInvalidConfig, errors.Join(errs...))
	}

	return nil
}

func (c *Config) nameReplicas() {
	for idx := range c.Replicas {
		if c.Replicas[idx].Name == "" {
			c.Replicas[idx].Name = routing.ReplicaIdentityFor(idx).String()
		}
	}
}

// ReplicaIdentities returns the identities of the configured replicas in order.
func (c *Config) ReplicaIdentities() []routing.Identity {
	identities := make([]routing.Identity, 0, len(c.Replicas))
	for _, replica := range c.Replicas {
		identities = append(identities, routing.Identity(replica.Name))
	}

	return identities
}

// Selector returns the replica selector configured in Routing.Selection.
func (c *Config) Selector() (routing.ReplicaSelector, error) {
	return routing.ParseSelector(c.Routing.Selection)
}

// Validate reports every problem of the configuration at once, joined with ErrInvalidConfig.
func (c *Config) Validate() error {
	var errs []error

	switch c.Driver {
	case DriverPGXPool, DriverSQLDB, DriverSQLX:
	default:
		errs = append(errs, fmt.Errorf("driver %q must be one of %s, %s, %s", c.Driver, DriverPGXPool, DriverSQLDB, DriverSQLX))
	}

	if c.Primary.DSN == "" {
		errs = append(errs, errors.New("primary dsn must not be empty"))
	}

	seen := map[string]bool{routing.Primary.String(): true}
	for idx, replica := range c.Replicas {
		if replica.DSN == "" {
			errs = append(errs, fmt.Errorf("replica %d: dsn must not be empty", idx))
		}

		if replica.Name == "" {
			errs = append(errs, fmt.Errorf("replica %d: name must not be empty", idx))
			continue
		}

		if seen[replica.Name] {
			errs = append(errs, fmt.Errorf("replica %d: name %q is used twice", idx, replica.Name))
		}

		seen[replica.Name] = true
	}

	if c.Pool.MaxConns <= 0 {
		errs = append(errs, fmt.Errorf("pool maxConns must be positive, got %d", c.Pool.MaxConns))
	}

	if c.Pool.MinConns < 0 || c.Pool.MinConns > c.Pool.MaxConns {
		errs = append(errs, fmt.Errorf("pool minConns must be between 0 and maxConns, got %d", c.Pool.MinConns))
	}

	if _, err := c.Selector(); err != nil {
		errs = append(errs, err)
	}

	if _, err := ParseLogLevel(c.Logging.Level); err != nil {
		errs = append(errs, err)
	}

	if c.Logging.Format != LogFormatJSON && c.Logging.Format != LogFormatText {
		errs = append(errs, fmt.Errorf("log format %q must be %s or %s", c.Logging.Format, LogFormatJSON, LogFormatText))
	}

	if len(errs) > 0 {
		return errors.Join(ErrInvalidConfig, errors.Join(errs...))
	}

	return nil
}

package routing

// Option defines a functional option for configuring an Interceptor.
type Option func(*Interceptor) error

// WithTransactionState sets the source of the active-transaction flag.
// The default is ContextTransactionState.
func WithTransactionState(source TransactionStateSource) Option {
	return func(i *Interceptor) error {
		if source == nil {
			return ErrNilTransactionState
		}

		i.txState = source

		return nil
	}
}

// WithLogger sets the logger for the Interceptor.
//
// Debug level: every routing decision with operation, identity, kind and reason
// Error level: failed dispatches.
func WithLogger(logger Logger) Option {
	return func(i *Interceptor) error {
		i.logger = logger
		return nil
	}
}

// WithContextualLogger sets a context-aware logger, receiving the same messages as the Logger
// together with the dispatch context for trace correlation.
func WithContextualLogger(logger ContextualLogger) Option {
	return func(i *Interceptor) error {
		i.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for routing decisions and dispatch durations.
func WithMetrics(collector MetricsCollector) Option {
	return func(i *Interceptor) error {
		i.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector. One span is started per dispatched operation.
func WithTracing(collector TracingCollector) Option {
	return func(i *Interceptor) error {
		i.tracingCollector = collector
		return nil
	}
}

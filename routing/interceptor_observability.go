package routing

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

const (
	logMsgRoutingDecision = "routing decision"
	logMsgDispatchFailed  = "routed operation failed"
	logAttrOperation      = "operation"
	logAttrIdentity       = "identity"
	logAttrKind           = "kind"
	logAttrReason         = "reason"
	logAttrUnitID         = "unit_id"
	logAttrDurationMS     = "duration_ms"
	logAttrError          = "error"

	metricDecisions        = "routing_decisions_total"
	metricDispatchDuration = "routing_dispatch_duration_seconds"
	metricDispatchErrors   = "routing_dispatch_errors_total"

	spanNameDispatch   = "routing.dispatch"
	spanAttrOperation  = "operation"
	spanAttrIdentity   = "routing.identity"
	spanAttrReason     = "routing.reason"
	spanAttrKind       = "routing.kind"
	spanAttrErrorType  = "error_type"
	spanAttrDurationMS = "duration_ms"

	labelStatus    = "status"
	statusSuccess  = "success"
	statusError    = "error"
	statusCanceled = "cancelled"
	statusTimeout  = "timeout"
)

// operationName returns the name used for op in logs, labels and spans.
func operationName(op Operation) string {
	if op.Name != "" {
		return op.Name
	}

	return op.Kind.String()
}

// logDecision logs the routing decision at debug level if a logger is configured.
func (i *Interceptor) logDecision(ctx context.Context, scope *Scope, op Operation, decision Decision) {
	args := []any{
		logAttrOperation, operationName(op),
		logAttrIdentity, decision.Identity.String(),
		logAttrKind, op.Kind.String(),
		logAttrReason, string(decision.Reason),
		logAttrUnitID, scope.ID().String(),
	}

	if i.logger != nil {
		i.logger.Debug(logMsgRoutingDecision, args...)
	}

	if i.contextualLogger != nil {
		i.contextualLogger.DebugContext(ctx, logMsgRoutingDecision, args...)
	}
}

// logDispatchError logs a failed dispatch at error level if a logger is configured.
func (i *Interceptor) logDispatchError(ctx context.Context, op Operation, decision Decision, duration time.Duration, err error) {
	args := []any{
		logAttrError, err.Error(),
		logAttrOperation, operationName(op),
		logAttrIdentity, decision.Identity.String(),
		logAttrDurationMS, ToMilliseconds(duration),
	}

	if i.logger != nil {
		i.logger.Error(logMsgDispatchFailed, args...)
	}

	if i.contextualLogger != nil {
		i.contextualLogger.ErrorContext(ctx, logMsgDispatchFailed, args...)
	}
}

// recordDecisionMetrics counts the routing decision if a metrics collector is configured.
func (i *Interceptor) recordDecisionMetrics(ctx context.Context, op Operation, decision Decision) {
	if i.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		logAttrIdentity: decision.Identity.String(),
		logAttrKind:     op.Kind.String(),
		logAttrReason:   string(decision.Reason),
	}

	if contextualCollector, ok := i.metricsCollector.(ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metricDecisions, labels)
		return
	}

	i.metricsCollector.IncrementCounter(metricDecisions, labels)
}

// recordDispatchMetrics records the dispatch duration and, on failure, an error count.
func (i *Interceptor) recordDispatchMetrics(
	ctx context.Context,
	op Operation,
	decision Decision,
	duration time.Duration,
	status string,
) {

	if i.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		logAttrOperation: operationName(op),
		logAttrIdentity:  decision.Identity.String(),
		labelStatus:      status,
	}

	contextualCollector, isContextual := i.metricsCollector.(ContextualMetricsCollector)

	if isContextual {
		contextualCollector.RecordDurationContext(ctx, metricDispatchDuration, duration, labels)
	} else {
		i.metricsCollector.RecordDuration(metricDispatchDuration, duration, labels)
	}

	if status == statusSuccess {
		return
	}

	if isContextual {
		contextualCollector.IncrementCounterContext(ctx, metricDispatchErrors, labels)
		return
	}

	i.metricsCollector.IncrementCounter(metricDispatchErrors, labels)
}

// startDispatchSpan starts a tracing span if a tracing collector is configured.
func (i *Interceptor) startDispatchSpan(ctx context.Context, op Operation, decision Decision) (context.Context, SpanContext) {
	if i.tracingCollector == nil {
		return ctx, nil
	}

	attrs := map[string]string{
		spanAttrOperation: operationName(op),
		spanAttrIdentity:  decision.Identity.String(),
		spanAttrReason:    string(decision.Reason),
		spanAttrKind:      op.Kind.String(),
	}

	return i.tracingCollector.StartSpan(ctx, spanNameDispatch, attrs)
}

// finishDispatch finishes span, records metrics and logs failures for one dispatched call.
func (i *Interceptor) finishDispatch(
	ctx context.Context,
	span SpanContext,
	op Operation,
	decision Decision,
	duration time.Duration,
	err error,
) {

	status := dispatchStatus(err)

	i.recordDispatchMetrics(ctx, op, decision, duration, status)

	if err != nil {
		i.logDispatchError(ctx, op, decision, duration, err)
	}

	if i.tracingCollector == nil || span == nil {
		return
	}

	attrs := map[string]string{
		spanAttrDurationMS: fmt.Sprintf("%.2f", ToMilliseconds(duration)),
	}

	if err != nil {
		attrs[spanAttrErrorType] = status
	}

	i.tracingCollector.FinishSpan(span, status, attrs)
}

// dispatchStatus maps the error of a call to a status label.
func dispatchStatus(err error) string {
	switch {
	case err == nil:
		return statusSuccess
	case errors.Is(err, context.Canceled):
		return statusCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return statusTimeout
	default:
		return statusError
	}
}

// ToMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
// It is the format of every duration_ms log attribute.
func ToMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

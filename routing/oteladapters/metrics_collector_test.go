package oteladapters_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/AntonStoeckl/replica-routing-go/routing/oteladapters"
)

func newManualMeter() (metric.Meter, *sdkmetric.ManualReader) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	return provider.Meter("test"), reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var resourceMetrics metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &resourceMetrics))

	return resourceMetrics
}

func Test_MetricsCollector_RecordDuration(t *testing.T) {
	// setup
	meter, reader := newManualMeter()
	collector := oteladapters.NewMetricsCollector(meter)

	// act
	collector.RecordDuration("routing_dispatch_duration_seconds", 150*time.Millisecond, map[string]string{
		"identity": "replica",
		"status":   "success",
	})

	// assert
	histogram := findHistogramMetric(t, collect(t, reader), "routing_dispatch_duration_seconds")
	require.Len(t, histogram.DataPoints, 1)

	dataPoint := histogram.DataPoints[0]
	assert.Equal(t, uint64(1), dataPoint.Count)
	assert.InDelta(t, 0.15, dataPoint.Sum, 0.001)

	expectedAttrs := attribute.NewSet(
		attribute.String("identity", "replica"),
		attribute.String("status", "success"),
	)
	assert.True(t, dataPoint.Attributes.Equals(&expectedAttrs))
}

func Test_MetricsCollector_IncrementCounter(t *testing.T) {
	// setup
	meter, reader := newManualMeter()
	collector := oteladapters.NewMetricsCollector(meter)
	labels := map[string]string{"identity": "primary", "reason": "not_a_read"}

	// act
	collector.IncrementCounter("routing_decisions_total", labels)
	collector.IncrementCounterContext(context.Background(), "routing_decisions_total", labels)

	// assert
	counter := findCounterMetric(t, collect(t, reader), "routing_decisions_total")
	require.Len(t, counter.DataPoints, 1)
	assert.Equal(t, int64(2), counter.DataPoints[0].Value)
}

func Test_MetricsCollector_RecordValue(t *testing.T) {
	// setup
	meter, reader := newManualMeter()
	collector := oteladapters.NewMetricsCollector(meter)

	// act
	collector.RecordValue("routing_replicas", 2, nil)
	collector.RecordValueContext(context.Background(), "routing_replicas", 3, nil)

	// assert
	gauge := findGaugeMetric(t, collect(t, reader), "routing_replicas")
	require.Len(t, gauge.DataPoints, 1)
	assert.InDelta(t, 3.0, gauge.DataPoints[0].Value, 0.0001)
}

func Test_MetricsCollector_IsSafeForConcurrentUse(t *testing.T) {
	// setup
	meter, reader := newManualMeter()
	collector := oteladapters.NewMetricsCollector(meter)

	var wg sync.WaitGroup

	// act
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			collector.IncrementCounter("routing_decisions_total", map[string]string{"identity": "replica"})
			collector.RecordDuration("routing_dispatch_duration_seconds", time.Millisecond, nil)
		}()
	}
	wg.Wait()

	// assert
	counter := findCounterMetric(t, collect(t, reader), "routing_decisions_total")
	assert.Equal(t, int64(50), counter.DataPoints[0].Value)
}

func Test_MetricsCollector_IgnoresInstrumentCreationErrors(t *testing.T) {
	// setup
	meter, _ := newManualMeter()
	collector := oteladapters.NewMetricsCollector(&errorInjectingMeter{Meter: meter})

	// act + assert
	assert.NotPanics(t, func() {
		collector.RecordDuration("broken", time.Second, nil)
		collector.IncrementCounter("broken", nil)
		collector.RecordValue("broken", 1, nil)
	})
}

type errorInjectingMeter struct {
	metric.Meter
}

func (m *errorInjectingMeter) Float64Histogram(name string, options ...metric.Float64HistogramOption) (metric.Float64Histogram, error) {
	if name == "broken" {
		return nil, errors.New("histogram creation failed")
	}

	return m.Meter.Float64Histogram(name, options...)
}

func (m *errorInjectingMeter) Int64Counter(name string, options ...metric.Int64CounterOption) (metric.Int64Counter, error) {
	if name == "broken" {
		return nil, errors.New("counter creation failed")
	}

	return m.Meter.Int64Counter(name, options...)
}

func (m *errorInjectingMeter) Float64Gauge(name string, options ...metric.Float64GaugeOption) (metric.Float64Gauge, error) {
	if name == "broken" {
		return nil, errors.New("gauge creation failed")
	}

	return m.Meter.Float64Gauge(name, options...)
}

func findHistogramMetric(t *testing.T, resourceMetrics metricdata.ResourceMetrics, name string) metricdata.Histogram[float64] {
	t.Helper()

	for _, scopeMetrics := range resourceMetrics.ScopeMetrics {
		for _, m := range scopeMetrics.Metrics {
			if histogram, ok := m.Data.(metricdata.Histogram[float64]); ok && m.Name == name {
				return histogram
			}
		}
	}

	t.Fatalf("histogram metric %s not found", name)

	return metricdata.Histogram[float64]{}
}

func findCounterMetric(t *testing.T, resourceMetrics metricdata.ResourceMetrics, name string) metricdata.Sum[int64] {
	t.Helper()

	for _, scopeMetrics := range resourceMetrics.ScopeMetrics {
		for _, m := range scopeMetrics.Metrics {
			if counter, ok := m.Data.(metricdata.Sum[int64]); ok && m.Name == name {
				return counter
			}
		}
	}

	t.Fatalf("counter metric %s not found", name)

	return metricdata.Sum[int64]{}
}

func findGaugeMetric(t *testing.T, resourceMetrics metricdata.ResourceMetrics, name string) metricdata.Gauge[float64] {
	t.Helper()

	for _, scopeMetrics := range resourceMetrics.ScopeMetrics {
		for _, m := range scopeMetrics.Metrics {
			if gauge, ok := m.Data.(metricdata.Gauge[float64]); ok && m.Name == name {
				return gauge
			}
		}
	}

	t.Fatalf("gauge metric %s not found", name)

	return metricdata.Gauge[float64]{}
}

package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func newManualMeter(t *testing.T) (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	return reader, mp
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumValue(t *testing.T, m metricdata.Metrics, attrs ...attribute.KeyValue) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)
	want := attribute.NewSet(attrs...)
	var total int64
	for _, dp := range sum.DataPoints {
		if len(attrs) == 0 || dp.Attributes.Equals(&want) {
			total += dp.Value
		}
	}
	return total
}

func TestStart_AllSignalsOff(t *testing.T) {
	ctx := context.Background()
	settings := Settings{Endpoint: "localhost:14317", ServiceName: "storefront-test"}

	p, err := Start(ctx, settings, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.Equal(t, settings, p.Settings())
	assert.NotNil(t, p.Meter("test"))
	assert.False(t, p.LogCore(zapcore.DebugLevel).Enabled(zapcore.ErrorLevel))
	assert.NoError(t, p.Flush(ctx))
	assert.NoError(t, p.Shutdown(ctx))
}

func TestStart_ExportsToCollector(t *testing.T) {
	if testing.Short() {
		t.Skip("requires an OTLP collector")
	}
	ctx := context.Background()

	// gRPC exporters connect lazily, so Start succeeds without a collector
	p, err := Start(ctx, Settings{
		Endpoint:      "localhost:14317",
		ServiceName:   "storefront-test",
		Insecure:      true,
		Traces:        true,
		SamplingRatio: 0.5,
		Metrics:       true,
		Logs:          true,
	}, zap.NewNop())
	require.NoError(t, err)
	assert.True(t, p.LogCore(zapcore.InfoLevel).Enabled(zapcore.WarnLevel))
	assert.False(t, p.LogCore(zapcore.InfoLevel).Enabled(zapcore.DebugLevel))

	shortCtx, cancel := context.WithTimeout(ctx, 0)
	defer cancel()
	_ = p.Shutdown(shortCtx)
	assert.NoError(t, p.Shutdown(ctx), "second shutdown is a no-op")
}

func TestNewSampler(t *testing.T) {
	tests := []struct {
		ratio    float64
		contains string
	}{
		{1.0, "AlwaysOnSampler"},
		{2.0, "AlwaysOnSampler"},
		{0, "AlwaysOffSampler"},
		{-1, "AlwaysOffSampler"},
		{0.25, "TraceIDRatioBased{0.25}"},
	}
	for _, tt := range tests {
		desc := NewSampler(tt.ratio).Description()
		assert.Contains(t, desc, "ParentBased")
		assert.Contains(t, desc, tt.contains)
	}
}

func TestMinLevelCore(t *testing.T) {
	inner, logs := observer.New(zapcore.DebugLevel)

	core := &minLevelCore{Core: inner, min: zapcore.WarnLevel}
	assert.False(t, core.Enabled(zapcore.InfoLevel))
	assert.True(t, core.Enabled(zapcore.WarnLevel))

	l := zap.New(core).With(zap.String("session_id", "s-1"))
	l.Info("dropped")
	l.Warn("kept")
	l.Error("also kept")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "kept", entries[0].Message)
	assert.Equal(t, "s-1", entries[0].ContextMap()["session_id"])
}

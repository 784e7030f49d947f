package infrastructure

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

// tracingConfig returns a config with the stdout span exporter enabled, for
// tests that need recording spans.
func tracingConfig() *OTelConfig {
	cfg := DefaultOTelConfig()
	cfg.TraceExporter = "stdout"
	cfg.EnableTracing = true
	return cfg
}

func TestOTelInitialization(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// nil config falls back to defaults: metrics on, tracing off.
	providers, err := InitializeOTel(nil, logger)
	require.NoError(t, err)
	require.NotNil(t, providers)

	assert.Nil(t, providers.TracerProvider)
	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.PrometheusHTTP)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = providers.Shutdown(ctx)
	assert.NoError(t, err)
}

func TestTraceCorrelation(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	providers, err := InitializeOTel(tracingConfig(), logger)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	require.NotNil(t, providers.TracerProvider)
	require.NotNil(t, providers.Tracer)

	ctx := context.Background()

	// Without an active span there is no trace ID.
	assert.Empty(t, TraceIDFromContext(ctx))

	tracer := otel.Tracer("test")
	ctx, span := tracer.Start(ctx, "test-operation")
	defer span.End()

	traceID := TraceIDFromContext(ctx)
	assert.NotEmpty(t, traceID)

	expectedTraceID := span.SpanContext().TraceID().String()
	assert.Equal(t, expectedTraceID, traceID)

	ctx = WithTraceID(ctx, traceID)
	assert.Equal(t, traceID, GetTraceID(ctx))
}

func TestAnalysisMetricsCreation(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	providers, err := InitializeOTel(DefaultOTelConfig(), logger)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := CreateAnalysisMetrics(providers.Meter)
	require.NoError(t, err)
	require.NotNil(t, metrics)

	// HTTP metrics
	assert.NotNil(t, metrics.HTTPRequestsTotal)
	assert.NotNil(t, metrics.HTTPRequestDuration)
	assert.NotNil(t, metrics.HTTPActiveRequests)

	// Analysis pipeline metrics
	assert.NotNil(t, metrics.AnalysisRunsTotal)
	assert.NotNil(t, metrics.AnalysisRunDuration)
	assert.NotNil(t, metrics.AnalysisRowsProcessed)
	assert.NotNil(t, metrics.AnalysisRowsSkipped)
	assert.NotNil(t, metrics.AnalysisRowsClassified)
	assert.NotNil(t, metrics.AnalysisErrors)
	assert.NotNil(t, metrics.AnalysisActiveRuns)
	assert.NotNil(t, metrics.AnalysisRunEvictions)

	// Upload metrics
	assert.NotNil(t, metrics.UploadSizeBytes)
	assert.NotNil(t, metrics.UploadRejections)

	// Narrative metrics
	assert.NotNil(t, metrics.NarrativeRequestsTotal)
	assert.NotNil(t, metrics.NarrativeRequestDuration)

	// System metrics
	assert.NotNil(t, metrics.SystemErrors)
	assert.NotNil(t, metrics.SystemUptime)
}

func TestSpanOperations(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	providers, err := InitializeOTel(tracingConfig(), logger)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	ctx := context.Background()
	tracer := otel.Tracer("test")
	ctx, span := tracer.Start(ctx, "test-span")
	defer span.End()

	SetSpanAttributes(ctx, map[string]interface{}{
		"string_attr": "test_value",
		"int_attr":    42,
		"float_attr":  3.14,
		"bool_attr":   true,
	})

	AddSpanEvent(ctx, "test.event", map[string]interface{}{
		"event_data": "test_event_value",
		"timestamp":  time.Now().Unix(),
	})

	RecordError(ctx, assert.AnError)

	assert.True(t, span.IsRecording())
}

func TestPrometheusEndpoint(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	providers, err := InitializeOTel(DefaultOTelConfig(), logger)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	server := httptest.NewServer(providers.PrometheusHTTP)
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/plain")
}

func TestOTelConfiguration(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	tests := []struct {
		name    string
		config  *OTelConfig
		wantErr bool
	}{
		{
			name: "tracing_and_metrics",
			config: &OTelConfig{
				ServiceName:    "test-service",
				ServiceVersion: "v1.0.0",
				Environment:    "development",
				TraceExporter:  "stdout",
				MetricExporter: "prometheus",
				EnableMetrics:  true,
				EnableTracing:  true,
				SampleRatio:    1.0,
			},
		},
		{
			name: "disabled_tracing",
			config: &OTelConfig{
				ServiceName:    "test-service",
				ServiceVersion: "v1.0.0",
				Environment:    "test",
				TraceExporter:  "none",
				MetricExporter: "prometheus",
				EnableMetrics:  true,
				EnableTracing:  false,
				SampleRatio:    0.0,
			},
		},
		{
			name: "disabled_metrics",
			config: &OTelConfig{
				ServiceName:    "test-service",
				ServiceVersion: "v1.0.0",
				Environment:    "test",
				TraceExporter:  "stdout",
				MetricExporter: "none",
				EnableMetrics:  false,
				EnableTracing:  true,
				SampleRatio:    1.0,
			},
		},
		{
			name: "unsupported_trace_exporter",
			config: &OTelConfig{
				ServiceName:    "test-service",
				ServiceVersion: "v1.0.0",
				Environment:    "test",
				TraceExporter:  "jaeger",
				MetricExporter: "none",
				EnableMetrics:  false,
				EnableTracing:  true,
				SampleRatio:    1.0,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			providers, err := InitializeOTel(tt.config, logger)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, providers)

			if tt.config.EnableTracing {
				assert.NotNil(t, providers.TracerProvider)
				assert.NotNil(t, providers.Tracer)
			}

			if tt.config.EnableMetrics {
				assert.NotNil(t, providers.MeterProvider)
				assert.NotNil(t, providers.Meter)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			err = providers.Shutdown(ctx)
			assert.NoError(t, err)
		})
	}
}

func TestRecordHelpersNilMetrics(t *testing.T) {
	ctx := context.Background()

	// Every helper tolerates a nil metrics instance, so callers can run
	// without the meter wired up (CLI mode).
	RecordAnalysisRunMetrics(ctx, nil, "upload.xlsx", time.Second, true, nil)
	RecordRowMetrics(ctx, nil, 10, 2, 8)
	RecordUploadMetrics(ctx, nil, 1024, false, "extension")
	RecordNarrativeMetrics(ctx, nil, "gemini-1.5-flash", time.Second, false)
	RecordRunCacheChange(ctx, nil, 1)
	RecordRunEviction(ctx, nil, "ttl")
}

func TestRecordHelpers(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	providers, err := InitializeOTel(DefaultOTelConfig(), logger)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := CreateAnalysisMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()

	RecordAnalysisRunMetrics(ctx, metrics, "upload.xlsx", 150*time.Millisecond, true, nil)
	RecordAnalysisRunMetrics(ctx, metrics, "broken.xlsx", 10*time.Millisecond, false, assert.AnError)
	RecordRowMetrics(ctx, metrics, 120, 5, 98)
	RecordUploadMetrics(ctx, metrics, 2048, true, "")
	RecordUploadMetrics(ctx, metrics, 64<<20, false, "too_large")
	RecordNarrativeMetrics(ctx, metrics, "gemini-1.5-flash", 800*time.Millisecond, true)
	RecordRunCacheChange(ctx, metrics, 1)
	RecordRunCacheChange(ctx, metrics, -1)
	RecordRunEviction(ctx, metrics, "capacity")
}

func BenchmarkMetricOperations(b *testing.B) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	providers, err := InitializeOTel(DefaultOTelConfig(), logger)
	require.NoError(b, err)
	defer providers.Shutdown(context.Background())

	metrics, err := CreateAnalysisMetrics(providers.Meter)
	require.NoError(b, err)

	ctx := context.Background()

	b.ResetTimer()
	b.ReportAllocs()

	b.Run("counter_increment", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			metrics.HTTPRequestsTotal.Add(ctx, 1)
		}
	})

	b.Run("histogram_record", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			metrics.HTTPRequestDuration.Record(ctx, float64(i)*0.001)
		}
	})

	b.Run("updown_counter", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			if i%2 == 0 {
				metrics.HTTPActiveRequests.Add(ctx, 1)
			} else {
				metrics.HTTPActiveRequests.Add(ctx, -1)
			}
		}
	})
}

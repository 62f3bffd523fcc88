package infrastructure

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOTelInitialization(t *testing.T) {
	var traces bytes.Buffer
	cfg := &OTelConfig{
		ServiceName:    ServiceName,
		ServiceVersion: "test",
		Environment:    "test",
		TraceExporter:  "stdout",
		EnableMetrics:  true,
		EnableTracing:  true,
		SampleRatio:    1.0,
		TraceWriter:    &traces,
	}

	providers, err := InitializeOTel(cfg, testLogger())
	require.NoError(t, err)

	assert.NotNil(t, providers.TracerProvider)
	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.PrometheusHTTP)

	ctx, span := providers.Tracer.Start(context.Background(), "load")
	assert.NotEmpty(t, TraceIDFromContext(ctx))
	RecordError(ctx, errors.New("boom"))
	span.End()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, providers.Shutdown(shutdownCtx))

	assert.Contains(t, traces.String(), `"Name": "load"`)
}

func TestOTelDisabled(t *testing.T) {
	cfg := &OTelConfig{ServiceName: ServiceName, ServiceVersion: "test", TraceExporter: "none"}

	providers, err := InitializeOTel(cfg, testLogger())
	require.NoError(t, err)

	assert.Nil(t, providers.TracerProvider)
	assert.Nil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.Meter)

	// no-op instruments are still usable
	m, err := CreatePipelineMetrics(providers.Meter)
	require.NoError(t, err)
	RecordStepMetrics(context.Background(), m, "load", time.Millisecond, nil)
	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestUnsupportedTraceExporter(t *testing.T) {
	cfg := &OTelConfig{ServiceName: ServiceName, EnableTracing: true, TraceExporter: "jaeger"}
	_, err := InitializeOTel(cfg, testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported trace exporter")
}

func TestPrometheusEndpoint(t *testing.T) {
	cfg := &OTelConfig{ServiceName: ServiceName, ServiceVersion: "test", TraceExporter: "none", EnableMetrics: true}
	providers, err := InitializeOTel(cfg, testLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	m, err := CreatePipelineMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	RecordOperationMetrics(ctx, m, "op-1", 2*time.Second, nil)
	RecordOperationMetrics(ctx, m, "op-2", time.Second, errors.New("failed"))
	RecordStepMetrics(ctx, m, "join", 10*time.Millisecond, nil)
	RecordRowsProcessed(ctx, m, "bangs", 42)
	RecordHTTPRequest(ctx, m, http.MethodGet, "/api/health", http.StatusOK, time.Millisecond)

	rec := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "operation_executions_total")
	assert.Contains(t, body, "operation_errors_total")
	assert.Contains(t, body, "operation_step_duration_seconds")
	assert.Contains(t, body, `rows_processed_total{`)
	assert.Contains(t, body, `source="bangs"`)
	assert.Contains(t, body, "http_requests_total")
}

func TestRecordHelpersNilMetrics(t *testing.T) {
	assert.NotPanics(t, func() {
		ctx := context.Background()
		RecordOperationMetrics(ctx, nil, "op", time.Second, nil)
		RecordStepMetrics(ctx, nil, "load", time.Second, nil)
		RecordRowsProcessed(ctx, nil, "games", 1)
		RecordHTTPRequest(ctx, nil, "GET", "/", 200, time.Second)
	})
}

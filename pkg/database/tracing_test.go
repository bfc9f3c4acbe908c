package database

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupTestTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prev)
	})
	return exporter
}

func TestQueryTracer_Span(t *testing.T) {
	exporter := setupTestTracer(t)
	tracer := &QueryTracer{}

	ctx := tracer.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{
		SQL: "select payload from shop_slots where session_id = $1",
	})
	tracer.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{CommandTag: pgconn.NewCommandTag("SELECT 1")})

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "db.SELECT", spans[0].Name)
	assert.Equal(t, codes.Unset, spans[0].Status.Code)
}

func TestQueryTracer_ErrorStatus(t *testing.T) {
	exporter := setupTestTracer(t)
	tracer := &QueryTracer{}

	ctx := tracer.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{SQL: "DELETE FROM shop_slots"})
	tracer.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{Err: errors.New("connection reset")})

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
}

func TestQueryTracer_NoRowsIsNotAnError(t *testing.T) {
	exporter := setupTestTracer(t)
	tracer := &QueryTracer{}

	ctx := tracer.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{SQL: "SELECT 1"})
	tracer.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{Err: pgx.ErrNoRows})

	assert.Equal(t, codes.Unset, exporter.GetSpans()[0].Status.Code)
}

func TestQueryTracer_SlowQueryLogged(t *testing.T) {
	setupTestTracer(t)
	var buf bytes.Buffer
	tracer := &QueryTracer{
		SlowThreshold: time.Nanosecond,
		Logger:        slog.New(slog.NewJSONHandler(&buf, nil)),
	}

	ctx := tracer.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{SQL: "INSERT INTO shop_slots VALUES ($1)"})
	time.Sleep(time.Millisecond)
	tracer.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{})

	assert.Contains(t, buf.String(), "slow query detected")
	assert.Contains(t, buf.String(), `"operation":"INSERT"`)
}

func TestQueryTracer_FastQueryNotLogged(t *testing.T) {
	setupTestTracer(t)
	var buf bytes.Buffer
	tracer := &QueryTracer{SlowThreshold: time.Hour, Logger: slog.New(slog.NewJSONHandler(&buf, nil))}

	ctx := tracer.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{SQL: "SELECT 1"})
	tracer.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{})

	assert.Empty(t, buf.String())
}

func TestOperationOf(t *testing.T) {
	assert.Equal(t, "SELECT", operationOf("  select 1"))
	assert.Equal(t, "QUERY", operationOf(""))
}

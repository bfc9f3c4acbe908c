package database

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/maysa/storefront/pkg/database"

// QueryTracer is a pgx.QueryTracer that opens a client span per statement and
// logs statements slower than SlowThreshold.
type QueryTracer struct {
	SlowThreshold time.Duration
	Logger        *slog.Logger
}

var _ pgx.QueryTracer = (*QueryTracer)(nil)

type queryStartKey struct{}

type queryStart struct {
	operation string
	sql       string
	at        time.Time
	span      trace.Span
}

// TraceQueryStart implements pgx.QueryTracer.
func (t *QueryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	op := operationOf(data.SQL)
	ctx, span := otel.Tracer(tracerName).Start(ctx, "db."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", op),
			attribute.String("db.statement", data.SQL),
		),
	)
	return context.WithValue(ctx, queryStartKey{}, &queryStart{
		operation: op,
		sql:       data.SQL,
		at:        time.Now(),
		span:      span,
	})
}

// TraceQueryEnd implements pgx.QueryTracer. pgx.ErrNoRows is not an error.
func (t *QueryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	qs, ok := ctx.Value(queryStartKey{}).(*queryStart)
	if !ok {
		return
	}

	failed := data.Err != nil && !errors.Is(data.Err, pgx.ErrNoRows)
	if failed {
		qs.span.RecordError(data.Err)
		qs.span.SetStatus(codes.Error, data.Err.Error())
	}
	qs.span.SetAttributes(attribute.Int64("db.rows_affected", data.CommandTag.RowsAffected()))
	qs.span.End()

	if t.SlowThreshold <= 0 || t.Logger == nil {
		return
	}
	if elapsed := time.Since(qs.at); elapsed >= t.SlowThreshold {
		attrs := []slog.Attr{
			slog.String("operation", qs.operation),
			slog.String("statement", qs.sql),
			slog.Duration("duration", elapsed),
		}
		if failed {
			attrs = append(attrs, slog.String("error", data.Err.Error()))
		}
		t.Logger.LogAttrs(ctx, slog.LevelWarn, "slow query detected", attrs...)
	}
}

// operationOf returns the leading SQL keyword, e.g. "SELECT".
func operationOf(sql string) string {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return "QUERY"
	}
	return strings.ToUpper(fields[0])
}

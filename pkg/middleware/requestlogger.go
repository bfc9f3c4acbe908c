package middleware

import (
	"log/slog"
	"net/http"

	"github.com/maysa/storefront/pkg/logger"
)

// SessionHeader names the header that carries the shopper session id.
const SessionHeader = "X-Session-ID"

// RequestLogger stores a request-scoped logger in the context, enriched with
// correlation_id, session_id, trace_id and span_id. Mount it after
// RequestLogging and Tracing.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if id := r.Header.Get(SessionHeader); id != "" && logger.SessionIDFromContext(ctx) == "" {
				ctx = logger.WithSessionID(ctx, id)
			}

			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/maysa/storefront/pkg/httputil"
	"github.com/maysa/storefront/pkg/middleware"
)

type contextKey string

const sessionIDKey contextKey = "session_id"

// maxSessionIDLength bounds the header so it cannot blow up storage keys.
const maxSessionIDLength = 128

// RequireSession reads the X-Session-ID header and stores it in the request
// context. Requests without one are rejected with 400.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid := strings.TrimSpace(r.Header.Get(middleware.SessionHeader))
		if sid == "" {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "MISSING_SESSION", Message: middleware.SessionHeader + " header is required"},
			})
			return
		}
		if len(sid) > maxSessionIDLength {
			httputil.WriteBadRequest(w, middleware.SessionHeader+" header is too long")
			return
		}
		ctx := context.WithValue(r.Context(), sessionIDKey, sid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFromContext(ctx context.Context) string {
	sid, _ := ctx.Value(sessionIDKey).(string)
	return sid
}

// ContentTypeJSON enforces that requests with a body have Content-Type: application/json.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost || r.Method == http.MethodPut {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") {
				httputil.WriteJSON(w, http.StatusUnsupportedMediaType, httputil.Response{
					Error: &httputil.ErrorResponse{Code: "UNSUPPORTED_MEDIA_TYPE", Message: "Content-Type must be application/json"},
				})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

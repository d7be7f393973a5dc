package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/evyataryagoni/netlookup/internal/logger"
)

// lookupParams are the query parameters carrying a lookup target
var lookupParams = []string{"ip", "domain"}

// LoggingMiddleware logs one line per request with the matched chi route.
// Lookup requests also carry the raw target under "query".
func LoggingMiddleware(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			// Request ID is set by chi's RequestID middleware
			reqLog := log.WithRequestID(middleware.GetReqID(r.Context()))
			if q := lookupQuery(r); q != "" {
				reqLog = reqLog.WithQuery(q)
			}

			reqLog.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("remote_addr", r.RemoteAddr).
				Str("user_agent", r.UserAgent()).
				Msg("Request started")

			next.ServeHTTP(ww, r)

			status := ww.Status()
			event := reqLog.Info()
			switch {
			case status >= 500:
				event = reqLog.Error()
			case status >= 400:
				event = reqLog.Warn()
			}

			// routing has run, so the pattern is known now
			event.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("route", routePattern(r)).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("duration_ms", time.Since(start)).
				Msg("Request completed")
		})
	}
}

// lookupQuery returns the first non-empty lookup parameter of r
func lookupQuery(r *http.Request) string {
	values := r.URL.Query()
	for _, name := range lookupParams {
		if v := values.Get(name); v != "" {
			return v
		}
	}
	return ""
}

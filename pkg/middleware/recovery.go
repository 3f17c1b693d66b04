package middleware

import (
	"net/http"
	"runtime/debug"

	"campsite/pkg/logger"
)

// Recovery is the outermost safety net. Handler failures normally flow
// through the web boundary as errors; this catches anything that panics.
func Recovery(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.Error("Panic recovered",
						"request_id", RequestID(r),
						"error", err,
						"method", r.Method,
						"path", r.URL.Path,
						"stack", string(debug.Stack()),
					)

					w.Header().Set("Content-Type", "text/html; charset=utf-8")
					w.WriteHeader(http.StatusInternalServerError)
					_, _ = w.Write([]byte("<h1>Something went wrong</h1>"))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

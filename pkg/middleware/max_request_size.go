package middleware

import "net/http"

// MaxRequestSize caps the request body. Oversized bodies surface as read
// errors in the handlers, which the boundary turns into a 500; the common
// case is multipart uploads, which stop at the cap instead of buffering.
func MaxRequestSize(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}

package middleware

import (
	"net/http"
	"strings"
)

const overrideField = "_method"

// MethodOverride rewrites POST requests carrying a _method value into the
// verb HTML forms cannot express. The value is read from the query string
// first so multipart bodies are left untouched for downstream parsing; for
// urlencoded bodies ParseForm caches the fields, so handlers still see them.
func MethodOverride() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				if m := overrideMethod(r); m != "" {
					r.Method = m
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func overrideMethod(r *http.Request) string {
	m := r.URL.Query().Get(overrideField)
	if m == "" && hasURLEncodedBody(r) {
		if err := r.ParseForm(); err == nil {
			m = r.PostForm.Get(overrideField)
		}
	}

	switch m {
	case http.MethodPut, http.MethodPatch, http.MethodDelete:
		return m
	}
	return ""
}

func hasURLEncodedBody(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded")
}

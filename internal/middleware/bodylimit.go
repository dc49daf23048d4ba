package middleware

import (
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// BodyLimit caps request bodies at limit bytes. Declared oversized bodies are
// rejected up front with a JSON error; streamed bodies are capped by chi's
// RequestSize, so reads past the cap fail with *http.MaxBytesError.
func BodyLimit(limit int64) func(http.Handler) http.Handler {
	if limit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	capped := chimw.RequestSize(limit)
	return func(next http.Handler) http.Handler {
		inner := capped(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":"request body too large"}`))
				return
			}
			inner.ServeHTTP(w, r)
		})
	}
}

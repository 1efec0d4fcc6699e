package server

import (
	"context"
	"net/http"
	"time"
)

// TimeoutMiddleware bounds request handling by cancelling the context after
// timeout. Handlers must observe context.Done() for this to take effect.
func TimeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

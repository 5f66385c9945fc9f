package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/adproofhq/adproof-backend/pkg/ctxutil"
)

// RequestID propagates the caller's X-Request-Id header, minting a fresh
// UUID when absent, and echoes it back on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r.WithContext(ctxutil.WithRequestID(r.Context(), id)))
	})
}

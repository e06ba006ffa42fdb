package http

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

const requestIDHeader = "X-Request-ID"

// ForwardRequestID copies chi's request id onto the request and response
// headers so upstream services log the same id. It must run after
// middleware.RequestID.
func ForwardRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			r.Header.Set(requestIDHeader, id)
			w.Header().Set(requestIDHeader, id)
		}
		next.ServeHTTP(w, r)
	})
}

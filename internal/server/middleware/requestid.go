// Package middleware provides the HTTP middleware stack for the
// nimbusview server: request ids, panic recovery, request logging, and
// baseline security headers.
package middleware

import (
	"net/http"

	"github.com/google/uuid"

	apperrors "github.com/3leaps/nimbusview/internal/errors"
)

// requestIDHeader carries the request id in and out of the server.
const requestIDHeader = "X-Request-ID"

// RequestID assigns each request an id: the inbound X-Request-ID header
// when present, otherwise a fresh UUID. The id is echoed on the response
// and stored in the request context for log lines and error envelopes.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(apperrors.WithRequestID(r.Context(), id)))
	})
}

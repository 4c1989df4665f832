package middleware

import (
	"net/http"

	"github.com/freshtrackdev/freshtrack/pkg/correlationid"
)

// CorrelationID propagates an inbound correlation ID header, generating a
// fresh one when the client did not send any, and echoes it back on the
// response.
func CorrelationID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(correlationid.Header)
			if id == "" {
				id = correlationid.New()
			}

			w.Header().Set(correlationid.Header, id)
			next.ServeHTTP(w, r.WithContext(correlationid.NewContext(r.Context(), id)))
		})
	}
}

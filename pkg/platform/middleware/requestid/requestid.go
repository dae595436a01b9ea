// Package requestid tags every request with an id for log and audit
// correlation.
package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"storefront/pkg/requestcontext"
)

// Header carries the request id on both sides of the wire. An incoming
// value is trusted and propagated; otherwise a fresh one is minted.
const Header = "X-Request-ID"

// Middleware ensures the context and the response carry a request id.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(Header)
		if id == "" {
			id = uuid.NewString()
		}
		ctx := requestcontext.WithRequestID(r.Context(), id)
		w.Header().Set(Header, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

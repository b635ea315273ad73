// Package requestid assigns each request an ID for log and audit correlation.
package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"landshare/pkg/requestcontext"
)

// Header carries the request ID back to the caller.
const Header = "X-Request-Id"

// Middleware honors an inbound X-Request-Id or generates one.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(Header)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set(Header, reqID)
		ctx := requestcontext.WithRequestID(r.Context(), reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

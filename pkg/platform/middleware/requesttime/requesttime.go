// Package requesttime pins a single "now" per HTTP request so domain
// timestamps, audit events, and dividend accounting within one operation all
// agree on the time.
package requesttime

import (
	"net/http"
	"time"

	"landshare/pkg/requestcontext"
)

// Middleware captures the current time at the start of the request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

package testutil

import (
	"net/http"
	"time"

	"landshare/pkg/domain"
	"landshare/pkg/requestcontext"
)

// WithCaller stamps the request context with a caller address, simulating
// what the bearer-token middleware does for authenticated requests. Invalid
// addresses are silently ignored so tests can exercise the missing-caller
// path.
func WithCaller(req *http.Request, addr string) *http.Request {
	parsed, err := domain.ParseAddress(addr)
	if err != nil {
		return req
	}
	return req.WithContext(requestcontext.WithCaller(req.Context(), parsed))
}

// WithTime pins the request time, simulating the time middleware.
func WithTime(req *http.Request, now time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), now))
}

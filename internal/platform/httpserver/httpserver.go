// Package httpserver configures the settlement API server. Handler-level
// timeouts live in the router middleware; only the header read is bounded
// here so slow-loris connections cannot pin workers.
package httpserver

import (
	"net/http"
	"time"
)

// New builds the server for the given listen address.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

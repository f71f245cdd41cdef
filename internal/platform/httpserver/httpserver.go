package httpserver

import (
	"net/http"
	"time"
)

// New builds an HTTP server with the timeouts used by the address book API.
// WriteTimeout sits above the handler timeout so slow lookups still get their
// error response out.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      35 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

package main

import (
	"net/http"
	"time"
)

const timeoutBody = `{"detail":"The request took too long. Please try again."}`

// timeoutHandler responds with a 503 Service Unavailable error when the handler does not meet the deadline.
func timeoutHandler(h http.Handler, requestTimeout time.Duration) http.Handler {
	return http.TimeoutHandler(h, requestTimeout, timeoutBody)
}

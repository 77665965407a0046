package httpclient

import (
	"net/http"
	"time"
)

// New returns a client with a hard timeout. Gateway calls must never
// block a request indefinitely.
func New(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

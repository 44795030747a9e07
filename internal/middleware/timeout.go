package middleware

import (
	"net/http"
	"time"
)

const defaultRequestTimeout = 30 * time.Second

// Timeout bounds the whole request. The handler's context is cancelled when
// the deadline passes, which aborts in-flight queries and hash waits.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	message := `{"success":false,"error":{"code":"REQUEST_TIMEOUT","message":"Request timed out"}}`

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, message)
	}
}

package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/kbukum/paiflow/logger"
)

// probePaths are not logged on success.
var probePaths = map[string]bool{
	"/health":  true,
	"/alive":   true,
	"/ready":   true,
	"/metrics": true,
}

// RequestLogger logs every request with method, path, status, response
// size and duration. Probe paths are skipped unless they fail.
func RequestLogger(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r)

			status := sw.Status()
			if isProbe(r.URL.Path) && status < 500 {
				return
			}
			duration := time.Since(start)
			fields := map[string]interface{}{
				"method":             r.Method,
				"path":               r.URL.Path,
				logger.FieldStatus:   status,
				logger.FieldDuration: duration.Milliseconds(),
				"bytes":              sw.bytes,
			}
			if id := r.Header.Get(HeaderRequestID); id != "" {
				fields[logger.FieldRequestID] = id
			}
			if duration > 500*time.Millisecond && !isStream(sw) {
				fields["slow"] = true
			}
			logByStatus(log, fields, status)
		})
	}
}

func isProbe(path string) bool {
	return probePaths[strings.TrimPrefix(path, "/api")]
}

func isStream(sw *statusWriter) bool {
	return strings.HasPrefix(sw.Header().Get("Content-Type"), "text/event-stream")
}

// logByStatus picks the level from the status code: 5xx error, 4xx warn,
// everything else debug.
func logByStatus(log *logger.Logger, fields map[string]interface{}, status int) {
	switch {
	case status >= 500:
		log.Error("Request completed", fields)
	case status >= 400:
		log.Warn("Request completed", fields)
	default:
		log.Debug("Request completed", fields)
	}
}

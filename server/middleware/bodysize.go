package middleware

import (
	"net/http"

	"github.com/dustin/go-humanize"
)

// DefaultMaxBodySize applies when the configured size cannot be parsed.
const DefaultMaxBodySize = 10 * 1024 * 1024

// ParseSize reads sizes such as "10MB", "512KiB" or "1 GB". An empty or
// unparsable value yields def.
func ParseSize(s string, def int64) int64 {
	if s == "" {
		return def
	}
	n, err := humanize.ParseBytes(s)
	if err != nil || n == 0 {
		return def
	}
	return int64(n)
}

// BodySizeLimit caps request bodies at maxSize. Reads beyond the limit fail
// and the handler's bind reports it as invalid input.
func BodySizeLimit(maxSize string) Middleware {
	size := ParseSize(maxSize, DefaultMaxBodySize)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, size)
			}
			next.ServeHTTP(w, r)
		})
	}
}

package httpclient

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/kbukum/paiflow/httpclient/sse"
)

// Request describes one call to a provider endpoint.
type Request struct {
	// Method defaults to GET.
	Method string
	// Path is joined to the client's BaseURL unless it is an absolute URL.
	Path string
	// Body is an io.Reader, []byte, string, or a value sent as JSON.
	Body any
	// Auth overrides the client-level auth for this request.
	Auth Auth
}

func (r Request) method() string {
	if r.Method == "" {
		return http.MethodGet
	}
	return r.Method
}

func (r Request) url(base string) string {
	if base == "" || strings.HasPrefix(r.Path, "http://") || strings.HasPrefix(r.Path, "https://") {
		return r.Path
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(r.Path, "/")
}

// encode returns the body reader and the content type it implies, if any.
func (r Request) encode() (io.Reader, string, error) {
	switch v := r.Body.(type) {
	case nil:
		return nil, "", nil
	case io.Reader:
		return v, "", nil
	case []byte:
		return bytes.NewReader(v), "", nil
	case string:
		return strings.NewReader(v), "text/plain", nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(data), "application/json", nil
	}
}

// Response is a fully read reply.
type Response struct {
	StatusCode int
	Body       []byte
}

// Stream is an open streaming reply. SSE is set for text/event-stream
// replies and Body for anything else. Callers must Close it.
type Stream struct {
	SSE  sse.Reader
	Body io.ReadCloser
}

// Close releases the underlying connection.
func (s *Stream) Close() error {
	switch {
	case s.SSE != nil:
		return s.SSE.Close()
	case s.Body != nil:
		return s.Body.Close()
	}
	return nil
}

package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Writer formats Server-Sent Events onto an HTTP response.
type Writer struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewWriter prepares w for streaming: it sets the SSE headers and lifts the
// server write deadline. It fails when w cannot flush.
func NewWriter(w http.ResponseWriter) (*Writer, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("sse: streaming not supported")
	}
	// Streams outlive the server's WriteTimeout. Writers that cannot lift
	// it still work while keep-alives flow.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()
	return &Writer{w: w, flusher: flusher}, nil
}

// Event writes one event. An empty name omits the event field, which
// clients read as "message". Multi-line data is split into data lines.
func (sw *Writer) Event(name string, data []byte) error {
	var b strings.Builder
	if name != "" {
		b.WriteString("event: ")
		b.WriteString(name)
		b.WriteByte('\n')
	}
	for _, line := range strings.Split(string(data), "\n") {
		b.WriteString("data: ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	if _, err := sw.w.Write([]byte(b.String())); err != nil {
		return err
	}
	sw.flusher.Flush()
	return nil
}

// JSON writes v encoded as JSON.
func (sw *Writer) JSON(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("sse: encode event: %w", err)
	}
	return sw.Event(name, data)
}

// Comment writes a comment line, which clients ignore.
func (sw *Writer) Comment(text string) error {
	if _, err := fmt.Fprintf(sw.w, ": %s\n\n", text); err != nil {
		return err
	}
	sw.flusher.Flush()
	return nil
}

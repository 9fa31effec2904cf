// Package sse reads Server-Sent Events from an HTTP response body.
package sse

import (
	"bufio"
	"io"
	"strings"
)

// DoneMarker is the data payload OpenAI-compatible APIs send as the last
// event of a stream.
const DoneMarker = "[DONE]"

// maxLineSize bounds a single line; LLM chunks carrying JSON can exceed
// bufio's 64KiB default.
const maxLineSize = 1 << 20

// Event is a single server-sent event.
type Event struct {
	// Event is the "event:" field. Empty for data-only events.
	Event string
	// Data joins multiple "data:" lines with newlines.
	Data string
	ID   string
}

// Done reports whether the event is the end-of-stream marker.
func (e *Event) Done() bool { return strings.TrimSpace(e.Data) == DoneMarker }

// Reader reads server-sent events from a stream.
type Reader interface {
	// Next returns the next event, or io.EOF when the stream ends.
	Next() (*Event, error)
	Close() error
}

type reader struct {
	scanner *bufio.Scanner
	body    io.ReadCloser
}

// NewReader creates an SSE reader over body.
func NewReader(body io.ReadCloser) Reader {
	s := bufio.NewScanner(body)
	s.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &reader{scanner: s, body: body}
}

func (r *reader) Next() (*Event, error) {
	var event Event
	var hasData bool

	for r.scanner.Scan() {
		line := strings.TrimSuffix(r.scanner.Text(), "\r")

		if line == "" {
			if hasData {
				return &event, nil
			}
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value := parseLine(line)
		switch field {
		case "data":
			if hasData {
				event.Data += "\n" + value
			} else {
				event.Data = value
				hasData = true
			}
		case "event":
			event.Event = value
		case "id":
			event.ID = value
		}
	}

	if err := r.scanner.Err(); err != nil {
		return nil, err
	}
	// A final event without the trailing blank line still counts.
	if hasData {
		return &event, nil
	}
	return nil, io.EOF
}

func (r *reader) Close() error {
	return r.body.Close()
}

func parseLine(line string) (field, value string) {
	idx := strings.IndexByte(line, ':')
	if idx < 0 {
		return line, ""
	}
	field = line[:idx]
	value = strings.TrimPrefix(line[idx+1:], " ")
	return field, value
}

package sse

// SSE event names written by this package. Progress events use their
// event kind as name.
const (
	// EventTypeConnected is sent when a subscriber is attached.
	EventTypeConnected = "connected"

	// EventTypeKeepAlive names the keep-alive comment.
	EventTypeKeepAlive = "keepalive"

	// EventTypeMessage is the default event name.
	EventTypeMessage = "message"

	// EventTypeError is sent when a stream ends because of an error.
	EventTypeError = "error"
)

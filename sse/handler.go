package sse

import (
	"net/http"
	"time"
)

// DefaultKeepAlive is below common proxy idle timeouts.
const DefaultKeepAlive = 30 * time.Second

// ConnectedEvent is sent when a subscriber is attached.
type ConnectedEvent struct {
	ClientID string            `json:"clientId"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// ServeSSE attaches a subscriber to hub and streams its frames until the
// request ends or the hub stops. A keepAlive of zero means
// DefaultKeepAlive.
func ServeSSE(hub *Hub, w http.ResponseWriter, r *http.Request, clientID string, keepAlive time.Duration, opts ...ClientOption) {
	sw, err := NewWriter(w)
	if err != nil {
		hub.log.Error("streaming not supported", map[string]interface{}{"client_id": clientID})
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}
	if keepAlive <= 0 {
		keepAlive = DefaultKeepAlive
	}

	client := NewClient(clientID, opts...)
	if !hub.Register(client) {
		_ = sw.JSON(EventTypeError, map[string]string{"message": "server is shutting down"})
		return
	}
	defer hub.Unregister(client)

	_ = sw.JSON(EventTypeConnected, ConnectedEvent{ClientID: clientID, Metadata: client.Metadata()})
	hub.log.Debug("client connected", map[string]interface{}{"client_id": clientID, "remote_addr": r.RemoteAddr})

	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			hub.log.Debug("client disconnected", map[string]interface{}{"client_id": clientID, "reason": ctx.Err().Error()})
			return

		case f, ok := <-client.Events():
			if !ok {
				return
			}
			if err := sw.Event(f.Name, f.Data); err != nil {
				return
			}

		case <-ticker.C:
			if err := sw.Comment(EventTypeKeepAlive); err != nil {
				return
			}
		}
	}
}

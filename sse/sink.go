package sse

import (
	"encoding/json"
	"strings"

	"github.com/kbukum/paiflow/event"
)

// WorkflowPattern matches every subscriber of a workflow.
func WorkflowPattern(workflowID string) string {
	return "workflow:" + workflowID + ":*"
}

// WorkflowClientID names one subscriber of a workflow.
func WorkflowClientID(workflowID, clientID string) string {
	return "workflow:" + workflowID + ":" + clientID
}

// workflowOf extracts the workflow id from a client id built by
// WorkflowClientID.
func workflowOf(clientID string) (string, bool) {
	rest, ok := strings.CutPrefix(clientID, "workflow:")
	if !ok {
		return "", false
	}
	i := strings.LastIndex(rest, ":")
	if i <= 0 {
		return "", false
	}
	return rest[:i], true
}

// HubSink is an event.Sink that broadcasts a run's events to the
// subscribers of its workflow. Each event is sent under its kind as event
// name with the JSON-encoded event as data.
type HubSink struct {
	hub     *Hub
	pattern string
}

var _ event.Sink = (*HubSink)(nil)

// NewHubSink creates a sink for runs of workflowID.
func NewHubSink(hub *Hub, workflowID string) *HubSink {
	return &HubSink{hub: hub, pattern: WorkflowPattern(workflowID)}
}

// Accept implements event.Sink.
func (s *HubSink) Accept(e event.Event) {
	data, err := json.Marshal(e)
	if err != nil {
		s.hub.log.Warn("dropping unencodable event", map[string]interface{}{"event": string(e.Type), "error": err.Error()})
		return
	}
	s.hub.Publish(s.pattern, Frame{Name: string(e.Type), Data: data})
}

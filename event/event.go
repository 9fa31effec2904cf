package event

import (
	"fmt"
	"time"
)

// Kind is the closed set of progress event types.
type Kind string

const (
	WorkflowStart    Kind = "WORKFLOW_START"
	NodeStart        Kind = "NODE_START"
	NodeProgress     Kind = "NODE_PROGRESS"
	NodeSuccess      Kind = "NODE_SUCCESS"
	NodeError        Kind = "NODE_ERROR"
	WorkflowComplete Kind = "WORKFLOW_COMPLETE"
)

// Terminal reports whether k ends a run's event stream.
func (k Kind) Terminal() bool { return k == WorkflowComplete }

// Event is one progress notification of a run. NodeName carries the node
// type, which is what editors display.
type Event struct {
	Type      Kind   `json:"eventType"`
	NodeID    string `json:"nodeId,omitempty"`
	NodeName  string `json:"nodeName,omitempty"`
	Status    string `json:"status,omitempty"`
	Message   string `json:"message,omitempty"`
	Data      any    `json:"data,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

func now() int64 { return time.Now().UnixMilli() }

// WorkflowStarted opens a run. Data is the execution id.
func WorkflowStarted(executionID string) Event {
	return Event{Type: WorkflowStart, Status: "RUNNING", Message: "workflow started", Data: executionID, Timestamp: now()}
}

// NodeStarted marks a node as running.
func NodeStarted(nodeID, nodeType string) Event {
	return Event{Type: NodeStart, NodeID: nodeID, NodeName: nodeType, Status: "RUNNING", Message: "node started", Timestamp: now()}
}

// NodeProgressed carries intermediate node output such as a streamed chunk.
func NodeProgressed(nodeID, nodeType, message string, data any) Event {
	return Event{Type: NodeProgress, NodeID: nodeID, NodeName: nodeType, Status: "RUNNING", Message: message, Data: data, Timestamp: now()}
}

// NodeSucceeded reports a finished node. Data is {input, output, duration}.
func NodeSucceeded(nodeID, nodeType string, data any, durationMs int64) Event {
	return Event{
		Type: NodeSuccess, NodeID: nodeID, NodeName: nodeType, Status: "SUCCESS",
		Message: fmt.Sprintf("node succeeded in %dms", durationMs), Data: data, Timestamp: now(),
	}
}

// NodeFailed reports a failed node; message is the error text.
func NodeFailed(nodeID, nodeType, message string) Event {
	return Event{Type: NodeError, NodeID: nodeID, NodeName: nodeType, Status: "FAILED", Message: message, Timestamp: now()}
}

// WorkflowCompleted closes a run with its final status and output.
func WorkflowCompleted(status string, output any, durationMs int64) Event {
	return Event{
		Type: WorkflowComplete, Status: status,
		Message: fmt.Sprintf("workflow completed in %dms", durationMs), Data: output, Timestamp: now(),
	}
}

package workflow

import (
	"encoding/json"
	"time"
)

// Status is the outcome of a node or a whole run.
type Status string

const (
	StatusRunning Status = "RUNNING"
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
)

// NodeResult is one entry of an execution trace.
type NodeResult struct {
	NodeID   string          `json:"nodeId"`
	NodeName string          `json:"nodeName"`
	Status   Status          `json:"status"`
	Input    json.RawMessage `json:"input,omitempty"`
	Output   json.RawMessage `json:"output,omitempty"`
	Error    string          `json:"error,omitempty"`
	Duration int64           `json:"duration"`
}

// ExecutionRecord is the persisted outcome of one run.
type ExecutionRecord struct {
	ID           string          `json:"id"`
	WorkflowID   string          `json:"workflowId"`
	Engine       string          `json:"engine"`
	Input        json.RawMessage `json:"inputData"`
	Output       json.RawMessage `json:"outputData,omitempty"`
	Status       Status          `json:"status"`
	NodeResults  []NodeResult    `json:"nodeResults"`
	ErrorMessage string          `json:"errorMessage,omitempty"`
	Duration     int64           `json:"duration"`
	ExecutedAt   time.Time       `json:"executedAt"`
}

// Succeeded reports whether the run finished with SUCCESS.
func (r *ExecutionRecord) Succeeded() bool { return r.Status == StatusSuccess }

// InitialInput wraps the raw user input the way every run starts.
func InitialInput(raw string) map[string]any {
	return map[string]any{"input": raw}
}

// Marshal serializes v for storage in a record. Values that cannot be
// encoded are stored as JSON null.
func Marshal(v any) json.RawMessage {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("null")
	}
	return b
}

package store

import (
	"encoding/json"
	"fmt"

	"github.com/kbukum/paiflow/workflow"
)

// EncodeGraph serializes a graph for a text or JSON column.
func EncodeGraph(g workflow.Graph) (string, error) {
	if g.Nodes == nil {
		g.Nodes = []workflow.Node{}
	}
	if g.Edges == nil {
		g.Edges = []workflow.Edge{}
	}
	b, err := json.Marshal(g)
	if err != nil {
		return "", fmt.Errorf("encode graph: %w", err)
	}
	return string(b), nil
}

// DecodeGraph parses a stored graph.
func DecodeGraph(s string) (workflow.Graph, error) {
	var g workflow.Graph
	if s == "" {
		return g, nil
	}
	if err := json.Unmarshal([]byte(s), &g); err != nil {
		return g, fmt.Errorf("decode graph: %w", err)
	}
	return g, nil
}

// EncodeNodeResults serializes a trace. A nil trace is stored as [].
func EncodeNodeResults(results []workflow.NodeResult) (string, error) {
	if results == nil {
		results = []workflow.NodeResult{}
	}
	b, err := json.Marshal(results)
	if err != nil {
		return "", fmt.Errorf("encode node results: %w", err)
	}
	return string(b), nil
}

// DecodeNodeResults parses a stored trace.
func DecodeNodeResults(s string) ([]workflow.NodeResult, error) {
	results := []workflow.NodeResult{}
	if s == "" {
		return results, nil
	}
	if err := json.Unmarshal([]byte(s), &results); err != nil {
		return nil, fmt.Errorf("decode node results: %w", err)
	}
	return results, nil
}

// NullJSON returns raw as a string pointer, nil when raw is empty.
func NullJSON(raw json.RawMessage) *string {
	if len(raw) == 0 {
		return nil
	}
	s := string(raw)
	return &s
}

// RawJSON converts a nullable column back to a raw message.
func RawJSON(s *string) json.RawMessage {
	if s == nil || *s == "" {
		return nil
	}
	return json.RawMessage(*s)
}

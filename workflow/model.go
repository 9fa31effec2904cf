package workflow

import (
	"encoding/json"
	"time"
)

// Position is the editor canvas location of a node. It never affects
// execution.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Node is one typed processing step. Data holds the type-specific
// configuration; see LLMConfig, OutputConfig and TTSConfig.
type Node struct {
	ID       string         `json:"id" yaml:"id" validate:"required"`
	Type     string         `json:"type" yaml:"type" validate:"required"`
	Position *Position      `json:"position,omitempty" yaml:"position,omitempty"`
	Data     map[string]any `json:"data,omitempty" yaml:"data,omitempty"`
}

// Edge declares that Target runs after Source. Handles are editor ports and
// are ignored by scheduling.
type Edge struct {
	ID           string `json:"id" yaml:"id"`
	Source       string `json:"source" yaml:"source" validate:"required"`
	Target       string `json:"target" yaml:"target" validate:"required"`
	SourceHandle string `json:"sourceHandle,omitempty" yaml:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty" yaml:"targetHandle,omitempty"`
}

// Graph is the node and edge definition of a workflow.
type Graph struct {
	Nodes []Node `json:"nodes" yaml:"nodes" validate:"dive"`
	Edges []Edge `json:"edges" yaml:"edges" validate:"dive"`
}

// UnmarshalJSON accepts the graph either as an object or as a JSON string
// holding the object, which is how editors that store flowData as text send
// it.
func (g *Graph) UnmarshalJSON(b []byte) error {
	type plain Graph
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			*g = Graph{}
			return nil
		}
		b = []byte(s)
	}
	return json.Unmarshal(b, (*plain)(g))
}

// Node returns the node with id, or false.
func (g *Graph) Node(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Workflow is a stored graph definition plus the engine that runs it.
type Workflow struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name" validate:"required"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	EngineType  string    `json:"engineType,omitempty" yaml:"engineType,omitempty"`
	Graph       Graph     `json:"flowData" yaml:"flowData"`
	CreatedAt   time.Time `json:"createdAt,omitzero" yaml:"-"`
	UpdatedAt   time.Time `json:"updatedAt,omitzero" yaml:"-"`
}

package stategraph

import "github.com/kbukum/paiflow/workflow"

// State is the record every step reads and updates.
type State struct {
	CurrentInput  map[string]any
	NodeOutputs   map[string]map[string]any
	Status        workflow.Status
	ErrorMessage  string
	CurrentNodeID string
}

// NewState returns the initial state of a run over raw user input.
func NewState(raw string) *State {
	return &State{
		CurrentInput: workflow.InitialInput(raw),
		NodeOutputs:  make(map[string]map[string]any),
		Status:       workflow.StatusRunning,
	}
}

// Running reports whether steps may still advance the state.
func (s *State) Running() bool { return s.Status == workflow.StatusRunning }

// Fail marks the state as failed with message.
func (s *State) Fail(message string) {
	s.Status = workflow.StatusFailed
	s.ErrorMessage = message
}

// Record stores a node's output and makes it the next step's input.
func (s *State) Record(nodeID string, output map[string]any) {
	s.NodeOutputs[nodeID] = output
	s.CurrentInput = output
	s.CurrentNodeID = nodeID
}

// Outputs returns a shallow copy of NodeOutputs.
func (s *State) Outputs() map[string]map[string]any {
	out := make(map[string]map[string]any, len(s.NodeOutputs))
	for k, v := range s.NodeOutputs {
		out[k] = v
	}
	return out
}

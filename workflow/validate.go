package workflow

import (
	"fmt"

	"github.com/kbukum/paiflow/validation"
)

// Validate checks field-level constraints and that node ids are unique.
func (w *Workflow) Validate() error {
	if err := validation.Validate(w); err != nil {
		return err
	}
	return w.Graph.Validate()
}

// Validate checks node and edge fields and node id uniqueness.
// Edge references and cycles are left to the scheduler so that they are
// reported with their own error codes.
func (g *Graph) Validate() error {
	if err := validation.Validate(g); err != nil {
		return err
	}
	v := validation.New()
	seen := make(map[string]bool, len(g.Nodes))
	for i, n := range g.Nodes {
		v.Custom(!seen[n.ID], fmt.Sprintf("nodes[%d].id", i), fmt.Sprintf("duplicate node id %q", n.ID))
		seen[n.ID] = true
	}
	return v.Validate()
}

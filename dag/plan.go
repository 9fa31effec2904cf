package dag

import "github.com/kbukum/paiflow/workflow"

// Plan is the validated execution order of a graph.
type Plan struct {
	// Order is the linear order the orchestrators walk.
	Order []string
	// Levels groups Order by dependency depth, for display.
	Levels [][]string

	nodes map[string]workflow.Node
}

// Schedule validates g and computes its execution order. It fails with
// INVALID_GRAPH for an unknown edge endpoint and CYCLE_DETECTED for a cycle,
// before anything runs.
func Schedule(g *workflow.Graph) (*Plan, error) {
	ix, err := newIndex(g)
	if err != nil {
		return nil, err
	}
	if err := ix.detectCycle(); err != nil {
		return nil, err
	}
	order, err := ix.kahn()
	if err != nil {
		return nil, err
	}

	p := &Plan{
		Order:  order,
		Levels: ix.levels(),
		nodes:  make(map[string]workflow.Node, len(g.Nodes)),
	}
	for _, n := range g.Nodes {
		p.nodes[n.ID] = n
	}
	return p, nil
}

// Nodes returns the nodes in execution order.
func (p *Plan) Nodes() []workflow.Node {
	out := make([]workflow.Node, len(p.Order))
	for i, id := range p.Order {
		out[i] = p.nodes[id]
	}
	return out
}

// Len returns the number of scheduled nodes.
func (p *Plan) Len() int { return len(p.Order) }

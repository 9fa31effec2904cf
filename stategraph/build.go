package stategraph

import "github.com/kbukum/paiflow/workflow"

// EntryNodes returns every node without incoming edges in declaration
// order. When every node has one, the first declared node is the only
// entry.
func EntryNodes(g *workflow.Graph) []string {
	if len(g.Nodes) == 0 {
		return nil
	}
	incoming := make(map[string]bool, len(g.Edges))
	for _, e := range g.Edges {
		incoming[e.Target] = true
	}
	var roots []string
	for _, n := range g.Nodes {
		if !incoming[n.ID] {
			roots = append(roots, n.ID)
		}
	}
	if len(roots) == 0 {
		return []string{g.Nodes[0].ID}
	}
	return roots
}

// ExitNode returns the first declared node without outgoing edges, or the
// last declared node when every node has one.
func ExitNode(g *workflow.Graph) string {
	if len(g.Nodes) == 0 {
		return ""
	}
	outgoing := make(map[string]bool, len(g.Edges))
	for _, e := range g.Edges {
		outgoing[e.Source] = true
	}
	for _, n := range g.Nodes {
		if !outgoing[n.ID] {
			return n.ID
		}
	}
	return g.Nodes[len(g.Nodes)-1].ID
}

// FromWorkflow compiles a workflow graph with one step per node. Edges map
// one to one; Start connects to every entry node and ExitNode connects to
// End.
func FromWorkflow(g *workflow.Graph, stepFor func(workflow.Node) Step) (*Compiled, error) {
	sg := New()
	for _, n := range g.Nodes {
		if err := sg.AddNode(n.ID, stepFor(n)); err != nil {
			return nil, err
		}
	}
	for _, e := range g.Edges {
		if err := sg.AddEdge(e.Source, e.Target); err != nil {
			return nil, err
		}
	}
	for _, entry := range EntryNodes(g) {
		if err := sg.AddEdge(Start, entry); err != nil {
			return nil, err
		}
	}
	if exit := ExitNode(g); exit != "" {
		if err := sg.AddEdge(exit, End); err != nil {
			return nil, err
		}
	}
	return sg.Compile()
}

package dag

import (
	"fmt"

	"github.com/kbukum/paiflow/errors"
	"github.com/kbukum/paiflow/workflow"
)

// index is the adjacency view of a workflow graph. Node ids keep their
// declaration order so every traversal is deterministic.
type index struct {
	ids        []string
	position   map[string]int
	dependents map[string][]string // source -> targets, in edge order
	inDegree   map[string]int
}

func newIndex(g *workflow.Graph) (*index, error) {
	ix := &index{
		ids:        make([]string, 0, len(g.Nodes)),
		position:   make(map[string]int, len(g.Nodes)),
		dependents: make(map[string][]string),
		inDegree:   make(map[string]int, len(g.Nodes)),
	}
	for i, n := range g.Nodes {
		if _, dup := ix.position[n.ID]; dup {
			return nil, errors.InvalidInput(fmt.Sprintf("nodes[%d].id", i), fmt.Sprintf("duplicate node id %q", n.ID))
		}
		ix.position[n.ID] = i
		ix.ids = append(ix.ids, n.ID)
		ix.inDegree[n.ID] = 0
	}
	for i, e := range g.Edges {
		id := e.ID
		if id == "" {
			id = fmt.Sprintf("edges[%d]", i)
		}
		if _, ok := ix.position[e.Source]; !ok {
			return nil, errors.UnknownNodeReference(id, e.Source)
		}
		if _, ok := ix.position[e.Target]; !ok {
			return nil, errors.UnknownNodeReference(id, e.Target)
		}
		ix.dependents[e.Source] = append(ix.dependents[e.Source], e.Target)
		ix.inDegree[e.Target]++
	}
	return ix, nil
}

// detectCycle walks the graph depth-first and fails with CYCLE_DETECTED
// naming the first node found on the current path twice.
func (ix *index) detectCycle() error {
	const (
		unvisited = iota
		onStack
		done
	)
	state := make(map[string]int, len(ix.ids))

	var visit func(id string) error
	visit = func(id string) error {
		state[id] = onStack
		for _, next := range ix.dependents[id] {
			switch state[next] {
			case onStack:
				return errors.CycleDetected(next)
			case unvisited:
				if err := visit(next); err != nil {
					return err
				}
			}
		}
		state[id] = done
		return nil
	}

	for _, id := range ix.ids {
		if state[id] == unvisited {
			if err := visit(id); err != nil {
				return err
			}
		}
	}
	return nil
}

// kahn orders node ids so every edge source precedes its target. Ready
// nodes are taken in declaration order.
func (ix *index) kahn() ([]string, error) {
	inDegree := make(map[string]int, len(ix.inDegree))
	for id, d := range ix.inDegree {
		inDegree[id] = d
	}

	queue := make([]string, 0, len(ix.ids))
	for _, id := range ix.ids {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	order := make([]string, 0, len(ix.ids))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)
		for _, next := range ix.dependents[id] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if len(order) != len(ix.ids) {
		for _, id := range ix.ids {
			if inDegree[id] > 0 {
				return nil, errors.CycleDetected(id)
			}
		}
	}
	return order, nil
}

// levels groups nodes by dependency depth. Nodes in the same level have
// no path between them.
func (ix *index) levels() [][]string {
	inDegree := make(map[string]int, len(ix.inDegree))
	for id, d := range ix.inDegree {
		inDegree[id] = d
	}

	var current []string
	for _, id := range ix.ids {
		if inDegree[id] == 0 {
			current = append(current, id)
		}
	}

	var levels [][]string
	for len(current) > 0 {
		levels = append(levels, current)
		ready := make(map[string]bool)
		for _, id := range current {
			for _, next := range ix.dependents[id] {
				inDegree[next]--
				if inDegree[next] == 0 {
					ready[next] = true
				}
			}
		}
		current = nil
		for _, id := range ix.ids {
			if ready[id] {
				current = append(current, id)
			}
		}
	}
	return levels
}

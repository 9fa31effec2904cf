package stategraph

import (
	"cmp"
	"context"
	"fmt"
	"slices"
)

// Synthetic endpoints of a compiled graph.
const (
	Start = "__START__"
	End   = "__END__"
)

// Step transforms the shared state. A returned error aborts the whole run;
// node failures are recorded on the state instead.
type Step func(ctx context.Context, s *State) error

// Graph collects steps and edges before compilation.
type Graph struct {
	ids   []string
	steps map[string]Step
	edges map[string][]string
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{steps: make(map[string]Step), edges: make(map[string][]string)}
}

// AddNode registers step under id. Ids must be unique and must not clash
// with Start or End.
func (g *Graph) AddNode(id string, step Step) error {
	switch {
	case id == "" || id == Start || id == End:
		return fmt.Errorf("stategraph: invalid node id %q", id)
	case step == nil:
		return fmt.Errorf("stategraph: node %q has no step", id)
	}
	if _, exists := g.steps[id]; exists {
		return fmt.Errorf("stategraph: duplicate node %q", id)
	}
	g.steps[id] = step
	g.ids = append(g.ids, id)
	return nil
}

// AddEdge connects from to to. Either side may be Start or End.
func (g *Graph) AddEdge(from, to string) error {
	if from == "" || to == "" {
		return fmt.Errorf("stategraph: edge endpoints are required")
	}
	if from == End || to == Start {
		return fmt.Errorf("stategraph: edge %s -> %s goes the wrong way", from, to)
	}
	g.edges[from] = append(g.edges[from], to)
	return nil
}

// Compile checks that every edge endpoint exists and that Start and End
// are connected.
func (g *Graph) Compile() (*Compiled, error) {
	if len(g.edges[Start]) == 0 {
		return nil, fmt.Errorf("stategraph: no edge from %s", Start)
	}
	reachesEnd := false
	for from, targets := range g.edges {
		if from != Start {
			if _, ok := g.steps[from]; !ok {
				return nil, fmt.Errorf("stategraph: edge from unknown node %q", from)
			}
		}
		for _, to := range targets {
			if to == End {
				reachesEnd = true
				continue
			}
			if _, ok := g.steps[to]; !ok {
				return nil, fmt.Errorf("stategraph: edge to unknown node %q", to)
			}
		}
	}
	if !reachesEnd {
		return nil, fmt.Errorf("stategraph: no edge into %s", End)
	}

	c := &Compiled{
		ids:   append([]string(nil), g.ids...),
		steps: make(map[string]Step, len(g.steps)),
		edges: make(map[string][]string, len(g.edges)),
		preds: make(map[string][]string),
		pos:   make(map[string]int, len(g.ids)),
	}
	for i, id := range g.ids {
		c.pos[id] = i
	}
	for k, v := range g.steps {
		c.steps[k] = v
	}
	for k, v := range g.edges {
		c.edges[k] = append([]string(nil), v...)
	}

	reachable := c.reachable()
	for from, targets := range c.edges {
		if from == Start || !reachable[from] {
			continue
		}
		for _, to := range targets {
			if to != End {
				c.preds[to] = append(c.preds[to], from)
			}
		}
	}
	return c, nil
}

// Compiled is an immutable, runnable graph. It is safe to run
// concurrently with independent states.
type Compiled struct {
	ids   []string
	steps map[string]Step
	edges map[string][]string
	preds map[string][]string // reachable predecessors only
	pos   map[string]int
}

func (c *Compiled) reachable() map[string]bool {
	seen := make(map[string]bool, len(c.ids))
	queue := []string{Start}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, to := range c.edges[id] {
			if to != End && !seen[to] {
				seen[to] = true
				queue = append(queue, to)
			}
		}
	}
	return seen
}

// Run advances state from Start in supersteps. Each superstep executes, in
// declaration order, the pending nodes whose reachable predecessors have
// all run; their targets become pending. Each node runs at most once and
// nodes not reachable from Start never run. The run stops when nothing is
// ready, when a step leaves the state not RUNNING, or when ctx is done, in
// which case ctx.Err() is returned.
func (c *Compiled) Run(ctx context.Context, s *State) error {
	done := make(map[string]bool, len(c.ids))
	pending := c.targets(Start, done, nil)

	for {
		ready, waiting := c.split(pending, done)
		if len(ready) == 0 {
			return nil
		}
		pending = waiting
		for _, id := range ready {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := c.steps[id](ctx, s); err != nil {
				return err
			}
			done[id] = true
			if !s.Running() {
				return nil
			}
			pending = c.targets(id, done, pending)
		}
	}
}

// targets appends the not yet executed targets of from to acc, keeping acc
// unique and in declaration order.
func (c *Compiled) targets(from string, done map[string]bool, acc []string) []string {
	for _, to := range c.edges[from] {
		if to == End || done[to] || slices.Contains(acc, to) {
			continue
		}
		acc = append(acc, to)
	}
	slices.SortStableFunc(acc, func(a, b string) int { return cmp.Compare(c.pos[a], c.pos[b]) })
	return acc
}

// split separates pending nodes whose predecessors are all done.
func (c *Compiled) split(pending []string, done map[string]bool) (ready, waiting []string) {
	for _, id := range pending {
		if c.isReady(id, done) {
			ready = append(ready, id)
		} else {
			waiting = append(waiting, id)
		}
	}
	return ready, waiting
}

func (c *Compiled) isReady(id string, done map[string]bool) bool {
	for _, p := range c.preds[id] {
		if !done[p] {
			return false
		}
	}
	return true
}

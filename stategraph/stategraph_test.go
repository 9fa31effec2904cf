package stategraph

import (
	"context"
	stderrors "errors"
	"fmt"
	"slices"
	"testing"

	"github.com/kbukum/paiflow/workflow"
)

// --- test helpers ---

func wf(ids []string, edges ...[2]string) *workflow.Graph {
	g := &workflow.Graph{}
	for _, id := range ids {
		g.Nodes = append(g.Nodes, workflow.Node{ID: id, Type: "input"})
	}
	for i, e := range edges {
		g.Edges = append(g.Edges, workflow.Edge{ID: fmt.Sprintf("e%d", i), Source: e[0], Target: e[1]})
	}
	return g
}

// tracer returns a step factory that appends node ids to calls and
// records a trivial output.
func tracer(calls *[]string) func(workflow.Node) Step {
	return func(n workflow.Node) Step {
		return func(_ context.Context, s *State) error {
			*calls = append(*calls, n.ID)
			s.Record(n.ID, map[string]any{"output": n.ID})
			return nil
		}
	}
}

// --- Entry/exit tests ---

func TestEntryAndExit(t *testing.T) {
	tests := []struct {
		name      string
		g         *workflow.Graph
		wantEntry []string
		wantExit  string
	}{
		{"chain", wf([]string{"a", "b", "c"}, [2]string{"a", "b"}, [2]string{"b", "c"}), []string{"a"}, "c"},
		{"declared backwards", wf([]string{"c", "b", "a"}, [2]string{"a", "b"}, [2]string{"b", "c"}), []string{"a"}, "c"},
		{"two roots", wf([]string{"a", "b", "c"}, [2]string{"a", "c"}, [2]string{"b", "c"}), []string{"a", "b"}, "c"},
		{"single", wf([]string{"only"}), []string{"only"}, "only"},
		{"all connected falls back", wf([]string{"a", "b"}, [2]string{"a", "b"}, [2]string{"b", "a"}), []string{"a"}, "b"},
		{"empty", wf(nil), nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EntryNodes(tt.g); !slices.Equal(got, tt.wantEntry) {
				t.Errorf("EntryNodes = %v, want %v", got, tt.wantEntry)
			}
			if got := ExitNode(tt.g); got != tt.wantExit {
				t.Errorf("ExitNode = %q, want %q", got, tt.wantExit)
			}
		})
	}
}

// --- Run tests ---

func TestRun_ExecutionOrder(t *testing.T) {
	tests := []struct {
		name string
		g    *workflow.Graph
		want []string
	}{
		{"chain", wf([]string{"a", "b", "c"}, [2]string{"a", "b"}, [2]string{"b", "c"}), []string{"a", "b", "c"}},
		{"diamond", wf([]string{"a", "b", "c", "d"},
			[2]string{"a", "b"}, [2]string{"a", "c"}, [2]string{"b", "d"}, [2]string{"c", "d"}), []string{"a", "b", "c", "d"}},
		{"shortcut waits for join", wf([]string{"a", "d", "b"},
			[2]string{"a", "b"}, [2]string{"a", "d"}, [2]string{"b", "d"}), []string{"a", "b", "d"}},
		{"isolated root runs", wf([]string{"a", "b", "x"}, [2]string{"a", "b"}), []string{"a", "x", "b"}},
		{"join waits for every root", wf([]string{"a", "b", "c"}, [2]string{"a", "c"}, [2]string{"b", "c"}), []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls []string
			c, err := FromWorkflow(tt.g, tracer(&calls))
			if err != nil {
				t.Fatalf("unexpected compile error: %v", err)
			}
			s := NewState("raw")
			if err := c.Run(context.Background(), s); err != nil {
				t.Fatalf("unexpected run error: %v", err)
			}
			if !slices.Equal(calls, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, calls)
			}
			if s.CurrentNodeID != tt.want[len(tt.want)-1] {
				t.Errorf("unexpected current node %q", s.CurrentNodeID)
			}
		})
	}
}

func TestRun_StopsWhenFailed(t *testing.T) {
	var calls []string
	g := wf([]string{"a", "b", "c"}, [2]string{"a", "b"}, [2]string{"b", "c"})
	c, err := FromWorkflow(g, func(n workflow.Node) Step {
		return func(_ context.Context, s *State) error {
			calls = append(calls, n.ID)
			if n.ID == "b" {
				s.Fail("node b execution failed: boom")
				return nil
			}
			s.Record(n.ID, map[string]any{})
			return nil
		}
	})
	if err != nil {
		t.Fatal(err)
	}
	s := NewState("raw")
	if err := c.Run(context.Background(), s); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(calls, []string{"a", "b"}) {
		t.Errorf("expected c to be skipped, got %v", calls)
	}
	if s.Status != workflow.StatusFailed || s.ErrorMessage != "node b execution failed: boom" {
		t.Errorf("unexpected state %+v", s)
	}
}

func TestRun_StepErrorAborts(t *testing.T) {
	boom := stderrors.New("store down")
	c, err := FromWorkflow(wf([]string{"a", "b"}, [2]string{"a", "b"}), func(workflow.Node) Step {
		return func(context.Context, *State) error { return boom }
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Run(context.Background(), NewState("")); !stderrors.Is(err, boom) {
		t.Errorf("expected step error, got %v", err)
	}
}

func TestRun_Canceled(t *testing.T) {
	var calls []string
	c, err := FromWorkflow(wf([]string{"a", "b"}, [2]string{"a", "b"}), tracer(&calls))
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.Run(ctx, NewState("")); !stderrors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if len(calls) != 0 {
		t.Errorf("expected no steps, got %v", calls)
	}
}

func TestRun_StateThreadsOutputs(t *testing.T) {
	g := wf([]string{"a", "b"}, [2]string{"a", "b"})
	c, err := FromWorkflow(g, func(n workflow.Node) Step {
		return func(_ context.Context, s *State) error {
			prev := s.CurrentInput
			s.Record(n.ID, map[string]any{"seen": prev})
			return nil
		}
	})
	if err != nil {
		t.Fatal(err)
	}
	s := NewState("hello")
	if err := c.Run(context.Background(), s); err != nil {
		t.Fatal(err)
	}
	first := s.NodeOutputs["a"]["seen"].(map[string]any)
	if first["input"] != "hello" {
		t.Errorf("expected initial input to reach a, got %v", first)
	}
	if len(s.Outputs()) != 2 {
		t.Errorf("expected 2 node outputs, got %d", len(s.Outputs()))
	}
}

// --- Compile tests ---

func TestCompile_Errors(t *testing.T) {
	noop := func(context.Context, *State) error { return nil }
	tests := []struct {
		name  string
		build func(g *Graph) error
	}{
		{"no start", func(g *Graph) error {
			_ = g.AddNode("a", noop)
			return g.AddEdge("a", End)
		}},
		{"no end", func(g *Graph) error {
			_ = g.AddNode("a", noop)
			return g.AddEdge(Start, "a")
		}},
		{"unknown target", func(g *Graph) error {
			_ = g.AddNode("a", noop)
			_ = g.AddEdge(Start, "a")
			_ = g.AddEdge("a", End)
			return g.AddEdge("a", "ghost")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New()
			if err := tt.build(g); err != nil {
				t.Fatalf("unexpected build error: %v", err)
			}
			if _, err := g.Compile(); err == nil {
				t.Error("expected compile error")
			}
		})
	}
}

func TestGraph_AddNodeAndEdgeErrors(t *testing.T) {
	g := New()
	noop := func(context.Context, *State) error { return nil }
	if err := g.AddNode(Start, noop); err == nil {
		t.Error("expected reserved id to fail")
	}
	if err := g.AddNode("a", nil); err == nil {
		t.Error("expected nil step to fail")
	}
	_ = g.AddNode("a", noop)
	if err := g.AddNode("a", noop); err == nil {
		t.Error("expected duplicate to fail")
	}
	if err := g.AddEdge(End, "a"); err == nil {
		t.Error("expected edge out of End to fail")
	}
	if err := g.AddEdge("a", Start); err == nil {
		t.Error("expected edge into Start to fail")
	}
}

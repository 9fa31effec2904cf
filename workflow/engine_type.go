package workflow

import "strings"

// Engine type tags.
const (
	EngineDAG   = "dag"
	EngineGraph = "graph"
)

var engineAliases = map[string]string{
	"langgraph":   EngineGraph,
	"state-graph": EngineGraph,
	"stategraph":  EngineGraph,
	"sequential":  EngineDAG,
}

// NormalizeEngineType trims and lowercases t, maps known aliases and returns
// EngineDAG for a blank value. Unknown values are returned normalized so the
// caller can decide how to fall back.
func NormalizeEngineType(t string) string {
	t = strings.ToLower(strings.TrimSpace(t))
	if t == "" {
		return EngineDAG
	}
	if alias, ok := engineAliases[t]; ok {
		return alias
	}
	return t
}

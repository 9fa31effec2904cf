// Package engine runs workflows.
//
// Two orchestrators implement Orchestrator: Sequential ("dag") walks the
// topological order and threads each node's output into the next node, and
// StateGraph ("graph") compiles the workflow into steps over a shared state
// so that the output node can read every earlier node's output. Both
// validate the graph before any node runs, emit the same progress events,
// append node results in execution order and persist one execution record
// per run. Selector picks the orchestrator from a workflow's engine type.
//
//	registry := executor.NewRegistry()
//	nodes.Register(registry, deps)
//	sel := engine.NewSelector(cfg.Engine,
//		engine.NewSequential(registry, engine.WithStore(records)),
//		engine.NewStateGraph(registry, engine.WithStore(records)),
//	)
//	rec, err := sel.Run(ctx, wf, "hello", sink)
package engine

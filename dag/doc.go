// Package dag validates workflow graphs and orders their nodes.
//
// Schedule rejects edges that reference undeclared nodes and any dependency
// cycle, then returns a linear order in which every edge source precedes its
// target. Among nodes that are ready at the same time, the one declared
// first runs first.
//
//	plan, err := dag.Schedule(&wf.Graph)
//	if err != nil {
//		return err // INVALID_GRAPH or CYCLE_DETECTED
//	}
//	for _, node := range plan.Nodes() {
//		...
//	}
package dag

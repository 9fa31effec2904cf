// Package stategraph runs a compiled graph of state-transforming steps.
//
// A graph has synthetic Start and End endpoints. FromWorkflow compiles a
// workflow definition by connecting Start to the first node without
// incoming edges and the first node without outgoing edges to End. Steps
// share one State record; once a step marks the state failed, no further
// step runs.
package stategraph

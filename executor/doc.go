// Package executor holds the node executor contract and the registry that
// maps node type keys to executors.
//
// Executors registered once at startup are shared by all runs and must be
// safe for concurrent use. Resolve wraps every executor in the registry's
// middleware (tracing, metrics, logging) without hiding ProgressExecutor.
package executor

// Package workflow defines the workflow definition (nodes, edges, engine
// type), the execution record written for each run, and the typed
// configuration decoded from a node's data bag.
//
// Definitions can be read from JSON or YAML:
//
//	w, err := workflow.LoadFile("flows/greeting.yaml")
//	if err != nil {
//		return err
//	}
//	if err := w.Validate(); err != nil {
//		return err
//	}
package workflow

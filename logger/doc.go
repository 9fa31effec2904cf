// Package logger provides structured zerolog logging for paiflow.
//
// Loggers are tagged with a component and, during a run, with the workflow,
// execution and node ids so a single execution can be followed end to end.
//
//	log := logger.Get("engine").WithExecution(wf.ID, execID)
//	log.Info("node succeeded", logger.Fields(logger.FieldNodeID, n.ID))
package logger

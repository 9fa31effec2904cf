// Package event defines the progress events emitted while a workflow runs
// and the sinks that carry them to transports.
//
// Orchestrators call Emit, which accepts a nil sink. Transports that may be
// slow wrap their sink in an AsyncSink so a run never waits longer than the
// configured timeout per event.
package event

// Package sse delivers workflow progress events to browsers over
// Server-Sent Events.
//
// Two delivery paths exist. A single run can be streamed straight to the
// response that started it with a [Writer]. Long-lived subscribers attach
// to a [Hub] under a client id of the form "workflow:<id>:<client>", and a
// [HubSink] broadcasts every event of a run to all subscribers of its
// workflow.
//
//	hub := sse.NewHub(log)
//	go hub.Run()
//	sink := sse.NewHubSink(hub, wf.ID)
//	rec, err := selector.Run(ctx, wf, input, sink)
package sse

package engine

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/paiflow/errors"
	"github.com/kbukum/paiflow/event"
	"github.com/kbukum/paiflow/executor"
	"github.com/kbukum/paiflow/logger"
	"github.com/kbukum/paiflow/observability"
	"github.com/kbukum/paiflow/workflow"
)

// recorder holds what both orchestrators share: trace assembly, event
// emission and persistence.
type recorder struct {
	engine  string
	store   RecordStore
	log     *logger.Logger
	metrics *observability.Metrics
	newID   func() string
}

// run is the bookkeeping of one execution.
type run struct {
	r     *recorder
	rec   *workflow.ExecutionRecord
	sink  event.Sink
	log   *logger.Logger
	span  trace.Span
	start time.Time
}

func (r *recorder) begin(ctx context.Context, wf *workflow.Workflow, raw string, sink event.Sink) (context.Context, *run) {
	start := time.Now()
	rec := &workflow.ExecutionRecord{
		ID:          r.newID(),
		WorkflowID:  wf.ID,
		Engine:      r.engine,
		Input:       workflow.Marshal(workflow.InitialInput(raw)),
		Status:      workflow.StatusRunning,
		NodeResults: []workflow.NodeResult{},
		ExecutedAt:  start.UTC(),
	}

	ctx = logger.ContextWithExecutionID(ctx, rec.ID)
	ctx, span := observability.StartSpan(ctx, observability.SpanExecution,
		attribute.String(observability.AttrWorkflowID, wf.ID),
		attribute.String(observability.AttrExecutionID, rec.ID),
		attribute.String(observability.AttrEngine, r.engine),
	)
	r.metrics.ExecutionStarted(ctx, r.engine)

	log := r.log.WithExecution(wf.ID, rec.ID)
	x := &run{
		r:     r,
		rec:   rec,
		sink:  guard(sink, log),
		log:   log,
		span:  span,
		start: start,
	}
	x.log.Info("execution started", map[string]interface{}{"nodes": len(wf.Graph.Nodes)})
	event.Emit(x.sink, event.WorkflowStarted(rec.ID))
	return ctx, x
}

// execute runs one node and appends its result. The returned error is the
// handler (or resolution) failure; the caller turns it into the run's
// error message.
func (x *run) execute(ctx context.Context, resolver Resolver, node workflow.Node, input map[string]any) (map[string]any, error) {
	started := time.Now()
	event.Emit(x.sink, event.NodeStarted(node.ID, node.Type))

	output, err := x.invoke(ctx, resolver, node, input)
	elapsed := time.Since(started).Milliseconds()

	result := workflow.NodeResult{
		NodeID:   node.ID,
		NodeName: node.Type,
		Input:    workflow.Marshal(input),
		Duration: elapsed,
	}
	if err != nil {
		cause := errors.Message(err)
		result.Status = workflow.StatusFailed
		result.Error = cause
		x.rec.NodeResults = append(x.rec.NodeResults, result)
		event.Emit(x.sink, event.NodeFailed(node.ID, node.Type, cause))
		return nil, err
	}

	result.Status = workflow.StatusSuccess
	result.Output = workflow.Marshal(output)
	x.rec.NodeResults = append(x.rec.NodeResults, result)
	event.Emit(x.sink, event.NodeSucceeded(node.ID, node.Type, map[string]any{
		"input":    input,
		"output":   output,
		"duration": elapsed,
	}, elapsed))
	return output, nil
}

func (x *run) invoke(ctx context.Context, resolver Resolver, node workflow.Node, input map[string]any) (output map[string]any, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic in %s handler: %v", node.Type, p)
		}
	}()
	exec, err := resolver.Resolve(node.Type)
	if err != nil {
		return nil, err
	}
	output, err = executor.Run(ctx, exec, node, input, x.sink)
	if err == nil && output == nil {
		output = map[string]any{}
	}
	return output, err
}

// finish closes the run. An empty failure means SUCCESS. The record is
// stored even when ctx is canceled.
func (x *run) finish(ctx context.Context, output map[string]any, failure string) (*workflow.ExecutionRecord, error) {
	rec := x.rec
	rec.Duration = time.Since(x.start).Milliseconds()
	rec.Status = workflow.StatusSuccess
	if failure != "" {
		rec.Status = workflow.StatusFailed
		rec.ErrorMessage = failure
	}
	if output != nil {
		rec.Output = workflow.Marshal(output)
	}

	var storeErr error
	if x.r.store != nil {
		id, err := x.r.store.Insert(context.WithoutCancel(ctx), rec)
		if err != nil {
			storeErr = fmt.Errorf("engine: storing execution %s: %w", rec.ID, err)
			x.log.WithError(err).Error("failed to store execution record")
		} else if id != "" {
			rec.ID = id
		}
	}

	fields := map[string]interface{}{
		logger.FieldStatus:   string(rec.Status),
		logger.FieldDuration: rec.Duration,
		"node_results":       len(rec.NodeResults),
	}
	if failure != "" {
		x.log.Warn("execution failed: "+failure, fields)
	} else {
		x.log.Info("execution completed", fields)
	}

	event.Emit(x.sink, event.WorkflowCompleted(string(rec.Status), output, rec.Duration))

	x.r.metrics.ExecutionFinished(ctx, x.r.engine, string(rec.Status), time.Since(x.start))
	var spanErr error
	if failure != "" {
		spanErr = errors.New(errors.ErrCodeNodeFailed, failure, 0)
	}
	observability.EndSpan(x.span, spanErr)
	return rec, storeErr
}

// guard wraps sink so a panicking delivery is logged and the event
// dropped. A nil sink stays nil.
func guard(sink event.Sink, log *logger.Logger) event.Sink {
	if sink == nil {
		return nil
	}
	return event.Func(func(e event.Event) {
		defer func() {
			if p := recover(); p != nil {
				log.Error("event sink panicked", map[string]interface{}{
					"event_type": string(e.Type),
					"node_id":    e.NodeID,
					"panic":      p,
				})
			}
		}()
		sink.Accept(e)
	})
}

// canceled formats the failure message of a run stopped by its context.
func canceled(err error) string {
	return "execution canceled: " + err.Error()
}

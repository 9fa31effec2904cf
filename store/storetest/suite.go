// Package storetest is a behavior suite every store backend must pass.
package storetest

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/paiflow/errors"
	"github.com/kbukum/paiflow/store"
	"github.com/kbukum/paiflow/workflow"
)

// Run exercises s. It expects an empty store.
func Run(t *testing.T, s store.Store) {
	t.Helper()
	t.Run("Workflows", func(t *testing.T) { testWorkflows(t, s) })
	t.Run("Records", func(t *testing.T) { testRecords(t, s) })
	t.Run("NotFound", func(t *testing.T) { testNotFound(t, s) })
	t.Run("Ping", func(t *testing.T) { require.NoError(t, s.Ping(context.Background())) })
}

func sampleWorkflow(name string) *workflow.Workflow {
	return &workflow.Workflow{
		Name:        name,
		Description: "greets",
		EngineType:  workflow.EngineGraph,
		Graph: workflow.Graph{
			Nodes: []workflow.Node{
				{ID: "in", Type: "input", Position: &workflow.Position{X: 10, Y: 20}},
				{ID: "out", Type: "output", Data: map[string]any{"responseContent": "Hello {{input}}"}},
			},
			Edges: []workflow.Edge{{ID: "e1", Source: "in", Target: "out", SourceHandle: "a"}},
		},
	}
}

func testWorkflows(t *testing.T, s store.Store) {
	ctx := context.Background()

	first := sampleWorkflow("first")
	require.NoError(t, s.CreateWorkflow(ctx, first))
	require.NotEmpty(t, first.ID)
	require.False(t, first.CreatedAt.IsZero())

	second := sampleWorkflow("second")
	second.ID = "wf-fixed"
	require.NoError(t, s.CreateWorkflow(ctx, second))
	assert.Equal(t, "wf-fixed", second.ID)

	got, err := s.GetWorkflow(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "first", got.Name)
	assert.Equal(t, "greets", got.Description)
	assert.Equal(t, workflow.EngineGraph, got.EngineType)
	require.Len(t, got.Graph.Nodes, 2)
	assert.Equal(t, "Hello {{input}}", got.Graph.Nodes[1].Data["responseContent"])
	assert.Equal(t, 20.0, got.Graph.Nodes[0].Position.Y)
	assert.Equal(t, "a", got.Graph.Edges[0].SourceHandle)
	assert.WithinDuration(t, first.CreatedAt, got.CreatedAt, time.Millisecond)

	list, err := s.ListWorkflows(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, "wf-fixed", list[1].ID)

	time.Sleep(5 * time.Millisecond)
	got.Name = "renamed"
	got.Graph.Nodes = got.Graph.Nodes[:1]
	got.Graph.Edges = nil
	require.NoError(t, s.UpdateWorkflow(ctx, got))
	assert.True(t, got.UpdatedAt.After(got.CreatedAt))

	updated, err := s.GetWorkflow(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Name)
	assert.Len(t, updated.Graph.Nodes, 1)
	assert.Empty(t, updated.Graph.Edges)
	assert.WithinDuration(t, first.CreatedAt, updated.CreatedAt, time.Millisecond)

	require.NoError(t, s.DeleteWorkflow(ctx, "wf-fixed"))
	list, err = s.ListWorkflows(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func testRecords(t *testing.T, s store.Store) {
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Millisecond)

	rec := &workflow.ExecutionRecord{
		WorkflowID: "wf-rec",
		Engine:     workflow.EngineDAG,
		Input:      json.RawMessage(`{"input":"World"}`),
		Output:     json.RawMessage(`{"output":"Hello World"}`),
		Status:     workflow.StatusSuccess,
		NodeResults: []workflow.NodeResult{
			{NodeID: "in", NodeName: "input", Status: workflow.StatusSuccess, Input: json.RawMessage(`{"input":"World"}`), Output: json.RawMessage(`{"input":"World"}`), Duration: 1},
			{NodeID: "out", NodeName: "output", Status: workflow.StatusFailed, Error: "boom", Duration: 2},
		},
		Duration:   3,
		ExecutedAt: base,
	}
	id, err := s.Insert(ctx, rec)
	require.NoError(t, err)
	require.NotEmpty(t, id)
	assert.Equal(t, id, rec.ID)

	got, err := s.GetRecord(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "wf-rec", got.WorkflowID)
	assert.Equal(t, workflow.EngineDAG, got.Engine)
	assert.Equal(t, workflow.StatusSuccess, got.Status)
	assert.JSONEq(t, `{"input":"World"}`, string(got.Input))
	assert.JSONEq(t, `{"output":"Hello World"}`, string(got.Output))
	assert.Equal(t, int64(3), got.Duration)
	assert.WithinDuration(t, base, got.ExecutedAt, time.Millisecond)
	require.Len(t, got.NodeResults, 2)
	assert.Equal(t, "in", got.NodeResults[0].NodeID)
	assert.Equal(t, "boom", got.NodeResults[1].Error)
	assert.Empty(t, got.NodeResults[1].Output)

	failed := &workflow.ExecutionRecord{
		WorkflowID:   "wf-rec",
		Status:       workflow.StatusFailed,
		ErrorMessage: "node out execution failed: boom",
		ExecutedAt:   base.Add(time.Second),
	}
	_, err = s.Insert(ctx, failed)
	require.NoError(t, err)
	_, err = s.Insert(ctx, &workflow.ExecutionRecord{WorkflowID: "other", Status: workflow.StatusSuccess})
	require.NoError(t, err)

	list, err := s.ListRecords(ctx, "wf-rec", 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, failed.ID, list[0].ID)
	assert.Empty(t, list[0].Output)
	assert.NotNil(t, list[0].NodeResults)
	assert.Equal(t, "node out execution failed: boom", list[0].ErrorMessage)

	limited, err := s.ListRecords(ctx, "wf-rec", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	none, err := s.ListRecords(ctx, "missing", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testNotFound(t *testing.T, s store.Store) {
	ctx := context.Background()
	check := func(err error) {
		t.Helper()
		appErr, ok := errors.AsAppError(err)
		require.True(t, ok, "expected AppError, got %v", err)
		assert.Equal(t, errors.ErrCodeNotFound, appErr.Code)
	}

	_, err := s.GetWorkflow(ctx, "nope")
	check(err)
	check(s.UpdateWorkflow(ctx, &workflow.Workflow{ID: "nope", Name: "x"}))
	check(s.DeleteWorkflow(ctx, "nope"))
	_, err = s.GetRecord(ctx, "nope")
	check(err)
}

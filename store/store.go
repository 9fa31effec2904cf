// Package store persists workflow definitions and execution records.
//
// Backends live in subpackages and register themselves on import:
//
//	import _ "github.com/kbukum/paiflow/store/sqlite"
//
//	s, err := store.New(ctx, store.Config{Driver: "sqlite", DSN: "paiflow.db"}, log)
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/paiflow/errors"
	"github.com/kbukum/paiflow/workflow"
)

// DefaultListLimit caps ListRecords when the caller passes no limit.
const DefaultListLimit = 50

// WorkflowStore holds workflow definitions.
type WorkflowStore interface {
	// CreateWorkflow stores wf, assigning an id when it has none and
	// setting both timestamps.
	CreateWorkflow(ctx context.Context, wf *workflow.Workflow) error
	GetWorkflow(ctx context.Context, id string) (*workflow.Workflow, error)
	// ListWorkflows returns every workflow, oldest first.
	ListWorkflows(ctx context.Context) ([]*workflow.Workflow, error)
	// UpdateWorkflow replaces the stored definition and bumps UpdatedAt.
	// CreatedAt is kept.
	UpdateWorkflow(ctx context.Context, wf *workflow.Workflow) error
	DeleteWorkflow(ctx context.Context, id string) error
}

// RecordStore holds execution records.
type RecordStore interface {
	// Insert stores rec and returns its id, assigning one when rec has none.
	Insert(ctx context.Context, rec *workflow.ExecutionRecord) (string, error)
	GetRecord(ctx context.Context, id string) (*workflow.ExecutionRecord, error)
	// ListRecords returns the newest records of a workflow first. A limit of
	// zero or less means DefaultListLimit.
	ListRecords(ctx context.Context, workflowID string, limit int) ([]*workflow.ExecutionRecord, error)
}

// Store is a complete backend. Missing rows are reported as NOT_FOUND
// AppErrors.
type Store interface {
	WorkflowStore
	RecordStore
	Ping(ctx context.Context) error
	Close() error
}

// WorkflowNotFound is the error for an unknown workflow id.
func WorkflowNotFound(id string) error { return errors.NotFound("workflow", id) }

// RecordNotFound is the error for an unknown execution id.
func RecordNotFound(id string) error { return errors.NotFound("execution", id) }

// PrepareCreate fills the id and timestamps of a new workflow.
func PrepareCreate(wf *workflow.Workflow, now time.Time) {
	if wf.ID == "" {
		wf.ID = uuid.NewString()
	}
	wf.CreatedAt = now
	wf.UpdatedAt = now
}

// PrepareInsert fills the id and timestamp of a new record.
func PrepareInsert(rec *workflow.ExecutionRecord, now time.Time) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.ExecutedAt.IsZero() {
		rec.ExecutedAt = now
	}
}

// Limit normalizes a list limit.
func Limit(n int) int {
	if n <= 0 {
		return DefaultListLimit
	}
	return n
}

// Now is the clock used by backends, truncated to what every backend can
// store.
func Now() time.Time { return time.Now().UTC().Truncate(time.Millisecond) }

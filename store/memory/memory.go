// Package memory is an in-process store. Data is lost when the process
// exits; it serves tests and the CLI's one-shot runs.
package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/kbukum/paiflow/logger"
	"github.com/kbukum/paiflow/store"
	"github.com/kbukum/paiflow/workflow"
)

func init() {
	store.RegisterFactory(store.DriverMemory, func(_ context.Context, _ store.Config, _ *logger.Logger) (store.Store, error) {
		return New(), nil
	})
}

// Store is a map-backed store.Store safe for concurrent use. Values are
// copied on the way in and out.
type Store struct {
	mu        sync.RWMutex
	workflows map[string]*workflow.Workflow
	records   map[string]*workflow.ExecutionRecord
	seq       map[string]int
	next      int
}

var _ store.Store = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		workflows: make(map[string]*workflow.Workflow),
		records:   make(map[string]*workflow.ExecutionRecord),
		seq:       make(map[string]int),
	}
}

func (s *Store) CreateWorkflow(_ context.Context, wf *workflow.Workflow) error {
	store.PrepareCreate(wf, store.Now())
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workflows[wf.ID] = cloneWorkflow(wf)
	s.bump(wf.ID)
	return nil
}

func (s *Store) GetWorkflow(_ context.Context, id string) (*workflow.Workflow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wf, ok := s.workflows[id]
	if !ok {
		return nil, store.WorkflowNotFound(id)
	}
	return cloneWorkflow(wf), nil
}

func (s *Store) ListWorkflows(_ context.Context) ([]*workflow.Workflow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*workflow.Workflow, 0, len(s.workflows))
	for _, wf := range s.workflows {
		out = append(out, cloneWorkflow(wf))
	}
	sort.Slice(out, func(i, j int) bool { return s.seq[out[i].ID] < s.seq[out[j].ID] })
	return out, nil
}

func (s *Store) UpdateWorkflow(_ context.Context, wf *workflow.Workflow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.workflows[wf.ID]
	if !ok {
		return store.WorkflowNotFound(wf.ID)
	}
	wf.CreatedAt = cur.CreatedAt
	wf.UpdatedAt = store.Now()
	s.workflows[wf.ID] = cloneWorkflow(wf)
	return nil
}

func (s *Store) DeleteWorkflow(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.workflows[id]; !ok {
		return store.WorkflowNotFound(id)
	}
	delete(s.workflows, id)
	delete(s.seq, id)
	return nil
}

func (s *Store) Insert(_ context.Context, rec *workflow.ExecutionRecord) (string, error) {
	store.PrepareInsert(rec, store.Now())
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ID] = cloneRecord(rec)
	s.bump(rec.ID)
	return rec.ID, nil
}

func (s *Store) GetRecord(_ context.Context, id string) (*workflow.ExecutionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, store.RecordNotFound(id)
	}
	return cloneRecord(rec), nil
}

func (s *Store) ListRecords(_ context.Context, workflowID string, limit int) ([]*workflow.ExecutionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*workflow.ExecutionRecord
	for _, rec := range s.records {
		if rec.WorkflowID == workflowID {
			out = append(out, cloneRecord(rec))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ExecutedAt.Equal(out[j].ExecutedAt) {
			return out[i].ExecutedAt.After(out[j].ExecutedAt)
		}
		return s.seq[out[i].ID] > s.seq[out[j].ID]
	})
	if n := store.Limit(limit); len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

// bump records insertion order; callers hold mu.
func (s *Store) bump(id string) {
	s.next++
	s.seq[id] = s.next
}

func cloneWorkflow(wf *workflow.Workflow) *workflow.Workflow {
	out := *wf
	out.Graph = cloneGraph(wf.Graph)
	return &out
}

func cloneGraph(g workflow.Graph) workflow.Graph {
	b, err := json.Marshal(g)
	if err != nil {
		return g
	}
	var out workflow.Graph
	if err := json.Unmarshal(b, &out); err != nil {
		return g
	}
	return out
}

func cloneRecord(rec *workflow.ExecutionRecord) *workflow.ExecutionRecord {
	out := *rec
	out.NodeResults = append([]workflow.NodeResult{}, rec.NodeResults...)
	out.Input = append([]byte(nil), rec.Input...)
	out.Output = append([]byte(nil), rec.Output...)
	return &out
}
